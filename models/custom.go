/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"github.com/suparena/entity"
	"github.com/suparena/entity/errors"
)

// ErrCustom is the error kind CustomUser reports attribute failures under.
var ErrCustom = errors.NewKind("custom")

// CustomUser keeps its values in a map, so field discovery would only see
// "attrs". The attribute list is declared instead.
type CustomUser struct {
	entity.Base

	attrs map[string]any
}

// NewCustomUser returns an empty CustomUser with its error kind set.
func NewCustomUser() *CustomUser {
	u := &CustomUser{}
	u.InitEntity()
	return u
}

func (u *CustomUser) InitEntity() {
	u.SetErrorKind(ErrCustom)
}

func (u *CustomUser) AttributeNames() []string {
	return []string{"name", "email", "disabled"}
}

func (u *CustomUser) GetName() string {
	name, _ := u.attrs["name"].(string)
	return name
}

func (u *CustomUser) SetName(name string) { u.set("name", name) }

func (u *CustomUser) GetEmail() string {
	email, _ := u.attrs["email"].(string)
	return email
}

func (u *CustomUser) SetEmail(email string) { u.set("email", email) }

func (u *CustomUser) IsDisabled() bool {
	disabled, _ := u.attrs["disabled"].(bool)
	return disabled
}

func (u *CustomUser) SetDisabled(disabled bool) { u.set("disabled", disabled) }

func (u *CustomUser) set(key string, v any) {
	if u.attrs == nil {
		u.attrs = make(map[string]any)
	}
	u.attrs[key] = v
}

// CustomPost is Post with title and labels stored in a map. It keeps the
// default error kind.
type CustomPost struct {
	Message

	attributes map[string]any
}

func (p *CustomPost) AttributeNames() []string {
	return append(entity.AttributeNamesOf[Message](), "title", "labels")
}

func (p *CustomPost) GetTitle() string {
	title, _ := p.attributes["title"].(string)
	return title
}

func (p *CustomPost) SetTitle(title string) { p.set("title", title) }

func (p *CustomPost) GetLabels() []string {
	labels, _ := p.attributes["labels"].([]string)
	return labels
}

func (p *CustomPost) SetLabels(labels []string) { p.set("labels", labels) }

func (p *CustomPost) set(key string, v any) {
	if p.attributes == nil {
		p.attributes = make(map[string]any)
	}
	p.attributes[key] = v
}
