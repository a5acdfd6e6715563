/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"github.com/go-openapi/strfmt"

	"github.com/suparena/entity"
)

// Message is the ancestor of Post and CustomPost.
type Message struct {
	entity.Base

	datetime strfmt.DateTime
	userId   int
	text     string
}

func (m *Message) GetDatetime() strfmt.DateTime { return m.datetime }

func (m *Message) SetDatetime(datetime strfmt.DateTime) { m.datetime = datetime }

func (m *Message) GetUserId() int { return m.userId }

func (m *Message) SetUserId(userID int) { m.userId = userID }

func (m *Message) GetText() string { return m.text }

func (m *Message) SetText(text string) { m.text = text }

// Post is a Message with a title and labels. Its attributes are Message's
// followed by its own.
type Post struct {
	Message

	title  string
	labels []string
}

func (p *Post) GetTitle() string { return p.title }

func (p *Post) SetTitle(title string) { p.title = title }

func (p *Post) GetLabels() []string { return p.labels }

func (p *Post) SetLabels(labels []string) { p.labels = labels }
