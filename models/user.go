/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"github.com/suparena/entity"
)

// User is a plain field-backed entity.
type User struct {
	entity.Base

	name     string
	email    string
	isAdmin  bool
	disabled bool
}

func (u *User) GetName() string { return u.name }

func (u *User) SetName(name string) { u.name = name }

func (u *User) GetEmail() string { return u.email }

func (u *User) SetEmail(email string) { u.email = email }

// IsAdmin is the getter of the "isAdmin" attribute.
func (u *User) IsAdmin() bool { return u.isAdmin }

func (u *User) SetIsAdmin(isAdmin bool) { u.isAdmin = isAdmin }

func (u *User) IsDisabled() bool { return u.disabled }

func (u *User) SetDisabled(disabled bool) { u.disabled = disabled }
