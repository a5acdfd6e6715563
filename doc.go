/*
Package entity provides accessor-dispatched entities with plain map import and export.

An entity is a struct that embeds entity.Base. Its attributes are its declared
fields (including those of embedded ancestor structs) and each attribute is
reached through a getter (GetName, IsName, or for names like isAdmin the
IsAdmin method itself) and a setter (SetName):

	type User struct {
	    entity.Base
	    name     string
	    email    string
	    isAdmin  bool
	    disabled bool
	}

	func (u *User) GetName() string         { return u.name }
	func (u *User) SetName(name string) *User { u.name = name; return u }
	func (u *User) IsAdmin() bool           { return u.isAdmin }
	func (u *User) SetIsAdmin(v bool) *User { u.isAdmin = v; return u }
	...

Bulk import, single attribute access and export:

	user, err := entity.New[User](map[string]any{
	    "name":     "John",
	    "disabled": true,
	})

	name, err := entity.GetAttribute(user, "name")
	err = entity.SetAttribute(user, "email", "john@example.com")

	data, err := entity.ToMap(user)
	// map[disabled:true email:john@example.com isAdmin:false name:John]

Nested entities, and slices or maps holding entities, are exported
recursively. ToOrderedMap keeps the attribute order of the registry.

Types that keep their values somewhere other than separate fields list their
attributes explicitly:

	func (CustomUser) AttributeNames() []string {
	    return []string{"name", "email", "disabled"}
	}

Failures are *errors.AttributeError values reported under the entity's error
kind, which defaults to errors.ErrEntity and can be changed per instance with
SetErrorKind.
*/
package entity
