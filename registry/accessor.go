/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Accessor is the resolved getter/setter pair of one attribute. A nil method
// means resolution failed; the candidates that were tried are kept for the error.
type Accessor struct {
	Name             string
	GetterCandidates []string
	SetterCandidates []string

	getter *reflect.Method
	setter *reflect.Method
}

// HasGetter reports whether a getter was resolved.
func (a *Accessor) HasGetter() bool { return a.getter != nil }

// HasSetter reports whether a setter was resolved.
func (a *Accessor) HasSetter() bool { return a.setter != nil }

// GetterName returns the resolved getter's method name, or "".
func (a *Accessor) GetterName() string {
	if a.getter == nil {
		return ""
	}
	return a.getter.Name
}

// SetterName returns the resolved setter's method name, or "".
func (a *Accessor) SetterName() string {
	if a.setter == nil {
		return ""
	}
	return a.setter.Name
}

// SetterParam returns the type the setter accepts.
func (a *Accessor) SetterParam() reflect.Type {
	return a.setter.Type.In(1)
}

// Get calls the getter on recv, a pointer to the entity. A getter of the form
// func() (V, error) has its error returned.
func (a *Accessor) Get(recv reflect.Value) (any, error) {
	out := a.getter.Func.Call([]reflect.Value{recv})
	if len(out) == 2 {
		if err, _ := out[1].Interface().(error); err != nil {
			return nil, err
		}
	}
	return out[0].Interface(), nil
}

// Set calls the setter on recv with arg, which must be assignable to SetterParam.
// If the setter's last result is a non-nil error it is returned.
func (a *Accessor) Set(recv, arg reflect.Value) error {
	out := a.setter.Func.Call([]reflect.Value{recv, arg})
	if n := len(out); n > 0 && a.setter.Type.Out(n-1) == errorType {
		if err, _ := out[n-1].Interface().(error); err != nil {
			return err
		}
	}
	return nil
}

// Capitalize upper-cases the first character of s and leaves the rest unchanged.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// GetterCandidates returns the getter method names tried for an attribute, in order:
// Get<Name>, Is<Name>, and, for names such as "isAdmin", the name itself (IsAdmin).
func GetterCandidates(name string) []string {
	c := Capitalize(name)
	candidates := []string{"Get" + c, "Is" + c}
	if hasIsPrefix(name) {
		candidates = append(candidates, c)
	}
	return candidates
}

// SetterCandidates returns the setter method name tried for an attribute.
func SetterCandidates(name string) []string {
	return []string{"Set" + Capitalize(name)}
}

// "is" followed by an upper-case letter
func hasIsPrefix(name string) bool {
	if !strings.HasPrefix(name, "is") {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name[2:])
	return unicode.IsUpper(r)
}

func resolveAccessor(ptr reflect.Type, name string) *Accessor {
	a := &Accessor{
		Name:             name,
		GetterCandidates: GetterCandidates(name),
		SetterCandidates: SetterCandidates(name),
	}

	for _, candidate := range a.GetterCandidates {
		if m, ok := ptr.MethodByName(candidate); ok && isGetter(m) {
			a.getter = &m
			break
		}
	}
	if m, ok := ptr.MethodByName(a.SetterCandidates[0]); ok && isSetter(m) {
		a.setter = &m
	}
	return a
}

// Method types include the receiver as the first input.
func isGetter(m reflect.Method) bool {
	t := m.Type
	if t.NumIn() != 1 {
		return false
	}
	return t.NumOut() == 1 || (t.NumOut() == 2 && t.Out(1) == errorType)
}

func isSetter(m reflect.Method) bool {
	return m.Type.NumIn() == 2
}
