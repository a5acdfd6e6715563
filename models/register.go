/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"github.com/suparena/entity/registry"
)

func init() {
	registry.RegisterType("User", func() any { return new(User) })
	registry.RegisterType("Message", func() any { return new(Message) })
	registry.RegisterType("Post", func() any { return new(Post) })
	registry.RegisterType("CustomUser", func() any { return NewCustomUser() })
	registry.RegisterType("CustomPost", func() any { return new(CustomPost) })
	registry.RegisterType("BadModel", func() any { return new(BadModel) })
	registry.RegisterType("Thread", func() any { return new(Thread) })

	registry.RegisterIndexMap[User](map[string]string{
		"PK": "USER#{email}",
		"SK": "PROFILE",
	})
	registry.RegisterIndexMap[CustomUser](map[string]string{
		"PK": "USER#{email}",
		"SK": "CUSTOM",
	})
	registry.RegisterIndexMap[Post](map[string]string{
		"PK":     "USER#{userId}",
		"SK":     "POST#{datetime}",
		"GSI1PK": "TITLE#{title}",
		"GSI1SK": "POST#{datetime}",
	})
	registry.RegisterIndexMap[Thread](map[string]string{
		"PK": "THREAD#{title}",
		"SK": "THREAD",
	})
}
