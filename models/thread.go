/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"github.com/suparena/entity"
)

// Thread nests other entities: one directly and several through a slice.
type Thread struct {
	entity.Base

	title  string
	author *User
	posts  []*Post
}

func (t *Thread) GetTitle() string { return t.title }

func (t *Thread) SetTitle(title string) { t.title = title }

func (t *Thread) GetAuthor() *User { return t.author }

func (t *Thread) SetAuthor(author *User) { t.author = author }

func (t *Thread) GetPosts() []*Post { return t.posts }

func (t *Thread) SetPosts(posts []*Post) { t.posts = posts }
