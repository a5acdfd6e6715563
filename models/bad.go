/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"github.com/suparena/entity"
)

// BadModel is malformed on purpose: messageId has only a setter, topicId only
// a getter, and isProduction has neither.
type BadModel struct {
	entity.Base

	userId       int
	messageId    int
	topicId      int
	isProduction bool
}

func (b *BadModel) GetUserId() int { return b.userId }

func (b *BadModel) SetUserId(userID int) { b.userId = userID }

func (b *BadModel) SetMessageId(messageID int) { b.messageId = messageID }

func (b *BadModel) GetTopicId() int { return b.topicId }
