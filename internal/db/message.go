package db

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message 记录站内消息
// 机器人会话由两条记录组成：用户发出的消息（ReceiverID 为空）与脚本回复（ReceiverID 指向发送者）
type Message struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	SenderID     string    `gorm:"not null;index;size:36" json:"sender_id"`
	ReceiverID   *string   `gorm:"index;size:36" json:"receiver_id"`
	IsBotMessage bool      `gorm:"default:false" json:"is_bot_message"`
	Content      string    `gorm:"not null" json:"content"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(m.ID) == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
