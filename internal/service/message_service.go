package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/revivewell/internal/db"
	"gorm.io/gorm"
)

// BotReply 是机器人会话的固定脚本回复
const BotReply = "I understand how you're feeling. Remember that you're not alone in this journey. Would you like to talk more about it?"

const inboxLimit = 100

// MessageService 负责站内消息与机器人会话
type MessageService struct {
	db  *gorm.DB
	now func() time.Time
}

// SendInput 描述发送消息的请求
type SendInput struct {
	Content    string
	ReceiverID string
	IsBot      bool
}

// MessageRecord 为列表返回项，附带双方姓名
type MessageRecord struct {
	db.Message
	SenderName   string  `json:"sender_name"`
	ReceiverName *string `json:"receiver_name"`
}

// NewMessageService 构造 MessageService
func NewMessageService(gdb *gorm.DB) *MessageService {
	return &MessageService{db: gdb, now: time.Now}
}

// SetClock 覆盖时间来源，主要用于测试。
func (s *MessageService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// List 未指定 partnerID 时返回收件箱（最新在前，最多 100 条）；
// 指定时返回与该用户的双向会话（最早在前，不限条数）
func (s *MessageService) List(ctx context.Context, user db.User, partnerID string) ([]MessageRecord, error) {
	query := s.db.WithContext(ctx).Table("messages").
		Select("messages.*, sender.name AS sender_name, receiver.name AS receiver_name").
		Joins("JOIN users sender ON sender.id = messages.sender_id").
		Joins("LEFT JOIN users receiver ON receiver.id = messages.receiver_id")

	partnerID = strings.TrimSpace(partnerID)
	if partnerID != "" {
		query = query.
			Where("(messages.sender_id = ? AND messages.receiver_id = ?) OR (messages.sender_id = ? AND messages.receiver_id = ?)",
				user.ID, partnerID, partnerID, user.ID).
			Order("messages.created_at ASC")
	} else {
		query = query.
			Where("messages.sender_id = ? OR messages.receiver_id = ? OR (messages.is_bot_message = ? AND messages.receiver_id = ?)",
				user.ID, user.ID, true, user.ID).
			Order("messages.created_at DESC").
			Limit(inboxLimit)
	}

	var records []MessageRecord
	if err := query.Scan(&records).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return records, nil
}

// Send 发送消息，返回用户发出的那条记录
// 机器人消息会在同一事务中追加一条脚本回复
func (s *MessageService) Send(ctx context.Context, user db.User, input SendInput) (*db.Message, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrInvalidInput)
	}

	sentAt := s.now().UTC()
	if input.IsBot {
		return s.sendToBot(ctx, user, input.Content, sentAt)
	}

	receiverID := strings.TrimSpace(input.ReceiverID)
	if receiverID == "" {
		return nil, fmt.Errorf("%w: receiver id is required", ErrInvalidInput)
	}

	tx := s.db.WithContext(ctx)
	exists, err := userExists(tx, receiverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: receiver not found", ErrNotFound)
	}

	message := db.Message{
		SenderID:   user.ID,
		ReceiverID: &receiverID,
		Content:    input.Content,
		CreatedAt:  sentAt,
	}
	if err := tx.Create(&message).Error; err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return &message, nil
}

func (s *MessageService) sendToBot(ctx context.Context, user db.User, content string, sentAt time.Time) (*db.Message, error) {
	prompt := db.Message{
		SenderID:     user.ID,
		IsBotMessage: true,
		Content:      content,
		CreatedAt:    sentAt,
	}
	receiverID := user.ID
	reply := db.Message{
		SenderID:     user.ID,
		ReceiverID:   &receiverID,
		IsBotMessage: true,
		Content:      BotReply,
		// 回复排在提问之后
		CreatedAt: sentAt.Add(time.Millisecond),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&prompt).Error; err != nil {
			return fmt.Errorf("create bot prompt: %w", err)
		}
		if err := tx.Create(&reply).Error; err != nil {
			return fmt.Errorf("create bot reply: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prompt, nil
}
