package models

import (
	"time"

	"gorm.io/gorm"
)

type ChatThread struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	AccountID   uint           `gorm:"not null;index" json:"account_id"`
	PartnerName string         `gorm:"size:64;not null" json:"partner_name"`
	Unread      int            `gorm:"default:0" json:"unread"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Account  Account       `gorm:"foreignKey:AccountID" json:"-"`
	Messages []ChatMessage `gorm:"foreignKey:ThreadID" json:"messages,omitempty"`
}

func (ChatThread) TableName() string {
	return "chat_threads"
}

// ChatMessage rows are append-only; no edit or delete path exists.
type ChatMessage struct {
	ID       string    `gorm:"primaryKey;size:36" json:"id"`
	ThreadID string    `gorm:"size:36;not null;index" json:"thread_id"`
	Sender   string    `gorm:"size:8;not null" json:"sender"` // ME | THEM
	Body     string    `gorm:"type:text" json:"body"`
	SentAt   time.Time `gorm:"index" json:"sent_at"`

	Thread ChatThread `gorm:"foreignKey:ThreadID" json:"-"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
