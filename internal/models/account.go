package models

import (
	"time"

	"ajnabi/internal/domain"

	"gorm.io/gorm"
)

type Account struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Phone       string         `gorm:"uniqueIndex;size:20;not null" json:"phone"`
	CoinBalance int            `gorm:"not null;default:100" json:"coin_balance"`
	Premium     bool           `gorm:"default:false" json:"premium"`
	PremiumPlan string         `gorm:"size:20" json:"premium_plan,omitempty"`
	LastLoginAt *time.Time     `json:"last_login_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

func NewAccount(phone string) *Account {
	return &Account{Phone: phone, CoinBalance: domain.DefaultCoinBalance}
}
