package repository

import (
	"time"

	"ajnabi/internal/models"
	"ajnabi/internal/session"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Threads loads all of an account's threads with messages, shaped for the
// session core.
func (r *ChatRepository) Threads(accountID uint) (map[string]*session.Thread, error) {
	var rows []models.ChatThread
	err := r.db.Where("account_id = ?", accountID).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("sent_at ASC") }).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]*session.Thread, len(rows))
	for _, row := range rows {
		t := &session.Thread{
			ID:          row.ID,
			PartnerName: row.PartnerName,
			Unread:      row.Unread,
			Messages:    make([]session.Message, 0, len(row.Messages)),
		}
		for _, m := range row.Messages {
			t.Messages = append(t.Messages, session.Message{
				ID:     m.ID,
				Sender: m.Sender,
				Text:   m.Body,
				SentAt: m.SentAt,
			})
		}
		out[t.ID] = t
	}
	return out, nil
}

func (r *ChatRepository) CreateThread(accountID uint, t *session.Thread) error {
	row := &models.ChatThread{
		ID:          t.ID,
		AccountID:   accountID,
		PartnerName: t.PartnerName,
		Unread:      t.Unread,
	}
	return r.db.Create(row).Error
}

func (r *ChatRepository) AppendMessage(accountID uint, threadID string, m session.Message) error {
	var count int64
	if err := r.db.Model(&models.ChatThread{}).
		Where("id = ? AND account_id = ?", threadID, accountID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	row := &models.ChatMessage{
		ID:       m.ID,
		ThreadID: threadID,
		Sender:   m.Sender,
		Body:     m.Text,
		SentAt:   m.SentAt,
	}
	return r.db.Create(row).Error
}

// SeedDemo creates the starter threads a fresh account sees. Idempotent per
// account: skipped when any thread already exists.
func (r *ChatRepository) SeedDemo(accountID uint) error {
	var count int64
	if err := r.db.Model(&models.ChatThread{}).Where("account_id = ?", accountID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	now := time.Now()
	seeds := []struct {
		partner  string
		unread   int
		messages []models.ChatMessage
	}{
		{"Sarah", 2, []models.ChatMessage{
			{Sender: "THEM", Body: "Hey there! 👋", SentAt: now.Add(-3 * time.Minute)},
			{Sender: "ME", Body: "Hello! How are you?", SentAt: now.Add(-2 * time.Minute)},
			{Sender: "THEM", Body: "I'm doing great! Thanks for asking", SentAt: now.Add(-time.Minute)},
		}},
		{"Mike", 0, []models.ChatMessage{
			{Sender: "THEM", Body: "Nice talking to you!", SentAt: now.Add(-time.Hour)},
		}},
		{"Emma", 0, []models.ChatMessage{
			{Sender: "THEM", Body: "See you later", SentAt: now.Add(-3 * time.Hour)},
		}},
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, s := range seeds {
			thread := &models.ChatThread{
				ID:          uuid.New().String(),
				AccountID:   accountID,
				PartnerName: s.partner,
				Unread:      s.unread,
			}
			if err := tx.Create(thread).Error; err != nil {
				return err
			}
			for _, m := range s.messages {
				m.ID = uuid.New().String()
				m.ThreadID = thread.ID
				if err := tx.Create(&m).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
