package repository

import (
	"time"

	"ajnabi/internal/models"

	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(id uint) (*models.Account, error) {
	var a models.Account
	if err := r.db.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) GetByPhone(phone string) (*models.Account, error) {
	var a models.Account
	if err := r.db.Where("phone = ?", phone).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) Create(a *models.Account) error {
	return r.db.Create(a).Error
}

func (r *AccountRepository) TouchLogin(id uint) error {
	now := time.Now()
	return r.db.Model(&models.Account{}).Where("id = ?", id).Update("last_login_at", now).Error
}

// Wallet returns the persisted coin balance and premium flag.
func (r *AccountRepository) Wallet(accountID uint) (int, bool, error) {
	a, err := r.GetByID(accountID)
	if err != nil {
		return 0, false, err
	}
	return a.CoinBalance, a.Premium, nil
}

// SaveWallet writes the balance and premium flag after a billing event.
func (r *AccountRepository) SaveWallet(accountID uint, coins int, premium bool) error {
	return r.db.Model(&models.Account{}).Where("id = ?", accountID).
		Updates(map[string]interface{}{"coin_balance": coins, "premium": premium}).Error
}
