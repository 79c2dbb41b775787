package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"sync"
	"time"

	"ajnabi/config"
	"ajnabi/internal/auth"
	"ajnabi/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidPhone    = errors.New("phone must be 10 digits")
	ErrInvalidCode     = errors.New("invalid verification code")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrTooManyAttempts = errors.New("too many attempts, request a new code")
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// AccountStore is the slice of the account repository the OTP flow needs.
type AccountStore interface {
	GetByPhone(phone string) (*models.Account, error)
	Create(a *models.Account) error
	TouchLogin(id uint) error
}

// ChatSeeder provisions the starter threads for a brand-new account.
type ChatSeeder interface {
	SeedDemo(accountID uint) error
}

type otpEntry struct {
	hash      []byte
	expiresAt time.Time
	attempts  int
}

// OTPService implements phone verification. Codes are held in memory,
// bcrypt-hashed, and delivery is a logged stub; the real SMS gateway slots
// in behind SendOTP without touching the flow.
type OTPService struct {
	cfg      *config.Config
	accounts AccountStore
	chats    ChatSeeder
	log      *zap.Logger

	mu    sync.Mutex
	codes map[string]*otpEntry
}

func NewOTPService(cfg *config.Config, accounts AccountStore, chats ChatSeeder, log *zap.Logger) *OTPService {
	return &OTPService{
		cfg:      cfg,
		accounts: accounts,
		chats:    chats,
		log:      log,
		codes:    make(map[string]*otpEntry),
	}
}

// SendOTP generates and "delivers" a 6-digit code for the phone.
func (s *OTPService) SendOTP(phone string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	code, err := randomCode()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.codes[phone] = &otpEntry{hash: hash, expiresAt: time.Now().Add(s.cfg.OTP.CodeTTL)}
	s.mu.Unlock()
	// Stub delivery; a production build sends this through the SMS gateway.
	s.log.Info("otp issued", zap.String("phone", phone), zap.String("code", code))
	return nil
}

// VerifyOTP checks the code and returns the account plus a token pair,
// creating and seeding the account on first login.
func (s *OTPService) VerifyOTP(phone, code string) (*models.Account, string, string, error) {
	if !phonePattern.MatchString(phone) {
		return nil, "", "", ErrInvalidPhone
	}
	if err := s.consume(phone, code); err != nil {
		return nil, "", "", err
	}

	acct, err := s.accounts.GetByPhone(phone)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		acct = models.NewAccount(phone)
		if err := s.accounts.Create(acct); err != nil {
			return nil, "", "", err
		}
		if err := s.chats.SeedDemo(acct.ID); err != nil {
			s.log.Warn("demo chat seed failed", zap.Uint("account_id", acct.ID), zap.Error(err))
		}
	} else if err != nil {
		return nil, "", "", err
	}
	if err := s.accounts.TouchLogin(acct.ID); err != nil {
		s.log.Warn("touch login failed", zap.Uint("account_id", acct.ID), zap.Error(err))
	}

	access, err := auth.GenerateAccessToken(&s.cfg.JWT, acct.ID, acct.Phone)
	if err != nil {
		return acct, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, acct.ID)
	if err != nil {
		return acct, access, "", err
	}
	return acct, access, refresh, nil
}

func (s *OTPService) consume(phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.codes[phone]
	if !ok {
		return ErrInvalidCode
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.codes, phone)
		return ErrCodeExpired
	}
	entry.attempts++
	if entry.attempts > s.cfg.OTP.MaxAttempts {
		delete(s.codes, phone)
		return ErrTooManyAttempts
	}
	if bcrypt.CompareHashAndPassword(entry.hash, []byte(code)) != nil {
		return ErrInvalidCode
	}
	delete(s.codes, phone)
	return nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
