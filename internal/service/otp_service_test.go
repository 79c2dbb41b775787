package service

import (
	"testing"
	"time"

	"ajnabi/config"
	"ajnabi/internal/auth"
	"ajnabi/internal/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type mockAccountStore struct {
	GetByPhoneFunc func(phone string) (*models.Account, error)
	CreateFunc     func(a *models.Account) error
	TouchLoginFunc func(id uint) error
}

func (m *mockAccountStore) GetByPhone(phone string) (*models.Account, error) {
	return m.GetByPhoneFunc(phone)
}
func (m *mockAccountStore) Create(a *models.Account) error { return m.CreateFunc(a) }
func (m *mockAccountStore) TouchLogin(id uint) error {
	if m.TouchLoginFunc != nil {
		return m.TouchLoginFunc(id)
	}
	return nil
}

type mockChatSeeder struct {
	SeedDemoFunc func(accountID uint) error
	seeded       []uint
}

func (m *mockChatSeeder) SeedDemo(accountID uint) error {
	m.seeded = append(m.seeded, accountID)
	if m.SeedDemoFunc != nil {
		return m.SeedDemoFunc(accountID)
	}
	return nil
}

func newOTPFixture(t *testing.T) (*OTPService, *mockAccountStore, *mockChatSeeder, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	accounts := &mockAccountStore{
		GetByPhoneFunc: func(phone string) (*models.Account, error) { return nil, gorm.ErrRecordNotFound },
		CreateFunc: func(a *models.Account) error {
			a.ID = 42
			return nil
		},
	}
	seeder := &mockChatSeeder{}
	svc := NewOTPService(config.Load(), accounts, seeder, zap.New(core))
	return svc, accounts, seeder, logs
}

// issuedCode extracts the stub-delivered code from the log stream.
func issuedCode(t *testing.T, logs *observer.ObservedLogs) string {
	t.Helper()
	for _, e := range logs.All() {
		if e.Message != "otp issued" {
			continue
		}
		for _, f := range e.Context {
			if f.Key == "code" {
				return f.String
			}
		}
	}
	t.Fatal("no otp issued log entry found")
	return ""
}

func TestSendOTP_InvalidPhone(t *testing.T) {
	svc, _, _, _ := newOTPFixture(t)
	for _, phone := range []string{"", "12345", "123456789012", "12345abcde"} {
		if err := svc.SendOTP(phone); err != ErrInvalidPhone {
			t.Errorf("SendOTP(%q) = %v; want ErrInvalidPhone", phone, err)
		}
	}
}

func TestVerifyOTP_Success_CreatesAndSeedsAccount(t *testing.T) {
	svc, _, seeder, logs := newOTPFixture(t)
	if err := svc.SendOTP("5551234567"); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	code := issuedCode(t, logs)

	acct, access, refresh, err := svc.VerifyOTP("5551234567", code)
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if acct.ID != 42 || acct.Phone != "5551234567" {
		t.Errorf("account = %+v; want ID 42 phone 5551234567", acct)
	}
	if len(seeder.seeded) != 1 || seeder.seeded[0] != 42 {
		t.Errorf("seeded = %v; want [42]", seeder.seeded)
	}
	claims, err := auth.ParseAccessToken(&svc.cfg.JWT, access)
	if err != nil {
		t.Fatalf("access token does not parse: %v", err)
	}
	if claims.AccountID != 42 {
		t.Errorf("claims.AccountID = %d; want 42", claims.AccountID)
	}
	if id, err := auth.ParseRefreshToken(&svc.cfg.JWT, refresh); err != nil || id != 42 {
		t.Errorf("refresh parse = (%d, %v); want (42, nil)", id, err)
	}
}

func TestVerifyOTP_ExistingAccountNotReseeded(t *testing.T) {
	svc, accounts, seeder, logs := newOTPFixture(t)
	accounts.GetByPhoneFunc = func(phone string) (*models.Account, error) {
		return &models.Account{ID: 7, Phone: phone}, nil
	}
	if err := svc.SendOTP("5551234567"); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	acct, _, _, err := svc.VerifyOTP("5551234567", issuedCode(t, logs))
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if acct.ID != 7 {
		t.Errorf("acct.ID = %d; want 7", acct.ID)
	}
	if len(seeder.seeded) != 0 {
		t.Errorf("existing account must not be reseeded; seeded = %v", seeder.seeded)
	}
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	svc, _, _, _ := newOTPFixture(t)
	if err := svc.SendOTP("5551234567"); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	if _, _, _, err := svc.VerifyOTP("5551234567", "000000"); err != ErrInvalidCode {
		t.Errorf("VerifyOTP wrong code = %v; want ErrInvalidCode", err)
	}
}

func TestVerifyOTP_NoCodeIssued(t *testing.T) {
	svc, _, _, _ := newOTPFixture(t)
	if _, _, _, err := svc.VerifyOTP("5551234567", "123456"); err != ErrInvalidCode {
		t.Errorf("VerifyOTP without send = %v; want ErrInvalidCode", err)
	}
}

func TestVerifyOTP_Expired(t *testing.T) {
	svc, _, _, logs := newOTPFixture(t)
	svc.cfg.OTP.CodeTTL = -time.Minute
	if err := svc.SendOTP("5551234567"); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	if _, _, _, err := svc.VerifyOTP("5551234567", issuedCode(t, logs)); err != ErrCodeExpired {
		t.Errorf("VerifyOTP expired = %v; want ErrCodeExpired", err)
	}
}

func TestVerifyOTP_TooManyAttempts(t *testing.T) {
	svc, _, _, logs := newOTPFixture(t)
	svc.cfg.OTP.MaxAttempts = 2
	if err := svc.SendOTP("5551234567"); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	code := issuedCode(t, logs)
	for i := 0; i < 2; i++ {
		if _, _, _, err := svc.VerifyOTP("5551234567", "000000"); err != ErrInvalidCode {
			t.Fatalf("attempt %d = %v; want ErrInvalidCode", i+1, err)
		}
	}
	if _, _, _, err := svc.VerifyOTP("5551234567", code); err != ErrTooManyAttempts {
		t.Errorf("third attempt = %v; want ErrTooManyAttempts", err)
	}
	// The code is burned; even the right one no longer works.
	if _, _, _, err := svc.VerifyOTP("5551234567", code); err != ErrInvalidCode {
		t.Errorf("after burn = %v; want ErrInvalidCode", err)
	}
}
