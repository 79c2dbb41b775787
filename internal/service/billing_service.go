package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ajnabi/internal/domain"
	"ajnabi/pkg/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnknownPack = errors.New("unknown coin pack")
	ErrUnknownPlan = errors.New("unknown premium plan")
)

// BillingService runs the payment leg of coin and premium purchases. It
// implements session.Biller; the session manager only commits the state
// change after a charge succeeds.
type BillingService struct {
	provider payment.Provider
	log      *zap.Logger
}

func NewBillingService(provider payment.Provider, log *zap.Logger) *BillingService {
	return &BillingService{provider: provider, log: log}
}

func (s *BillingService) PurchaseCoins(ctx context.Context, accountID uint, pack string) error {
	pack = strings.ToUpper(pack)
	coins, ok := domain.CoinPacks[pack]
	if !ok {
		return ErrUnknownPack
	}
	resp, err := s.provider.Charge(ctx, payment.ChargeRequest{
		AccountID:      accountID,
		ItemType:       payment.ItemCoinPack,
		ItemID:         pack,
		IdempotencyKey: uuid.New().String(),
		Description:    fmt.Sprintf("%d coins (%s pack)", coins, pack),
	})
	if err != nil {
		return err
	}
	s.log.Info("coins charged",
		zap.Uint("account_id", accountID),
		zap.String("pack", pack),
		zap.String("reference", resp.Reference))
	return nil
}

func (s *BillingService) Subscribe(ctx context.Context, accountID uint, plan string) error {
	plan = strings.ToUpper(plan)
	if !domain.PremiumPlans[plan] {
		return ErrUnknownPlan
	}
	resp, err := s.provider.Charge(ctx, payment.ChargeRequest{
		AccountID:      accountID,
		ItemType:       payment.ItemPremiumPlan,
		ItemID:         plan,
		IdempotencyKey: uuid.New().String(),
		Description:    fmt.Sprintf("premium %s plan", strings.ToLower(plan)),
	})
	if err != nil {
		return err
	}
	s.log.Info("premium charged",
		zap.Uint("account_id", accountID),
		zap.String("plan", plan),
		zap.String("reference", resp.Reference))
	return nil
}
