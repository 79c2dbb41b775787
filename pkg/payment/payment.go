package payment

import (
	"context"
	"time"
)

// Item types a charge can cover.
const (
	ItemCoinPack    = "COIN_PACK"
	ItemPremiumPlan = "PREMIUM_PLAN"
)

type ChargeRequest struct {
	AccountID      uint
	ItemType       string // COIN_PACK | PREMIUM_PLAN
	ItemID         string // pack or plan identifier
	IdempotencyKey string
	Description    string
}

type ChargeResponse struct {
	Reference   string
	Status      string
	CompletedAt time.Time
}

// Provider executes charges against a real processor. The session layer only
// sees success or a typed failure; nothing here blocks event handling.
type Provider interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error)
}
