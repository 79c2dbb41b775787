package payment

import (
	"context"
	"fmt"
	"time"
)

// StubProvider approves every charge; swap for a real processor in production.
type StubProvider struct{}

func (s *StubProvider) Charge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &ChargeResponse{
		Reference:   fmt.Sprintf("stub_%d_%d", time.Now().UnixNano(), req.AccountID),
		Status:      "COMPLETED",
		CompletedAt: time.Now(),
	}, nil
}
