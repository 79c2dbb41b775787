package handler

import (
	"net/http"

	"ajnabi/internal/domain"
	"ajnabi/internal/middleware"
	"ajnabi/internal/session"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	manager *session.Manager
}

func NewSessionHandler(manager *session.Manager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

// GetView returns the current projection for the account's session.
func (h *SessionHandler) GetView(c *gin.Context) {
	accountID := middleware.GetAccountID(c)
	v, err := h.manager.View(accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": v})
}

// eventEnvelope is the wire shape of POST /session/events. Only the fields
// the named event type uses are read.
type eventEnvelope struct {
	Type       string           `json:"type" binding:"required"`
	Profile    *session.Profile `json:"profile"`
	ChatID     string           `json:"chat_id"`
	Text       string           `json:"text"`
	Tab        string           `json:"tab"`
	Plan       string           `json:"plan"`
	Pack       string           `json:"pack"`
	Preference string           `json:"preference"`
}

// PostEvent applies one session event and responds with the new projection.
func (h *SessionHandler) PostEvent(c *gin.Context) {
	accountID := middleware.GetAccountID(c)
	var req eventEnvelope
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event type required"})
		return
	}
	ev, err := buildEvent(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.manager.Dispatch(c.Request.Context(), accountID, ev)
	if err != nil {
		status := http.StatusBadRequest
		switch domain.KindOf(err) {
		case domain.KindNotFound:
			status = http.StatusNotFound
		case domain.KindService:
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": err.Error(), "view": v})
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": v})
}

func buildEvent(req eventEnvelope) (session.Event, error) {
	switch req.Type {
	case session.EvSplashFinished:
		return session.SplashFinished{}, nil
	case session.EvOnboardingCompleted:
		if req.Profile == nil {
			return nil, domain.Validation("profile required")
		}
		return session.OnboardingCompleted{Profile: *req.Profile}, nil
	case session.EvRequestEditProfile:
		return session.RequestEditProfile{}, nil
	case session.EvStartMatch:
		return session.StartMatch{}, nil
	case session.EvEndCall:
		return session.EndCall{}, nil
	case session.EvAcceptPostCall:
		return session.AcceptPostCall{}, nil
	case session.EvRejectPostCall:
		return session.RejectPostCall{}, nil
	case session.EvOpenChat:
		return session.OpenChat{ChatID: req.ChatID}, nil
	case session.EvSendMessage:
		return session.SendMessage{Text: req.Text}, nil
	case session.EvCloseChatDetail:
		return session.CloseChatDetail{}, nil
	case session.EvChangeTab:
		return session.ChangeTab{Tab: req.Tab}, nil
	case session.EvRequestPremium:
		return session.RequestPremiumUpgrade{}, nil
	case session.EvClosePremiumModal:
		return session.ClosePremiumModal{}, nil
	case session.EvSubscribePremium:
		return session.SubscribePremium{Plan: req.Plan}, nil
	case session.EvRequestBuyCoins:
		return session.RequestBuyCoins{}, nil
	case session.EvCloseCoinModal:
		return session.CloseCoinModal{}, nil
	case session.EvPurchaseCoins:
		return session.PurchaseCoins{Pack: req.Pack}, nil
	case session.EvChangeMatchPreference:
		return session.ChangeMatchPreference{Preference: req.Preference}, nil
	case session.EvReportPartner:
		return session.ReportPartner{}, nil
	case session.EvBlockPartner:
		return session.BlockPartner{}, nil
	case session.EvRequestReconnect:
		return session.RequestReconnect{}, nil
	default:
		return nil, domain.Validation("unknown event type %q", req.Type)
	}
}
