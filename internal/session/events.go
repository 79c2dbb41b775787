package session

// Event is a sealed set of session transitions. Every state mutation goes
// through Apply with one of these; nothing else touches Session fields.
type Event interface {
	Name() string
}

// Wire names for the event envelope accepted from clients. MatchFound and
// MatchFailed are internal completions and are never accepted over the wire.
const (
	EvSplashFinished        = "splash_finished"
	EvOnboardingCompleted   = "onboarding_completed"
	EvRequestEditProfile    = "request_edit_profile"
	EvStartMatch            = "start_match"
	EvEndCall               = "end_call"
	EvAcceptPostCall        = "accept_post_call"
	EvRejectPostCall        = "reject_post_call"
	EvOpenChat              = "open_chat"
	EvSendMessage           = "send_message"
	EvCloseChatDetail       = "close_chat_detail"
	EvChangeTab             = "change_tab"
	EvRequestPremium        = "request_premium_upgrade"
	EvClosePremiumModal     = "close_premium_modal"
	EvSubscribePremium      = "subscribe_premium"
	EvRequestBuyCoins       = "request_buy_coins"
	EvCloseCoinModal        = "close_coin_modal"
	EvPurchaseCoins         = "purchase_coins"
	EvChangeMatchPreference = "change_match_preference"
	EvReportPartner         = "report_partner"
	EvBlockPartner          = "block_partner"
	EvRequestReconnect      = "request_reconnect"
)

type SplashFinished struct{}

type OnboardingCompleted struct{ Profile Profile }

type RequestEditProfile struct{}

type StartMatch struct{}

// MatchFound completes a pending StartMatch. Generation must match the one
// armed by StartMatch or the result is dropped as stale.
type MatchFound struct {
	Generation uint64
	Partner    PartnerProfile
}

// MatchFailed completes a pending StartMatch with a service failure.
type MatchFailed struct {
	Generation uint64
	Cause      error
}

type EndCall struct{}

type AcceptPostCall struct{}

type RejectPostCall struct{}

type OpenChat struct{ ChatID string }

type SendMessage struct{ Text string }

type CloseChatDetail struct{}

type ChangeTab struct{ Tab string }

type RequestPremiumUpgrade struct{}

type ClosePremiumModal struct{}

type SubscribePremium struct{ Plan string }

type RequestBuyCoins struct{}

type CloseCoinModal struct{}

type PurchaseCoins struct{ Pack string }

type ChangeMatchPreference struct{ Preference string }

// In-call moderation actions from the original call screen. They acknowledge
// without changing navigation state.
type ReportPartner struct{}

type BlockPartner struct{}

// RequestReconnect re-arms matchmaking while still on the call screen.
type RequestReconnect struct{}

func (SplashFinished) Name() string        { return EvSplashFinished }
func (OnboardingCompleted) Name() string   { return EvOnboardingCompleted }
func (RequestEditProfile) Name() string    { return EvRequestEditProfile }
func (StartMatch) Name() string            { return EvStartMatch }
func (MatchFound) Name() string            { return "match_found" }
func (MatchFailed) Name() string           { return "match_failed" }
func (EndCall) Name() string               { return EvEndCall }
func (AcceptPostCall) Name() string        { return EvAcceptPostCall }
func (RejectPostCall) Name() string        { return EvRejectPostCall }
func (OpenChat) Name() string              { return EvOpenChat }
func (SendMessage) Name() string           { return EvSendMessage }
func (CloseChatDetail) Name() string       { return EvCloseChatDetail }
func (ChangeTab) Name() string             { return EvChangeTab }
func (RequestPremiumUpgrade) Name() string { return EvRequestPremium }
func (ClosePremiumModal) Name() string     { return EvClosePremiumModal }
func (SubscribePremium) Name() string      { return EvSubscribePremium }
func (RequestBuyCoins) Name() string       { return EvRequestBuyCoins }
func (CloseCoinModal) Name() string        { return EvCloseCoinModal }
func (PurchaseCoins) Name() string         { return EvPurchaseCoins }
func (ChangeMatchPreference) Name() string { return EvChangeMatchPreference }
func (ReportPartner) Name() string         { return EvReportPartner }
func (BlockPartner) Name() string          { return EvBlockPartner }
func (RequestReconnect) Name() string      { return EvRequestReconnect }
