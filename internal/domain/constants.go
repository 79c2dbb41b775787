package domain

// Lifecycle phases: the top-level surface of a session.
const (
	PhaseSplash     = "SPLASH"
	PhaseOnboarding = "ONBOARDING"
	PhaseMain       = "MAIN"
)

// Main screens shown once inside the main phase.
const (
	ScreenHome       = "HOME"
	ScreenCall       = "CALL"
	ScreenPostCall   = "POST_CALL"
	ScreenChatDetail = "CHAT_DETAIL"
)

// Bottom-navigation tabs, meaningful only on the home screen.
const (
	TabHome    = "HOME"
	TabMatch   = "MATCH"
	TabCoins   = "COINS"
	TabChat    = "CHAT"
	TabProfile = "PROFILE"
)

const (
	PrefAnyone = "ANYONE"
	PrefMen    = "MEN"
	PrefWomen  = "WOMEN"
)

const (
	SenderMe   = "ME"
	SenderThem = "THEM"
)

// Overlay identifiers in the rendered view.
const (
	OverlayPremium = "PREMIUM_MODAL"
	OverlayCoins   = "COIN_MODAL"
)

// DefaultCoinBalance is granted to every new account.
const DefaultCoinBalance = 100

// DefaultAge is assumed when onboarding does not supply one.
const DefaultAge = 20

// MaxProfilePhotos caps the profile photo carousel.
const MaxProfilePhotos = 6

// CoinPacks maps purchasable pack IDs to the coins they grant.
var CoinPacks = map[string]int{
	"STARTER": 50,
	"POPULAR": 250,
	"BEST":    600,
}

// PremiumPlans is the fixed set of subscription plans.
var PremiumPlans = map[string]bool{
	"WEEKLY":  true,
	"MONTHLY": true,
	"YEARLY":  true,
}

var ValidTabs = map[string]bool{
	TabHome: true, TabMatch: true, TabCoins: true, TabChat: true, TabProfile: true,
}

var ValidPreferences = map[string]bool{
	PrefAnyone: true, PrefMen: true, PrefWomen: true,
}
