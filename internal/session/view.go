package session

import (
	"sort"

	"ajnabi/internal/domain"
)

// Root surfaces a View can resolve to. Exactly one is active at a time.
const (
	RootSplash     = "SPLASH"
	RootOnboarding = "ONBOARDING"
	RootCall       = "CALL"
	RootPostCall   = "POST_CALL"
	RootChatDetail = "CHAT_DETAIL"
	RootHome       = "HOME"
)

// ThreadPreview is the chat-list row shown on the chat tab.
type ThreadPreview struct {
	ID          string `json:"id"`
	PartnerName string `json:"partner_name"`
	LastMessage string `json:"last_message"`
	LastAt      int64  `json:"last_at,omitempty"` // unix seconds, 0 for empty threads
	Unread      int    `json:"unread,omitempty"`
}

// View is what the rendering layer draws. It is a pure, deterministic
// projection of a Session; no field carries behavior.
type View struct {
	Root         string          `json:"root"`
	Tab          string          `json:"tab,omitempty"`
	Profile      *Profile        `json:"profile,omitempty"`
	EditProfile  *Profile        `json:"edit_profile,omitempty"` // prefill when re-entering onboarding
	Partner      *PartnerProfile `json:"partner,omitempty"`
	Chat         *Thread         `json:"chat,omitempty"`
	ChatList     []ThreadPreview `json:"chat_list,omitempty"`
	CoinBalance  int             `json:"coin_balance"`
	Premium      bool            `json:"premium"`
	MatchPending bool            `json:"match_pending,omitempty"`
	Overlays     []string        `json:"overlays,omitempty"`
}

// DeriveView resolves the single root surface with precedence
// Splash > Onboarding-or-editing > main screen > home tab, then overlays
// modals independently on top.
func DeriveView(s Session) View {
	v := View{
		CoinBalance: s.CoinBalance,
		Premium:     s.Premium,
	}
	if s.ShowPremiumModal {
		v.Overlays = append(v.Overlays, domain.OverlayPremium)
	}
	if s.ShowCoinModal {
		v.Overlays = append(v.Overlays, domain.OverlayCoins)
	}

	switch {
	case s.Phase == domain.PhaseSplash:
		v.Root = RootSplash
		return v

	case s.Phase == domain.PhaseOnboarding || s.EditingProfile:
		v.Root = RootOnboarding
		if s.EditingProfile {
			v.EditProfile = s.Profile
		}
		return v

	case s.MainScreen == domain.ScreenCall:
		v.Root = RootCall
		v.Partner = s.CallPartner
		return v

	case s.MainScreen == domain.ScreenPostCall:
		v.Root = RootPostCall
		v.Partner = s.CallPartner
		return v

	case s.MainScreen == domain.ScreenChatDetail:
		v.Root = RootChatDetail
		v.Chat = s.Chats[s.ActiveChatID]
		return v
	}

	v.Root = RootHome
	v.Tab = s.ActiveTab
	v.MatchPending = s.MatchPending
	// Tabs reading the profile are unreachable without one; fall back rather
	// than render them empty.
	if s.Profile == nil && (v.Tab == domain.TabMatch || v.Tab == domain.TabProfile) {
		v.Tab = domain.TabHome
	}
	switch v.Tab {
	case domain.TabChat:
		v.ChatList = previews(s.Chats)
	case domain.TabProfile, domain.TabHome, domain.TabMatch:
		v.Profile = s.Profile
	}
	return v
}

// previews sorts newest-activity-first, empty threads last by partner name.
func previews(chats map[string]*Thread) []ThreadPreview {
	out := make([]ThreadPreview, 0, len(chats))
	for _, t := range chats {
		p := ThreadPreview{ID: t.ID, PartnerName: t.PartnerName, Unread: t.Unread}
		if m := t.LastMessage(); m != nil {
			p.LastMessage = m.Text
			p.LastAt = m.SentAt.Unix()
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastAt != out[j].LastAt {
			return out[i].LastAt > out[j].LastAt
		}
		return out[i].PartnerName < out[j].PartnerName
	})
	return out
}
