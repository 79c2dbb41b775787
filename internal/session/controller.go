package session

import (
	"strings"
	"time"

	"ajnabi/internal/domain"

	"github.com/google/uuid"
)

// Apply advances a session by one event and returns the resulting session.
// It is pure except for message IDs and timestamps. On error the returned
// session equals the input; no partial state is ever committed.
//
// Stale async completions (MatchFound/MatchFailed whose generation no longer
// matches, or arriving after navigation) are not errors: they return the
// session unchanged with a nil error and are simply never rendered.
func Apply(s Session, ev Event) (Session, error) {
	switch e := ev.(type) {

	case SplashFinished:
		// Idempotent: a re-fired splash timer is a no-op.
		if s.Phase != domain.PhaseSplash {
			return s, nil
		}
		s.Phase = domain.PhaseOnboarding
		return s, nil

	case OnboardingCompleted:
		if s.Phase != domain.PhaseOnboarding && !s.EditingProfile {
			return s, errNotAllowed(ev, s)
		}
		p := e.Profile
		p.Normalize()
		if err := p.Validate(); err != nil {
			return s, err
		}
		s.Profile = &p
		if s.EditingProfile {
			s.EditingProfile = false
			return s, nil
		}
		s.Phase = domain.PhaseMain
		s.MainScreen = domain.ScreenHome
		s.ActiveTab = domain.TabHome
		return s, nil

	case RequestEditProfile:
		if s.Phase != domain.PhaseMain {
			return s, errNotAllowed(ev, s)
		}
		s.EditingProfile = true
		s.MatchPending = false // cancel any in-flight match
		return s, nil

	case StartMatch:
		if !s.onHome() {
			return s, errNotAllowed(ev, s)
		}
		if s.MatchPending {
			return s, domain.Validation("match already in progress")
		}
		s.MatchPending = true
		s.MatchGeneration++
		return s, nil

	case MatchFound:
		if !s.matchCompletionCurrent(e.Generation) {
			return s, nil // stale result, dropped
		}
		partner := e.Partner
		s.MatchPending = false
		s.CallPartner = &partner
		s.MainScreen = domain.ScreenCall
		return s, nil

	case MatchFailed:
		if !s.matchCompletionCurrent(e.Generation) {
			return s, nil // stale result, dropped
		}
		s.MatchPending = false
		return s, domain.ServiceFailure("matchmaking failed", e.Cause)

	case EndCall:
		if s.MainScreen != domain.ScreenCall || s.Phase != domain.PhaseMain {
			return s, errNotAllowed(ev, s)
		}
		// Partner profile is retained for the post-call decision.
		s.MainScreen = domain.ScreenPostCall
		s.MatchPending = false // cancel a pending reconnect
		return s, nil

	case AcceptPostCall:
		if s.MainScreen != domain.ScreenPostCall || s.Phase != domain.PhaseMain {
			return s, errNotAllowed(ev, s)
		}
		partner := s.CallPartner
		s.MainScreen = domain.ScreenHome
		s.ActiveTab = domain.TabChat
		s.CallPartner = nil
		if partner == nil {
			return s, nil
		}
		if existing := s.threadForPartner(partner.Username); existing != nil {
			return s, nil
		}
		chats := s.withChats()
		t := &Thread{ID: uuid.New().String(), PartnerName: partner.Username}
		chats[t.ID] = t
		s.Chats = chats
		return s, nil

	case RejectPostCall:
		if s.MainScreen != domain.ScreenPostCall || s.Phase != domain.PhaseMain {
			return s, errNotAllowed(ev, s)
		}
		// ActiveTab still holds its pre-call value; entering a call never
		// touches it.
		s.MainScreen = domain.ScreenHome
		s.CallPartner = nil
		return s, nil

	case OpenChat:
		if !s.onHome() {
			return s, errNotAllowed(ev, s)
		}
		t, ok := s.Chats[e.ChatID]
		if !ok {
			return s, domain.NotFound("chat %q not found", e.ChatID)
		}
		s.MainScreen = domain.ScreenChatDetail
		s.ActiveChatID = e.ChatID
		s.MatchPending = false // cancel any in-flight match
		if t.Unread > 0 {
			chats := s.withChats()
			c := t.clone()
			c.Unread = 0
			chats[c.ID] = c
			s.Chats = chats
		}
		return s, nil

	case SendMessage:
		if s.MainScreen != domain.ScreenChatDetail || s.Phase != domain.PhaseMain {
			return s, errNotAllowed(ev, s)
		}
		text := strings.TrimSpace(e.Text)
		if text == "" {
			return s, domain.Validation("message text required")
		}
		t, ok := s.Chats[s.ActiveChatID]
		if !ok {
			return s, domain.NotFound("chat %q not found", s.ActiveChatID)
		}
		chats := s.withChats()
		c := t.clone()
		c.Messages = append(c.Messages, Message{
			ID:     uuid.New().String(),
			Sender: domain.SenderMe,
			Text:   text,
			SentAt: time.Now(),
		})
		chats[c.ID] = c
		s.Chats = chats
		return s, nil

	case CloseChatDetail:
		if s.MainScreen != domain.ScreenChatDetail || s.Phase != domain.PhaseMain {
			return s, errNotAllowed(ev, s)
		}
		s.MainScreen = domain.ScreenHome
		s.ActiveTab = domain.TabChat
		s.ActiveChatID = ""
		return s, nil

	case ChangeTab:
		if !s.onHome() {
			return s, errNotAllowed(ev, s)
		}
		tab := strings.ToUpper(e.Tab)
		if !domain.ValidTabs[tab] {
			return s, domain.Validation("unknown tab %q", e.Tab)
		}
		if (tab == domain.TabMatch || tab == domain.TabProfile) && s.Profile == nil {
			return s, domain.Validation("profile required for %s tab", tab)
		}
		s.ActiveTab = tab
		return s, nil

	case RequestPremiumUpgrade:
		s.ShowPremiumModal = true
		return s, nil

	case ClosePremiumModal:
		s.ShowPremiumModal = false
		return s, nil

	case SubscribePremium:
		if !s.ShowPremiumModal {
			return s, errNotAllowed(ev, s)
		}
		if !domain.PremiumPlans[strings.ToUpper(e.Plan)] {
			return s, domain.Validation("unknown premium plan %q", e.Plan)
		}
		// Sticky for the rest of the session; no downgrade path.
		s.Premium = true
		s.ShowPremiumModal = false
		return s, nil

	case RequestBuyCoins:
		s.ShowCoinModal = true
		return s, nil

	case CloseCoinModal:
		s.ShowCoinModal = false
		return s, nil

	case PurchaseCoins:
		if !s.ShowCoinModal {
			return s, errNotAllowed(ev, s)
		}
		value, ok := domain.CoinPacks[strings.ToUpper(e.Pack)]
		if !ok {
			return s, domain.Validation("unknown coin pack %q", e.Pack)
		}
		s.CoinBalance += value
		s.ShowCoinModal = false
		return s, nil

	case ChangeMatchPreference:
		if s.Profile == nil {
			return s, domain.Validation("profile required")
		}
		pref := strings.ToUpper(e.Preference)
		if !domain.ValidPreferences[pref] {
			return s, domain.Validation("unknown match preference %q", e.Preference)
		}
		p := *s.Profile
		p.MatchPreference = pref
		s.Profile = &p
		return s, nil

	case ReportPartner, BlockPartner:
		if s.MainScreen != domain.ScreenCall || s.Phase != domain.PhaseMain {
			return s, errNotAllowed(ev, s)
		}
		// Acknowledged by the caller; moderation happens outside the session.
		return s, nil

	case RequestReconnect:
		if s.MainScreen != domain.ScreenCall || s.Phase != domain.PhaseMain {
			return s, errNotAllowed(ev, s)
		}
		if s.MatchPending {
			return s, domain.Validation("match already in progress")
		}
		s.MatchPending = true
		s.MatchGeneration++
		return s, nil

	default:
		return s, domain.Validation("unknown event %q", ev.Name())
	}
}

// matchCompletionCurrent reports whether a match completion still applies:
// the generation it carries is the armed one, the session is still waiting,
// and the user has not navigated off the screens a match may land on.
func (s Session) matchCompletionCurrent(gen uint64) bool {
	if !s.MatchPending || gen != s.MatchGeneration {
		return false
	}
	if s.Phase != domain.PhaseMain || s.EditingProfile {
		return false
	}
	return s.MainScreen == domain.ScreenHome || s.MainScreen == domain.ScreenCall
}

func errNotAllowed(ev Event, s Session) error {
	return domain.Validation("event %s not allowed (phase=%s screen=%s)", ev.Name(), s.Phase, s.MainScreen)
}
