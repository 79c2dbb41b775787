package session

import (
	"strings"
	"time"

	"ajnabi/internal/domain"
)

// Profile is the user-authored profile collected during onboarding.
type Profile struct {
	Username        string   `json:"username"`
	Photos          []string `json:"photos"`
	Bio             string   `json:"bio"`
	Interests       []string `json:"interests"`
	MatchPreference string   `json:"match_preference"`
	Age             int      `json:"age"`
}

// Normalize fills defaults the client may omit.
func (p *Profile) Normalize() {
	p.Username = strings.TrimSpace(p.Username)
	if p.MatchPreference == "" {
		p.MatchPreference = domain.PrefAnyone
	} else {
		p.MatchPreference = strings.ToUpper(p.MatchPreference)
	}
	if p.Age == 0 {
		p.Age = domain.DefaultAge
	}
}

// Validate checks the data-model constraints. Callers normalize first.
func (p *Profile) Validate() error {
	if p.Username == "" {
		return domain.Validation("username required")
	}
	if len(p.Photos) > domain.MaxProfilePhotos {
		return domain.Validation("at most %d photos allowed", domain.MaxProfilePhotos)
	}
	if !domain.ValidPreferences[p.MatchPreference] {
		return domain.Validation("unknown match preference %q", p.MatchPreference)
	}
	if p.Age < 0 {
		return domain.Validation("age must not be negative")
	}
	return nil
}

// PartnerProfile describes the matched user shown during and after a call.
type PartnerProfile struct {
	Username        string            `json:"username"`
	Age             int               `json:"age"`
	Photos          []string          `json:"photos"`
	Bio             string            `json:"bio"`
	Distance        string            `json:"distance"`
	CommonInterests int               `json:"common_interests"`
	AboutMe         map[string]string `json:"about_me"`
	Interests       []string          `json:"interests"`
}

// Message is one chat message. Threads are append-only.
type Message struct {
	ID     string    `json:"id"`
	Sender string    `json:"sender"` // domain.SenderMe | domain.SenderThem
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// Thread is a chat with one partner.
type Thread struct {
	ID          string    `json:"id"`
	PartnerName string    `json:"partner_name"`
	Messages    []Message `json:"messages"`
	Unread      int       `json:"unread"`
}

// LastMessage returns the newest message, or nil for an empty thread.
func (t *Thread) LastMessage() *Message {
	if len(t.Messages) == 0 {
		return nil
	}
	return &t.Messages[len(t.Messages)-1]
}

func (t *Thread) clone() *Thread {
	c := *t
	c.Messages = make([]Message, len(t.Messages))
	copy(c.Messages, t.Messages)
	return &c
}

// Session is the complete navigation and state model of one app session.
// It is a value; Apply returns a new Session and never mutates its input's
// shared structures in place.
type Session struct {
	Phase            string
	Profile          *Profile
	EditingProfile   bool
	MainScreen       string
	ActiveTab        string
	Premium          bool
	CoinBalance      int
	ShowPremiumModal bool
	ShowCoinModal    bool
	ActiveChatID     string
	Chats            map[string]*Thread
	CallPartner      *PartnerProfile

	// MatchPending is armed by StartMatch and resolved by MatchFound or
	// MatchFailed carrying the same generation; anything else is stale.
	MatchPending    bool
	MatchGeneration uint64
}

// New returns a fresh session at the splash screen.
func New() Session {
	return Session{
		Phase:       domain.PhaseSplash,
		MainScreen:  domain.ScreenHome,
		ActiveTab:   domain.TabHome,
		CoinBalance: domain.DefaultCoinBalance,
		Chats:       make(map[string]*Thread),
	}
}

// onHome reports whether plain home-screen events are currently legal.
func (s Session) onHome() bool {
	return s.Phase == domain.PhaseMain && !s.EditingProfile && s.MainScreen == domain.ScreenHome
}

// withChats returns a shallow copy of the chat map so appends never alias the
// previous session value.
func (s Session) withChats() map[string]*Thread {
	m := make(map[string]*Thread, len(s.Chats))
	for id, t := range s.Chats {
		m[id] = t
	}
	return m
}

// threadForPartner finds an existing thread by partner name.
func (s Session) threadForPartner(name string) *Thread {
	for _, t := range s.Chats {
		if t.PartnerName == name {
			return t
		}
	}
	return nil
}
