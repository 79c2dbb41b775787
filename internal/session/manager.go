package session

import (
	"context"
	"sync"
	"time"

	"ajnabi/internal/domain"

	"go.uber.org/zap"
)

// Matchmaker finds a call partner for a preference. Implementations are
// fallible and may take arbitrarily long; the manager calls them off the
// event path and feeds the outcome back as MatchFound/MatchFailed.
type Matchmaker interface {
	FindPartner(ctx context.Context, preference string) (PartnerProfile, error)
}

// ChatStore persists chat threads across sessions.
type ChatStore interface {
	Threads(accountID uint) (map[string]*Thread, error)
	CreateThread(accountID uint, t *Thread) error
	AppendMessage(accountID uint, threadID string, m Message) error
}

// AccountStore persists the coin balance and premium flag.
type AccountStore interface {
	Wallet(accountID uint) (coins int, premium bool, err error)
	SaveWallet(accountID uint, coins int, premium bool) error
}

// Biller executes the payment leg of coin and premium purchases. A billing
// failure aborts the corresponding event before any state is committed.
type Biller interface {
	PurchaseCoins(ctx context.Context, accountID uint, pack string) error
	Subscribe(ctx context.Context, accountID uint, plan string) error
}

// ViewSink receives the projection after every committed event. The ws hub
// implements this to push re-renders to connected clients.
type ViewSink interface {
	PublishView(accountID uint, v View)
}

type entry struct {
	mu sync.Mutex
	s  Session
}

// Manager owns one Session per account and serializes events against it:
// each event runs to completion before the next is considered, so the
// controller itself never sees interleaved mutation.
type Manager struct {
	mu      sync.Mutex
	entries map[uint]*entry

	matcher  Matchmaker
	chats    ChatStore
	accounts AccountStore
	biller   Biller
	sink     ViewSink
	log      *zap.Logger

	matchTimeout time.Duration
}

func NewManager(matcher Matchmaker, chats ChatStore, accounts AccountStore, biller Biller, sink ViewSink, log *zap.Logger) *Manager {
	return &Manager{
		entries:      make(map[uint]*entry),
		matcher:      matcher,
		chats:        chats,
		accounts:     accounts,
		biller:       biller,
		sink:         sink,
		log:          log,
		matchTimeout: 15 * time.Second,
	}
}

// SetMatchTimeout bounds how long a matchmaking call may run.
func (m *Manager) SetMatchTimeout(d time.Duration) {
	if d > 0 {
		m.matchTimeout = d
	}
}

func (m *Manager) entry(accountID uint) (*entry, error) {
	m.mu.Lock()
	e, ok := m.entries[accountID]
	if ok {
		m.mu.Unlock()
		return e, nil
	}
	e = &entry{}
	m.entries[accountID] = e
	m.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	s := New()
	if threads, err := m.chats.Threads(accountID); err != nil {
		m.log.Warn("load threads failed", zap.Uint("account_id", accountID), zap.Error(err))
	} else if threads != nil {
		s.Chats = threads
	}
	if coins, premium, err := m.accounts.Wallet(accountID); err != nil {
		m.log.Warn("load wallet failed", zap.Uint("account_id", accountID), zap.Error(err))
	} else {
		s.CoinBalance = coins
		s.Premium = premium
	}
	e.s = s
	return e, nil
}

// View returns the current projection without applying an event.
func (m *Manager) View(accountID uint) (View, error) {
	e, err := m.entry(accountID)
	if err != nil {
		return View{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return DeriveView(e.s), nil
}

// Dispatch applies one event under the account's session lock, runs its
// side effects, commits, and publishes the new projection. On error the
// session is left at its pre-event state; there are no partial commits.
func (m *Manager) Dispatch(ctx context.Context, accountID uint, ev Event) (View, error) {
	e, err := m.entry(accountID)
	if err != nil {
		return View{}, domain.ServiceFailure("session unavailable", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.s
	next, err := Apply(prev, ev)
	if err != nil {
		if _, failed := ev.(MatchFailed); failed {
			// The pending flag was cleared; commit that so the waiting
			// indicator goes away, then surface the retryable failure.
			e.s = next
			m.publish(accountID, next)
		}
		return DeriveView(e.s), err
	}

	if err := m.sideEffects(ctx, accountID, prev, next, ev); err != nil {
		return DeriveView(prev), err
	}

	e.s = next
	if next.MatchPending && !prev.MatchPending {
		m.launchMatch(accountID, next.MatchGeneration, preference(next))
	}
	v := DeriveView(next)
	m.sink.PublishView(accountID, v)
	return v, nil
}

// sideEffects runs the external calls an event implies, before commit.
func (m *Manager) sideEffects(ctx context.Context, accountID uint, prev, next Session, ev Event) error {
	switch e := ev.(type) {
	case SendMessage:
		t := next.Chats[next.ActiveChatID]
		if t == nil || len(t.Messages) == 0 {
			return nil
		}
		msg := t.Messages[len(t.Messages)-1]
		if err := m.chats.AppendMessage(accountID, t.ID, msg); err != nil {
			return domain.ServiceFailure("message not delivered", err)
		}
	case AcceptPostCall:
		for id, t := range next.Chats {
			if _, existed := prev.Chats[id]; existed {
				continue
			}
			if err := m.chats.CreateThread(accountID, t); err != nil {
				return domain.ServiceFailure("chat thread not created", err)
			}
		}
	case PurchaseCoins:
		if err := m.biller.PurchaseCoins(ctx, accountID, e.Pack); err != nil {
			return domain.ServiceFailure("coin purchase failed", err)
		}
		if err := m.accounts.SaveWallet(accountID, next.CoinBalance, next.Premium); err != nil {
			m.log.Error("wallet save after purchase failed", zap.Uint("account_id", accountID), zap.Error(err))
			return domain.ServiceFailure("coin purchase failed", err)
		}
	case SubscribePremium:
		if err := m.biller.Subscribe(ctx, accountID, e.Plan); err != nil {
			return domain.ServiceFailure("subscription failed", err)
		}
		if err := m.accounts.SaveWallet(accountID, next.CoinBalance, next.Premium); err != nil {
			m.log.Error("premium save after subscribe failed", zap.Uint("account_id", accountID), zap.Error(err))
			return domain.ServiceFailure("subscription failed", err)
		}
	}
	return nil
}

// launchMatch runs the matchmaking call off the event path. The completion
// re-enters Dispatch carrying the armed generation; if the user navigated
// away in the meantime the controller drops it silently.
func (m *Manager) launchMatch(accountID uint, gen uint64, pref string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.matchTimeout)
		defer cancel()
		partner, err := m.matcher.FindPartner(ctx, pref)
		if err != nil {
			if _, derr := m.Dispatch(context.Background(), accountID, MatchFailed{Generation: gen, Cause: err}); derr != nil {
				m.log.Info("match failed", zap.Uint("account_id", accountID), zap.Error(derr))
			}
			return
		}
		if _, derr := m.Dispatch(context.Background(), accountID, MatchFound{Generation: gen, Partner: partner}); derr != nil {
			m.log.Warn("match completion rejected", zap.Uint("account_id", accountID), zap.Error(derr))
		}
	}()
}

func (m *Manager) publish(accountID uint, s Session) {
	m.sink.PublishView(accountID, DeriveView(s))
}

func preference(s Session) string {
	if s.Profile != nil && s.Profile.MatchPreference != "" {
		return s.Profile.MatchPreference
	}
	return domain.PrefAnyone
}
