package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ajnabi/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockMatchmaker struct {
	FindPartnerFunc func(ctx context.Context, preference string) (PartnerProfile, error)
}

func (m *mockMatchmaker) FindPartner(ctx context.Context, preference string) (PartnerProfile, error) {
	return m.FindPartnerFunc(ctx, preference)
}

type mockChatStore struct {
	mu            sync.Mutex
	threads       map[string]*Thread
	appendErr     error
	appended      []Message
	createdThread *Thread
}

func (m *mockChatStore) Threads(accountID uint) (map[string]*Thread, error) {
	if m.threads == nil {
		return map[string]*Thread{}, nil
	}
	return m.threads, nil
}

func (m *mockChatStore) CreateThread(accountID uint, t *Thread) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createdThread = t
	return nil
}

func (m *mockChatStore) AppendMessage(accountID uint, threadID string, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, msg)
	return nil
}

type mockAccountStore struct {
	coins      int
	premium    bool
	saveErr    error
	savedCoins int
	savedPrem  bool
	saves      int
}

func (m *mockAccountStore) Wallet(accountID uint) (int, bool, error) {
	return m.coins, m.premium, nil
}

func (m *mockAccountStore) SaveWallet(accountID uint, coins int, premium bool) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.savedCoins, m.savedPrem = coins, premium
	m.saves++
	return nil
}

type mockBiller struct {
	purchaseErr  error
	subscribeErr error
}

func (m *mockBiller) PurchaseCoins(ctx context.Context, accountID uint, pack string) error {
	return m.purchaseErr
}

func (m *mockBiller) Subscribe(ctx context.Context, accountID uint, plan string) error {
	return m.subscribeErr
}

type recordingSink struct {
	mu    sync.Mutex
	views []View
}

func (r *recordingSink) PublishView(accountID uint, v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *recordingSink) last() (View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.views) == 0 {
		return View{}, false
	}
	return r.views[len(r.views)-1], true
}

type managerFixture struct {
	manager  *Manager
	matcher  *mockMatchmaker
	chats    *mockChatStore
	accounts *mockAccountStore
	biller   *mockBiller
	sink     *recordingSink
}

func newFixture(t *testing.T) *managerFixture {
	t.Helper()
	f := &managerFixture{
		matcher: &mockMatchmaker{FindPartnerFunc: func(ctx context.Context, pref string) (PartnerProfile, error) {
			return PartnerProfile{Username: "Shafa Asadel"}, nil
		}},
		chats:    &mockChatStore{},
		accounts: &mockAccountStore{coins: domain.DefaultCoinBalance},
		biller:   &mockBiller{},
		sink:     &recordingSink{},
	}
	f.manager = NewManager(f.matcher, f.chats, f.accounts, f.biller, f.sink, zap.NewNop())
	return f
}

// toHome drives an account's session to the home screen.
func (f *managerFixture) toHome(t *testing.T, accountID uint) {
	t.Helper()
	ctx := context.Background()
	_, err := f.manager.Dispatch(ctx, accountID, SplashFinished{})
	require.NoError(t, err)
	_, err = f.manager.Dispatch(ctx, accountID, OnboardingCompleted{Profile: samProfile()})
	require.NoError(t, err)
}

func TestManager_LoadsPersistedState(t *testing.T) {
	f := newFixture(t)
	f.accounts.coins = 275
	f.accounts.premium = true
	f.chats.threads = map[string]*Thread{"1": {ID: "1", PartnerName: "Sarah"}}

	v, err := f.manager.View(7)
	require.NoError(t, err)
	assert.Equal(t, RootSplash, v.Root)
	assert.Equal(t, 275, v.CoinBalance)
	assert.True(t, v.Premium)
}

func TestManager_MatchFlow(t *testing.T) {
	f := newFixture(t)
	f.toHome(t, 1)

	v, err := f.manager.Dispatch(context.Background(), 1, StartMatch{})
	require.NoError(t, err)
	assert.True(t, v.MatchPending)

	require.Eventually(t, func() bool {
		v, err := f.manager.View(1)
		return err == nil && v.Root == RootCall
	}, time.Second, 10*time.Millisecond, "completion should move the session to the call screen")

	last, ok := f.sink.last()
	require.True(t, ok)
	assert.Equal(t, RootCall, last.Root)
	assert.Equal(t, "Shafa Asadel", last.Partner.Username)
}

func TestManager_StaleMatchDropped(t *testing.T) {
	f := newFixture(t)
	f.chats.threads = map[string]*Thread{"1": {ID: "1", PartnerName: "Sarah"}}

	release := make(chan struct{})
	done := make(chan struct{})
	f.matcher.FindPartnerFunc = func(ctx context.Context, pref string) (PartnerProfile, error) {
		<-release
		defer close(done)
		return PartnerProfile{Username: "Late"}, nil
	}
	f.toHome(t, 1)

	ctx := context.Background()
	_, err := f.manager.Dispatch(ctx, 1, StartMatch{})
	require.NoError(t, err)
	// User opens a chat before matchmaking responds.
	_, err = f.manager.Dispatch(ctx, 1, OpenChat{ChatID: "1"})
	require.NoError(t, err)

	close(release)
	<-done
	time.Sleep(50 * time.Millisecond) // let the completion dispatch run

	v, err := f.manager.View(1)
	require.NoError(t, err)
	assert.Equal(t, RootChatDetail, v.Root, "late match result must not yank the user into a call")
}

func TestManager_MatchFailurePublishesHome(t *testing.T) {
	f := newFixture(t)
	f.matcher.FindPartnerFunc = func(ctx context.Context, pref string) (PartnerProfile, error) {
		return PartnerProfile{}, errors.New("matchmaking down")
	}
	f.toHome(t, 1)

	_, err := f.manager.Dispatch(context.Background(), 1, StartMatch{})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		v, err := f.manager.View(1)
		return err == nil && v.Root == RootHome && !v.MatchPending
	}, time.Second, 10*time.Millisecond, "failure must clear the waiting indicator and stay home")
}

func TestManager_SendMessagePersisted(t *testing.T) {
	f := newFixture(t)
	f.chats.threads = map[string]*Thread{"1": {ID: "1", PartnerName: "Sarah"}}
	f.toHome(t, 1)

	ctx := context.Background()
	_, err := f.manager.Dispatch(ctx, 1, OpenChat{ChatID: "1"})
	require.NoError(t, err)
	v, err := f.manager.Dispatch(ctx, 1, SendMessage{Text: "hello"})
	require.NoError(t, err)

	require.Len(t, f.chats.appended, 1)
	assert.Equal(t, "hello", f.chats.appended[0].Text)
	require.Len(t, v.Chat.Messages, 1)
}

func TestManager_SendMessageStoreFailureNoCommit(t *testing.T) {
	f := newFixture(t)
	f.chats.threads = map[string]*Thread{"1": {ID: "1", PartnerName: "Sarah"}}
	f.chats.appendErr = errors.New("db down")
	f.toHome(t, 1)

	ctx := context.Background()
	_, err := f.manager.Dispatch(ctx, 1, OpenChat{ChatID: "1"})
	require.NoError(t, err)
	_, err = f.manager.Dispatch(ctx, 1, SendMessage{Text: "hello"})
	require.Error(t, err)
	assert.Equal(t, domain.KindService, domain.KindOf(err))

	v, err := f.manager.View(1)
	require.NoError(t, err)
	assert.Empty(t, v.Chat.Messages, "failed append must not appear in the session")
}

func TestManager_AcceptPostCallPersistsThread(t *testing.T) {
	f := newFixture(t)
	f.toHome(t, 1)
	ctx := context.Background()

	_, err := f.manager.Dispatch(ctx, 1, StartMatch{})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		v, _ := f.manager.View(1)
		return v.Root == RootCall
	}, time.Second, 10*time.Millisecond)

	_, err = f.manager.Dispatch(ctx, 1, EndCall{})
	require.NoError(t, err)
	_, err = f.manager.Dispatch(ctx, 1, AcceptPostCall{})
	require.NoError(t, err)

	require.NotNil(t, f.chats.createdThread)
	assert.Equal(t, "Shafa Asadel", f.chats.createdThread.PartnerName)
}

func TestManager_PurchasePersistsWallet(t *testing.T) {
	f := newFixture(t)
	f.toHome(t, 1)
	ctx := context.Background()

	_, err := f.manager.Dispatch(ctx, 1, RequestBuyCoins{})
	require.NoError(t, err)
	v, err := f.manager.Dispatch(ctx, 1, PurchaseCoins{Pack: "STARTER"})
	require.NoError(t, err)

	assert.Equal(t, 150, v.CoinBalance)
	assert.Equal(t, 150, f.accounts.savedCoins)
}

func TestManager_BillingFailureNoCommit(t *testing.T) {
	f := newFixture(t)
	f.biller.purchaseErr = errors.New("card declined")
	f.toHome(t, 1)
	ctx := context.Background()

	_, err := f.manager.Dispatch(ctx, 1, RequestBuyCoins{})
	require.NoError(t, err)
	_, err = f.manager.Dispatch(ctx, 1, PurchaseCoins{Pack: "STARTER"})
	require.Error(t, err)
	assert.Equal(t, domain.KindService, domain.KindOf(err))

	v, err := f.manager.View(1)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCoinBalance, v.CoinBalance)
	assert.Contains(t, v.Overlays, domain.OverlayCoins, "modal stays open for retry")
	assert.Zero(t, f.accounts.saves)
}

func TestManager_SubscribePersistsPremium(t *testing.T) {
	f := newFixture(t)
	f.toHome(t, 1)
	ctx := context.Background()

	_, err := f.manager.Dispatch(ctx, 1, RequestPremiumUpgrade{})
	require.NoError(t, err)
	v, err := f.manager.Dispatch(ctx, 1, SubscribePremium{Plan: "YEARLY"})
	require.NoError(t, err)

	assert.True(t, v.Premium)
	assert.True(t, f.accounts.savedPrem)
}

func TestManager_SerializesEventsPerAccount(t *testing.T) {
	f := newFixture(t)
	f.chats.threads = map[string]*Thread{"1": {ID: "1", PartnerName: "Sarah"}}
	f.toHome(t, 1)
	ctx := context.Background()
	_, err := f.manager.Dispatch(ctx, 1, OpenChat{ChatID: "1"})
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.manager.Dispatch(ctx, 1, SendMessage{Text: "msg"})
		}()
	}
	wg.Wait()

	v, err := f.manager.View(1)
	require.NoError(t, err)
	assert.Len(t, v.Chat.Messages, n, "every serialized append must land exactly once")
}
