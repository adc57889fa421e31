package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/exp/slog"

	"equiploan/internal/app/client/config"
	"equiploan/internal/domain/inventory"
	"equiploan/internal/domain/movement"
	"equiploan/internal/utils/logger"
)

var testNow = time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: testNow}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingSleeper не ждет, а запоминает запрошенные паузы
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
	err    error
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	return ctx.Err()
}

func (s *recordingSleeper) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

type fakeSource struct {
	mu           sync.Mutex
	rosterCalls  int
	historyCalls int
	roster       func(ctx context.Context, call int) ([]movement.Person, error)
	history      func(ctx context.Context, call int) ([]*movement.Event, error)
}

func (f *fakeSource) FetchRoster(ctx context.Context) ([]movement.Person, error) {
	f.mu.Lock()
	f.rosterCalls++
	call := f.rosterCalls
	f.mu.Unlock()
	if f.roster == nil {
		return nil, nil
	}
	return f.roster(ctx, call)
}

func (f *fakeSource) FetchHistory(ctx context.Context) ([]*movement.Event, error) {
	f.mu.Lock()
	f.historyCalls++
	call := f.historyCalls
	f.mu.Unlock()
	if f.history == nil {
		return nil, nil
	}
	return f.history(ctx, call)
}

func (f *fakeSource) Calls() (roster, history int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rosterCalls, f.historyCalls
}

type fakeSender struct {
	mu   sync.Mutex
	sent []*movement.Event
	err  error
}

func (f *fakeSender) SendEvent(_ context.Context, e *movement.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, e)
	return nil
}

func (f *fakeSender) Sent() []*movement.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*movement.Event(nil), f.sent...)
}

type notification struct {
	message  string
	severity Severity
}

type recordingNotifier struct {
	mu            sync.Mutex
	refreshes     int
	notifications []notification
}

func (n *recordingNotifier) RefreshAll() {
	n.mu.Lock()
	n.refreshes++
	n.mu.Unlock()
}

func (n *recordingNotifier) Notify(message string, severity Severity) {
	n.mu.Lock()
	n.notifications = append(n.notifications, notification{message: message, severity: severity})
	n.mu.Unlock()
}

func (n *recordingNotifier) Refreshes() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.refreshes
}

func (n *recordingNotifier) Last() notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notifications) == 0 {
		return notification{}
	}
	return n.notifications[len(n.notifications)-1]
}

func testLogger() *slog.Logger {
	return logger.Discard()
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Env:            "local",
		RosterURL:      "http://127.0.0.1/roster",
		HistoryURL:     "http://127.0.0.1/history",
		FormURL:        "http://127.0.0.1/form",
		Form:           config.FormEntries{Equipment: "entry.1", FullName: "entry.2", Document: "entry.3", Type: "entry.8", Comment: "entry.9"},
		SyncInterval:   30 * time.Second,
		SettleDelay:    1500 * time.Millisecond,
		TotalUnits:     40,
		RetryAttempts:  3,
		RetryDelay:     time.Second,
		RetryBackoff:   config.BackoffFixed,
		HTTPTimeout:    5 * time.Second,
		PendingTTL:     10 * time.Minute,
		ConfirmSkew:    5 * time.Minute,
		ConfigDir:      dir,
		DataPath:       dir + "/snapshot.db",
		SnapshotEnable: false,
	}
}

func newTestStore(clock inventory.Clock) *inventory.Store {
	return inventory.NewStore(inventory.Config{
		PendingTTL:  10 * time.Minute,
		ConfirmSkew: 5 * time.Minute,
		Clock:       clock,
	}, testLogger())
}

var anaRuiz = movement.Person{Document: "12345", FullName: "Ana Ruiz", Group: "10A", Phone: "555"}
