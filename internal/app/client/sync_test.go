package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"equiploan/internal/app/client/config"
	"equiploan/internal/domain/inventory"
	"equiploan/internal/domain/movement"
)

type syncFixture struct {
	store    *inventory.Store
	source   *fakeSource
	notifier *recordingNotifier
	sleeper  *recordingSleeper
	snaps    *MemoryStorage
	clock    *testClock
	svc      *SyncService
}

func newSyncFixture(t *testing.T, interval time.Duration) *syncFixture {
	t.Helper()
	f := &syncFixture{
		source:   &fakeSource{},
		notifier: &recordingNotifier{},
		sleeper:  &recordingSleeper{},
		snaps:    NewMemoryStorage(),
		clock:    newTestClock(),
	}
	f.store = newTestStore(f.clock)
	f.svc = NewSyncService(SyncDeps{
		Store:      f.store,
		Source:     f.source,
		Notifier:   f.notifier,
		Snapshots:  f.snaps,
		Retry:      RetryPolicy{Attempts: 3, Delay: time.Second, Backoff: config.BackoffFixed, Sleeper: f.sleeper},
		Clock:      f.clock,
		Interval:   interval,
		TotalUnits: 40,
	}, testLogger())
	return f
}

func TestSyncAll_CommitsBothSources(t *testing.T) {
	f := newSyncFixture(t, time.Minute)
	f.source.roster = func(context.Context, int) ([]movement.Person, error) {
		return []movement.Person{anaRuiz}, nil
	}
	f.source.history = func(context.Context, int) ([]*movement.Event, error) {
		return []*movement.Event{
			{EquipmentID: "3", Type: movement.TypeLoan, Document: "12345", FullName: "Ana Ruiz", Timestamp: testNow.Add(-2 * time.Hour)},
			{EquipmentID: "3", Type: movement.TypeReturn, Document: "12345", FullName: "Ana Ruiz", Timestamp: testNow.Add(-time.Hour)},
			{EquipmentID: "7", Type: movement.TypeLoan, Document: "12345", FullName: "Ana Ruiz", Timestamp: testNow.Add(-time.Minute)},
		}, nil
	}

	res, err := f.svc.SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.People)
	assert.Equal(t, 3, res.Events)
	assert.Equal(t, 1, f.notifier.Refreshes())

	_, ok := f.store.FindPerson("12345")
	assert.True(t, ok)

	d := inventory.NewDeriver(f.store)
	assert.False(t, d.DeriveState("3").OnLoan)
	assert.True(t, d.DeriveState("7").OnLoan)

	stats := f.svc.GetStats()
	assert.Equal(t, 1, stats.TotalSyncs)
	assert.Equal(t, 0, stats.TotalFailed)
	assert.Equal(t, testNow, stats.LastSuccessful)

	snap, err := f.snaps.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.History, 3)
}

func TestSyncAll_RosterExhaustedLeavesStoreUntouched(t *testing.T) {
	f := newSyncFixture(t, time.Minute)
	f.store.ReplaceRoster([]movement.Person{anaRuiz})
	f.store.ReplaceHistory([]*movement.Event{
		{EquipmentID: "1", Type: movement.TypeLoan, Document: "12345", Timestamp: testNow},
	})

	f.source.roster = func(context.Context, int) ([]movement.Person, error) {
		return nil, movement.ErrTransport
	}
	f.source.history = func(context.Context, int) ([]*movement.Event, error) {
		return nil, nil
	}

	_, err := f.svc.SyncAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, movement.ErrTransport)

	rosterCalls, _ := f.source.Calls()
	assert.Equal(t, 3, rosterCalls)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, f.sleeper.Delays())

	assert.Equal(t, 1, f.store.RosterSize())
	assert.Len(t, f.store.History(), 1)
	assert.Equal(t, 0, f.notifier.Refreshes())
	assert.Equal(t, SeverityWarning, f.notifier.Last().severity)

	stats := f.svc.GetStats()
	assert.Equal(t, 1, stats.TotalFailed)
	assert.NotEmpty(t, stats.LastError)

	_, err = f.snaps.LoadSnapshot(context.Background())
	assert.Error(t, err, "снимок не сохраняется при неудаче")
}

func TestSyncAll_RetryRecovers(t *testing.T) {
	f := newSyncFixture(t, time.Minute)
	f.source.history = func(_ context.Context, call int) ([]*movement.Event, error) {
		if call < 3 {
			return nil, movement.ErrParse
		}
		return []*movement.Event{{EquipmentID: "2", Type: movement.TypeLoan, Timestamp: testNow}}, nil
	}

	_, err := f.svc.SyncAll(context.Background())
	require.NoError(t, err)

	_, historyCalls := f.source.Calls()
	assert.Equal(t, 3, historyCalls)
	assert.Len(t, f.store.History(), 1)
}

func TestSyncAll_SingleFlight(t *testing.T) {
	f := newSyncFixture(t, time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})
	f.source.roster = func(context.Context, int) ([]movement.Person, error) {
		close(started)
		<-release
		return []movement.Person{anaRuiz}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.SyncAll(context.Background())
		done <- err
	}()

	<-started
	assert.True(t, f.svc.IsSyncing())

	_, err := f.svc.SyncAll(context.Background())
	assert.ErrorIs(t, err, ErrSyncInProgress)

	close(release)
	require.NoError(t, <-done)

	rosterCalls, historyCalls := f.source.Calls()
	assert.Equal(t, 1, rosterCalls)
	assert.Equal(t, 1, historyCalls)
	assert.Equal(t, 1, f.notifier.Refreshes(), "ровно одна фиксация")

	stats := f.svc.GetStats()
	assert.Equal(t, 1, stats.TotalSyncs)
	assert.Equal(t, 1, stats.TotalSkipped)
	assert.False(t, stats.InProgress)
}

func TestSyncAll_FetchesRunConcurrently(t *testing.T) {
	f := newSyncFixture(t, time.Minute)

	rosterIn := make(chan struct{})
	historyIn := make(chan struct{})
	f.source.roster = func(context.Context, int) ([]movement.Person, error) {
		close(rosterIn)
		select {
		case <-historyIn:
			return nil, nil
		case <-time.After(5 * time.Second):
			return nil, errors.New("history fetch never started")
		}
	}
	f.source.history = func(context.Context, int) ([]*movement.Event, error) {
		close(historyIn)
		<-rosterIn
		return nil, nil
	}

	_, err := f.svc.SyncAll(context.Background())
	require.NoError(t, err)
}

func TestSyncAll_KeepsPendingLocalEvent(t *testing.T) {
	f := newSyncFixture(t, time.Minute)
	f.store.ReplaceRoster([]movement.Person{anaRuiz})

	local := &movement.Event{ID: "local", EquipmentID: "7", Type: movement.TypeLoan, Document: "12345", FullName: "Ana Ruiz", Timestamp: testNow}
	f.store.AppendEvent(local)

	f.source.roster = func(context.Context, int) ([]movement.Person, error) {
		return []movement.Person{anaRuiz}, nil
	}

	res, err := f.svc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Merge.Pending)
	assert.True(t, inventory.NewDeriver(f.store).DeriveState("7").OnLoan)
}

func TestLoadSnapshot(t *testing.T) {
	f := newSyncFixture(t, time.Minute)

	loaded, err := f.svc.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, loaded)

	require.NoError(t, f.snaps.SaveSnapshot(context.Background(), inventory.Snapshot{
		People:  []movement.Person{anaRuiz},
		History: []*movement.Event{{EquipmentID: "4", Type: movement.TypeLoan, Document: "12345", FullName: "Ana Ruiz", Timestamp: testNow}},
		SavedAt: testNow,
	}))

	loaded, err = f.svc.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, 1, f.store.RosterSize())
	assert.True(t, inventory.NewDeriver(f.store).DeriveState("4").OnLoan)
}

func TestStartAutoSync_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newSyncFixture(t, 5*time.Millisecond)
	var syncs atomic.Int32
	f.source.roster = func(context.Context, int) ([]movement.Person, error) {
		syncs.Add(1)
		return nil, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.svc.StartAutoSync(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return syncs.Load() >= 2 }, 2*time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("планировщик не остановился после отмены контекста")
	}
}
