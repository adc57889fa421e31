package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiploan/internal/domain/inventory"
	"equiploan/internal/domain/movement"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	uri := os.Getenv("DATABASE_URI")
	if uri == "" {
		t.Skip("DATABASE_URI не задан")
	}
	s, err := New(context.Background(), uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage_SnapshotRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

	ana := movement.Person{Document: "12345", FullName: "Ana Ruiz", Group: "10A", Phone: "555"}
	luis := movement.Person{Document: "67890", FullName: "Luis Pérez", Group: "11B"}

	local := &movement.Event{
		ID: "01HTESTLOCAL", EquipmentID: "7", Type: movement.TypeLoan,
		Document: ana.Document, FullName: ana.FullName, Group: ana.Group, Phone: ana.Phone,
		Professor: "Gómez", Subject: "Física", Timestamp: base.Add(time.Hour),
	}
	remote := &movement.Event{
		EquipmentID: "3", Type: movement.TypeReturn,
		Document: luis.Document, FullName: luis.FullName, Comment: "sin cargador",
		Timestamp: base,
	}

	tests := []struct {
		name string
		snap inventory.Snapshot
	}{
		{
			name: "history with pending",
			snap: inventory.Snapshot{
				People:  []movement.Person{ana, luis},
				History: []*movement.Event{local, remote},
				Pending: []inventory.PendingEvent{{Event: local, AppendedAt: base.Add(time.Hour + time.Second)}},
				SavedAt: base.Add(2 * time.Hour),
			},
		},
		{
			name: "smaller snapshot replaces previous",
			snap: inventory.Snapshot{
				People:  []movement.Person{luis},
				History: []*movement.Event{remote},
				SavedAt: base.Add(3 * time.Hour),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.SaveSnapshot(ctx, tt.snap))

			got, err := s.LoadSnapshot(ctx)
			require.NoError(t, err)

			assert.True(t, tt.snap.SavedAt.Equal(got.SavedAt))
			assert.Equal(t, tt.snap.People, got.People)

			require.Len(t, got.History, len(tt.snap.History))
			for i, want := range tt.snap.History {
				e := got.History[i]
				assert.Equal(t, want.ID, e.ID)
				assert.Equal(t, want.EquipmentID, e.EquipmentID)
				assert.Equal(t, want.Type, e.Type)
				assert.Equal(t, want.Document, e.Document)
				assert.Equal(t, want.Comment, e.Comment)
				assert.True(t, want.Timestamp.Equal(e.Timestamp), "occurred_at: %s != %s", want.Timestamp, e.Timestamp)
			}

			require.Len(t, got.Pending, len(tt.snap.Pending))
			for i, want := range tt.snap.Pending {
				p := got.Pending[i]
				assert.True(t, want.AppendedAt.Equal(p.AppendedAt), "appended_at: %s != %s", want.AppendedAt, p.AppendedAt)
				assert.Same(t, got.History[0], p.Event, "ожидающее событие ссылается на запись журнала")
				assert.Equal(t, want.Event.ID, p.Event.ID)
			}
		})
	}
}
