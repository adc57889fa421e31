package sync

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"equiploan/internal/app/client"
	"equiploan/internal/domain/inventory"
	"equiploan/internal/domain/movement"
	"equiploan/internal/utils/logger"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) SyncNow(ctx context.Context) (*client.SyncResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.SyncResult), args.Error(1)
}

func (m *MockService) Stats() client.SyncStats {
	return m.Called().Get(0).(client.SyncStats)
}

func (m *MockService) Pending() []inventory.PendingEvent {
	return m.Called().Get(0).([]inventory.PendingEvent)
}

func (m *MockService) History(limit int) []*movement.Event {
	return m.Called(limit).Get(0).([]*movement.Event)
}

func newHandler(svc *MockService) *Handler {
	return NewHandler(svc, logger.Discard(), huma.Middlewares{})
}

func TestHandler_sync(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "success"},
		{name: "in progress", err: client.ErrSyncInProgress, wantCode: http.StatusConflict},
		{name: "source down", err: movement.ErrTransport, wantCode: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.err != nil {
				svc.On("SyncNow", ctx).Return(nil, tt.err)
			} else {
				svc.On("SyncNow", ctx).Return(&client.SyncResult{People: 2, Events: 4}, nil)
			}

			out, err := newHandler(svc).sync(ctx, nil)

			if tt.wantCode != 0 {
				var se huma.StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, tt.wantCode, se.GetStatus())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 4, out.Body.Events)
		})
	}
}

func TestHandler_status(t *testing.T) {
	appended := time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)
	svc := new(MockService)
	svc.On("Stats").Return(client.SyncStats{TotalSyncs: 3})
	svc.On("Pending").Return([]inventory.PendingEvent{
		{Event: &movement.Event{EquipmentID: "7", Type: movement.TypeLoan}, AppendedAt: appended},
	})

	out, err := newHandler(svc).status(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 3, out.Body.Stats.TotalSyncs)
	require.Len(t, out.Body.Pending, 1)
	assert.Equal(t, appended, out.Body.Pending[0].AppendedAt)
}

func TestHandler_history(t *testing.T) {
	svc := new(MockService)
	svc.On("History", 2).Return([]*movement.Event{{EquipmentID: "1"}, {EquipmentID: "2"}})

	out, err := newHandler(svc).history(context.Background(), &historyInput{Limit: 2})

	require.NoError(t, err)
	assert.Len(t, out.Body, 2)
	svc.AssertExpectations(t)
}
