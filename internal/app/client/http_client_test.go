package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiploan/internal/domain/inventory"
	"equiploan/internal/domain/movement"
)

func newTestHTTPClient(t *testing.T, handler http.Handler) (*httpClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := testConfig(t)
	cfg.RosterURL = srv.URL + "/roster"
	cfg.HistoryURL = srv.URL + "/history"
	cfg.FormURL = srv.URL + "/form"
	return NewHTTPClient(cfg, newTestClock(), testLogger()), srv
}

func TestHTTPClient_FetchRoster(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/roster", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = io.WriteString(w, rosterBody)
	})
	h, _ := newTestHTTPClient(t, mux)

	people, err := h.FetchRoster(context.Background())
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "Ana Ruiz", people[0].FullName)
}

func TestHTTPClient_FetchHistory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/history", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, historyBody)
	})
	h, _ := newTestHTTPClient(t, mux)

	events, err := h.FetchHistory(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 4)
	assert.Equal(t, testNow, events[2].Timestamp, "время по умолчанию берется из часов клиента")
}

func TestHTTPClient_FetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "non-success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "quota", http.StatusTooManyRequests)
			},
			wantErr: movement.ErrTransport,
		},
		{
			name: "malformed envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "<html>login</html>")
			},
			wantErr: movement.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHTTPClient(t, tt.handler)
			_, err := h.FetchRoster(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("server down", func(t *testing.T) {
		h, srv := newTestHTTPClient(t, http.NotFoundHandler())
		srv.Close()
		_, err := h.FetchHistory(context.Background())
		assert.ErrorIs(t, err, movement.ErrTransport)
	})
}

func TestHTTPClient_SendEvent(t *testing.T) {
	var got url.Values
	var contentType string
	mux := http.NewServeMux()
	mux.HandleFunc("/form", func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		assert.NoError(t, r.ParseForm())
		got = r.PostForm
		// форма может ответить чем угодно, ответ не интерпретируется
		w.WriteHeader(http.StatusInternalServerError)
	})
	h, _ := newTestHTTPClient(t, mux)

	err := h.SendEvent(context.Background(), &movement.Event{
		EquipmentID: "7",
		Type:        movement.TypeReturn,
		FullName:    "Ana Ruiz",
		Document:    "12345",
		Comment:     "",
	})
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "7", got.Get("entry.1"))
	assert.Equal(t, "Ana Ruiz", got.Get("entry.2"))
	assert.Equal(t, "12345", got.Get("entry.3"))
	assert.Equal(t, "Devolución", got.Get("entry.8"))
	_, hasComment := got["entry.9"]
	assert.False(t, hasComment, "пустые значения не отправляются")
}

func TestHTTPClient_SendEventNetworkFailure(t *testing.T) {
	h, srv := newTestHTTPClient(t, http.NotFoundHandler())
	srv.Close()

	err := h.SendEvent(context.Background(), &movement.Event{EquipmentID: "7", Type: movement.TypeLoan})
	require.Error(t, err)
	assert.ErrorIs(t, err, movement.ErrSubmissionTransport)
}

func TestFormValues_SkipsUnconfiguredEntries(t *testing.T) {
	cfg := testConfig(t)
	values := FormValues(&movement.Event{EquipmentID: "1", Type: movement.TypeLoan, Phone: "555"}, cfg.Form)

	assert.Equal(t, "Préstamo", values.Get("entry.8"))
	assert.Len(t, values, 2, "у телефона нет настроенного поля")
}

func TestHTTPClient_FetchHistory_SheetTimezoneConfirmsPending(t *testing.T) {
	const body = `google.visualization.Query.setResponse({"status":"ok","table":{"cols":[],"rows":[
{"c":[{"v":"Marca temporal"},{"v":"Equipo"},null,{"v":"Documento"},null,null,null,null,{"v":"Tipo"}]},
{"c":[{"v":"Date(2024,2,11,9,0,5)"},{"v":"7"},{"v":"Ana Ruiz"},{"v":12345},null,null,null,null,{"v":"Préstamo"}]},
{"c":[{"v":"Date(2024,2,11,9,1,0)"},{"v":"7"},{"v":"Ana Ruiz"},{"v":12345},null,null,null,null,{"v":"Devolución"}]}
]}});`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	clock := newTestClock()
	clock.now = time.Date(2024, 3, 11, 14, 2, 0, 0, time.UTC)

	cfg := testConfig(t)
	cfg.HistoryURL = srv.URL
	cfg.SheetLocation = time.FixedZone("COT", -5*3600)
	h := NewHTTPClient(cfg, clock, testLogger())

	store := newTestStore(clock)
	store.AppendEvent(&movement.Event{
		ID:          "local-1",
		EquipmentID: "7",
		Type:        movement.TypeLoan,
		Document:    "12345",
		FullName:    "Ana Ruiz",
		Timestamp:   time.Date(2024, 3, 11, 14, 0, 0, 0, time.UTC),
	})

	events, err := h.FetchHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)

	stats := store.ReplaceHistory(events)
	assert.Equal(t, 1, stats.Confirmed)
	assert.Equal(t, 0, stats.Pending)

	state := inventory.Derive(store.History(), "7")
	assert.False(t, state.OnLoan, "возврат из таблицы позже локальной выдачи")
}
