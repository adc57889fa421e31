package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"equiploan/internal/app/client/config"
	"equiploan/internal/domain/inventory"
	"equiploan/internal/domain/movement"
)

const maxEnvelopeSize = 16 << 20

// Source источник реестра и истории
type Source interface {
	FetchRoster(ctx context.Context) ([]movement.Person, error)
	FetchHistory(ctx context.Context) ([]*movement.Event, error)
}

// FormSender отправляет событие в форму записи
type FormSender interface {
	SendEvent(ctx context.Context, e *movement.Event) error
}

type httpClient struct {
	client     *http.Client
	log        *slog.Logger
	clock      inventory.Clock
	rosterURL  string
	historyURL string
	formURL    string
	entries    config.FormEntries
	sheetLoc   *time.Location
	userAgent  string
}

func NewHTTPClient(cfg *config.Config, clock inventory.Clock, log *slog.Logger) *httpClient {
	client := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 4,
		},
	}

	return &httpClient{
		client:     client,
		log:        log.With(slog.String("component", "http")),
		clock:      clock,
		rosterURL:  cfg.RosterURL,
		historyURL: cfg.HistoryURL,
		formURL:    cfg.FormURL,
		entries:    cfg.Form,
		sheetLoc:   cfg.SheetLocation,
		userAgent:  "EquipLoan-Client/1.0",
	}
}

// FetchRoster загружает и разбирает реестр учащихся
func (h *httpClient) FetchRoster(ctx context.Context) ([]movement.Person, error) {
	table, err := h.fetchTable(ctx, h.rosterURL)
	if err != nil {
		return nil, fmt.Errorf("реестр: %w", err)
	}
	return ParseRoster(table), nil
}

// FetchHistory загружает и разбирает историю движений
func (h *httpClient) FetchHistory(ctx context.Context) ([]*movement.Event, error) {
	table, err := h.fetchTable(ctx, h.historyURL)
	if err != nil {
		return nil, fmt.Errorf("история: %w", err)
	}
	return ParseHistory(table, h.clock.Now(), h.sheetLoc), nil
}

func (h *httpClient) fetchTable(ctx context.Context, target string) (*Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: ошибка создания запроса: %v", movement.ErrTransport, err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	h.log.Debug("Отправка запроса", "method", req.Method, "url", target)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", movement.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: источник вернул статус %d", movement.ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEnvelopeSize))
	if err != nil {
		return nil, fmt.Errorf("%w: ошибка чтения ответа: %v", movement.ErrTransport, err)
	}

	h.log.Debug("Получен ответ", "status", resp.StatusCode, "bytes", len(body))

	return DecodeEnvelope(body)
}

// SendEvent отправляет событие формой application/x-www-form-urlencoded.
// Ответ формы не интерпретируется: любой HTTP-ответ означает, что отправка состоялась.
// Ошибкой считается только сбой сети.
func (h *httpClient) SendEvent(ctx context.Context, e *movement.Event) error {
	values := FormValues(e, h.entries)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.formURL, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("%w: ошибка создания запроса: %v", movement.ErrSubmissionTransport, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", movement.ErrSubmissionTransport, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	h.log.Debug("Форма отправлена", "status", resp.StatusCode, "equipment", e.EquipmentID)
	return nil
}

// FormValues собирает поля формы. Пустые значения не отправляются.
func FormValues(e *movement.Event, entries config.FormEntries) url.Values {
	values := url.Values{}
	add := func(key, value string) {
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			return
		}
		values.Set(key, value)
	}

	add(entries.Equipment, e.EquipmentID)
	add(entries.FullName, e.FullName)
	add(entries.Document, e.Document)
	add(entries.Group, e.Group)
	add(entries.Phone, e.Phone)
	add(entries.Professor, e.Professor)
	add(entries.Subject, e.Subject)
	add(entries.Type, e.Type.WireValue())
	add(entries.Comment, e.Comment)

	return values
}
