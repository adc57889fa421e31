package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"equiploan/internal/domain/movement"
)

// Table табличный ответ источника данных
type Table struct {
	Cols []Column `json:"cols"`
	Rows []Row    `json:"rows"`
}

type Column struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// Row строка таблицы. Отсутствующая ячейка приходит как null.
type Row struct {
	C []*Cell `json:"c"`
}

// Cell значение v и необязательное отформатированное представление f
type Cell struct {
	V interface{} `json:"v"`
	F string      `json:"f,omitempty"`
}

type envelope struct {
	Status string `json:"status"`
	Errors []struct {
		Reason          string `json:"reason"`
		Message         string `json:"message"`
		DetailedMessage string `json:"detailed_message"`
	} `json:"errors"`
	Table *Table `json:"table"`
}

// DecodeEnvelope извлекает таблицу из JSONP-обертки вида
// google.visualization.Query.setResponse({...}); берется JSON между первой "(" и последней ")".
func DecodeEnvelope(body []byte) (*Table, error) {
	start := bytes.IndexByte(body, '(')
	end := bytes.LastIndexByte(body, ')')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: обертка ответа не найдена", movement.ErrParse)
	}

	dec := json.NewDecoder(bytes.NewReader(body[start+1 : end]))
	dec.UseNumber()

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", movement.ErrParse, err)
	}

	if env.Status == "error" {
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			msg := e.DetailedMessage
			if msg == "" {
				msg = e.Message
			}
			if msg == "" {
				msg = e.Reason
			}
			msgs = append(msgs, msg)
		}
		return nil, fmt.Errorf("%w: источник вернул ошибку: %s", movement.ErrParse, strings.Join(msgs, "; "))
	}
	if env.Table == nil {
		return nil, fmt.Errorf("%w: в ответе нет таблицы", movement.ErrParse)
	}

	return env.Table, nil
}

// CellString приводит значение ячейки к строке. Пустая ячейка дает "".
func CellString(c *Cell) string {
	if c == nil || c.V == nil {
		return ""
	}

	switch v := c.V.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return formatNumber(v.String())
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// formatNumber убирает экспоненту и ".0" у целых: документ 1.0234567E7 становится "10234567".
func formatNumber(raw string) string {
	if !strings.ContainsAny(raw, ".eE") {
		return raw
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func cellAt(r Row, i int) string {
	if i >= len(r.C) {
		return ""
	}
	return CellString(r.C[i])
}

var gvizDate = regexp.MustCompile(`^Date\((\d+),(\d+),(\d+)(?:,(\d+),(\d+),(\d+)(?:,(\d+))?)?\)$`)

var localLayouts = []string{
	"2/1/2006 15:04:05",
	"02/01/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
}

// ParseTimestamp распознает литерал Date(y,m,d,h,mi,s) (месяц с нуля), RFC3339
// и формат таблицы д/м/гггг ч:мм:сс в часовом поясе loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	if m := gvizDate.FindStringSubmatch(raw); m != nil {
		n := make([]int, 7)
		for i := range n {
			if m[i+1] == "" {
				continue
			}
			v, err := strconv.Atoi(m[i+1])
			if err != nil {
				return time.Time{}, false
			}
			n[i] = v
		}
		return time.Date(n[0], time.Month(n[1]+1), n[2], n[3], n[4], n[5], n[6]*int(time.Millisecond), loc), true
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
