package sync

import (
	"time"

	"equiploan/internal/app/client"
	"equiploan/internal/domain/movement"
)

type syncOutput struct {
	Body *client.SyncResult
}

type statusOutput struct {
	Body statusResponse
}

type statusResponse struct {
	Stats   client.SyncStats `json:"stats"`
	Pending []pendingItem    `json:"pending" doc:"Локальные события, еще не подтвержденные таблицей"`
}

type pendingItem struct {
	Event      *movement.Event `json:"event"`
	AppendedAt time.Time       `json:"appended_at"`
}

type historyInput struct {
	Limit int `query:"limit" default:"50" minimum:"0" doc:"Количество последних событий, 0 - все"`
}

type historyOutput struct {
	Body []*movement.Event
}
