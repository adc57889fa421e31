package health

import "time"

type Input struct{}

type Output struct {
	Body Response
}

// Response свежесть данных сервиса
type Response struct {
	Status         string    `json:"status" enum:"OK,DEGRADED" example:"OK" doc:"OK или DEGRADED по результату последней синхронизации"`
	Syncing        bool      `json:"syncing" doc:"Синхронизация выполняется прямо сейчас"`
	LastSuccessful time.Time `json:"last_successful,omitempty" doc:"Время последней успешной синхронизации"`
	LastError      string    `json:"last_error,omitempty" doc:"Ошибка последней неудачной синхронизации"`
}
