package client

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"equiploan/internal/app/client/config"
)

// Sleeper ожидание с учетом отмены контекста
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryPolicy повтор операции: Attempts попыток, между неудачами Delay (или Delay*2^i при exponential).
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	Backoff  string
	Sleeper  Sleeper
}

func retryPolicyFrom(cfg *config.Config, sleeper Sleeper) RetryPolicy {
	return RetryPolicy{
		Attempts: cfg.RetryAttempts,
		Delay:    cfg.RetryDelay,
		Backoff:  cfg.RetryBackoff,
		Sleeper:  sleeper,
	}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	if p.Backoff == config.BackoffExponential {
		return p.Delay << uint(attempt)
	}
	return p.Delay
}

// Do выполняет fn до успеха или исчерпания попыток. Возвращается ошибка последней попытки.
func (p RetryPolicy) Do(ctx context.Context, log *slog.Logger, op string, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleeper := p.Sleeper
	if sleeper == nil {
		sleeper = timerSleeper{}
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		log.Warn("Попытка завершилась ошибкой",
			"operation", op,
			"attempt", i+1,
			"attempts", attempts,
			"error", err,
		)

		if i == attempts-1 {
			break
		}
		if serr := sleeper.Sleep(ctx, p.delay(i)); serr != nil {
			return fmt.Errorf("%w (повтор прерван: %v)", err, serr)
		}
	}
	return err
}
