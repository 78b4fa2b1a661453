package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/campushub/campus-api/internal/metrics"
	"github.com/campushub/campus-api/internal/models"
	"github.com/campushub/campus-api/internal/repository"
)

// Dispatcher drains unsent notifications to an external push webhook. The
// webhook sits behind a circuit breaker so a dead endpoint does not burn a
// request per notification per tick.
type Dispatcher struct {
	notifs    repository.NotificationRepository
	client    *http.Client
	cb        *gobreaker.CircuitBreaker
	url       string
	interval  time.Duration
	batchSize int64
	log       *zap.SugaredLogger
}

func NewDispatcher(notifs repository.NotificationRepository, url string, interval time.Duration, batchSize int, log *zap.SugaredLogger) *Dispatcher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "push-webhook",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Dispatcher{
		notifs:    notifs,
		client:    &http.Client{Timeout: 10 * time.Second},
		cb:        cb,
		url:       url,
		interval:  interval,
		batchSize: int64(batchSize),
		log:       log,
	}
}

// Run loops until ctx is cancelled. Every failure mode is best effort: the
// notification rows stay unsent and are retried next tick.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.dispatchOnce(ctx)
		}
	}
}

func (d *Dispatcher) dispatchOnce(ctx context.Context) {
	ns, err := d.notifs.ListUnpushed(ctx, d.batchSize)
	if err != nil {
		d.log.Errorw("push: list unsent", "err", err)
		return
	}
	if len(ns) == 0 {
		return
	}

	_, err = d.cb.Execute(func() (interface{}, error) {
		return nil, d.post(ctx, ns)
	})
	if err != nil {
		d.log.Warnw("push: webhook delivery failed", "count", len(ns), "err", err)
		return
	}

	ids := make([]string, 0, len(ns))
	for _, n := range ns {
		ids = append(ids, n.ID)
	}
	if err := d.notifs.MarkPushSent(ctx, ids); err != nil {
		// worst case the batch is pushed twice; receipts stay correct
		d.log.Errorw("push: mark sent", "err", err)
		return
	}
	metrics.PushDispatched.Add(float64(len(ns)))
}

func (d *Dispatcher) post(ctx context.Context, ns []*models.Notification) error {
	body, err := json.Marshal(map[string]interface{}{"notifications": ns})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("push webhook returned %d", resp.StatusCode)
	}
	return nil
}
