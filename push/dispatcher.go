package push

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/vnkhanh/roompush/models"
)

// Target is one recipient of a fan-out.
type Target struct {
	UserID       string
	Email        string
	Subscription models.Subscription
}

// Report summarises a fan-out. Failures never abort the others.
type Report struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Expired   int `json:"expired"`
	Skipped   int `json:"skipped"`

	// Gone holds the targets whose subscription the push service reported
	// gone, with the exact blob that was used.
	Gone []Target `json:"-"`
}

type Options struct {
	Workers        int
	Timeout        time.Duration // per attempt
	Retries        int           // extra attempts for transient failures
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = 8
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 250 * time.Millisecond
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 5 * time.Second
	}
	return o
}

// Dispatcher fans a payload out over a bounded pool of workers.
type Dispatcher struct {
	sender Sender
	opts   Options
}

func NewDispatcher(sender Sender, opts Options) *Dispatcher {
	return &Dispatcher{sender: sender, opts: opts.withDefaults()}
}

type outcome int

const (
	delivered outcome = iota
	failed
	expired
)

// Dispatch sends payload to every target that holds a subscription and waits
// for all deliveries to finish or give up.
func (d *Dispatcher) Dispatch(ctx context.Context, targets []Target, payload []byte) Report {
	var rep Report
	p := pool.NewWithResults[outcome]().WithMaxGoroutines(d.opts.Workers)
	var expiredIdx []int

	queued := make([]Target, 0, len(targets))
	for _, t := range targets {
		if t.Subscription.IsZero() {
			rep.Skipped++
			continue
		}
		queued = append(queued, t)
	}
	if len(queued) == 0 {
		return rep
	}

	for _, t := range queued {
		p.Go(func() outcome {
			return d.deliver(ctx, t, payload)
		})
	}
	// results come back in submission order
	results := p.Wait()

	rep.Attempted = len(queued)
	for i, res := range results {
		switch res {
		case delivered:
			rep.Delivered++
		case expired:
			rep.Expired++
			expiredIdx = append(expiredIdx, i)
		default:
			rep.Failed++
		}
	}
	for _, i := range expiredIdx {
		rep.Gone = append(rep.Gone, queued[i])
	}
	return rep
}

func (d *Dispatcher) deliver(ctx context.Context, t Target, payload []byte) outcome {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = d.opts.InitialBackoff
	eb.MaxInterval = d.opts.MaxBackoff
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(d.opts.Retries)), ctx)

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()

		err := d.sender.Send(attemptCtx, t.Subscription, payload)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
	if err == nil {
		return delivered
	}

	var se *StatusError
	if errors.As(err, &se) && se.Gone() {
		log.Info().Str("user", t.UserID).Int("status", se.Code).Msg("push subscription expired")
		return expired
	}
	log.Warn().Err(err).
		Str("user", t.UserID).
		Str("email", t.Email).
		Int("attempts", attempts).
		Msg("failed to send notification")
	return failed
}

func retryable(err error) bool {
	if errors.Is(err, ErrBadSubscription) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
