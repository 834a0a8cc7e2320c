// Package push delivers web push notifications to stored subscriptions.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/vnkhanh/roompush/models"
)

// Sender delivers one payload to one subscription.
type Sender interface {
	Send(ctx context.Context, sub models.Subscription, payload []byte) error
}

// StatusError is returned when the push service answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("push service responded %d: %s", e.Code, e.Body)
}

// Gone reports whether the subscription no longer exists at the push service.
func (e *StatusError) Gone() bool {
	return e.Code == http.StatusNotFound || e.Code == http.StatusGone
}

// Temporary reports whether the same request may succeed later.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

var ErrBadSubscription = errors.New("malformed push subscription")

// VAPID holds the application server identity sent with every push.
type VAPID struct {
	PublicKey  string
	PrivateKey string
	Subscriber string // contact email or https URL
}

type WebPushSender struct {
	vapid  VAPID
	ttl    int
	client *http.Client
}

func NewWebPushSender(vapid VAPID, ttl int, client *http.Client) *WebPushSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebPushSender{vapid: vapid, ttl: ttl, client: client}
}

// ParseSubscription turns the stored blob into the shape the push library
// consumes. This is the only place the blob's structure is inspected.
func ParseSubscription(sub models.Subscription) (*webpush.Subscription, error) {
	if sub.IsZero() {
		return nil, ErrBadSubscription
	}
	var s webpush.Subscription
	if err := json.Unmarshal(sub, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSubscription, err)
	}
	u, err := url.Parse(s.Endpoint)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("%w: endpoint must be an https URL", ErrBadSubscription)
	}
	if s.Keys.P256dh == "" || s.Keys.Auth == "" {
		return nil, fmt.Errorf("%w: missing keys", ErrBadSubscription)
	}
	return &s, nil
}

func (w *WebPushSender) Send(ctx context.Context, sub models.Subscription, payload []byte) error {
	s, err := ParseSubscription(sub)
	if err != nil {
		return err
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, s, &webpush.Options{
		HTTPClient:      w.client,
		Subscriber:      w.vapid.Subscriber,
		VAPIDPublicKey:  w.vapid.PublicKey,
		VAPIDPrivateKey: w.vapid.PrivateKey,
		TTL:             w.ttl,
		Urgency:         webpush.UrgencyNormal,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// GenerateVAPIDKeys returns a fresh (public, private) key pair.
func GenerateVAPIDKeys() (public, private string, err error) {
	private, public, err = webpush.GenerateVAPIDKeys()
	return public, private, err
}
