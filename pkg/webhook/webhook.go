// Package webhook provides project webhook payloads and delivery.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/store"
	"github.com/tracksdev/tracks/pkg/version"
)

// Hook is a project webhook.
type Hook struct {
	models.Webhook
	ContentType ContentType
	Events      []Event
}

// EventPayload is a webhook event payload.
type EventPayload interface {
	// Event returns the event type.
	Event() Event

	// ProjectID returns the ID of the project the event happened in.
	ProjectID() int64
}

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

var deliveryCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tracks",
	Subsystem: "webhook",
	Name:      "deliveries_total",
	Help:      "The total number of webhook delivery attempts",
}, []string{"event", "success"})

// do sends a webhook.
// Caller must close the returned body.
func do(ctx context.Context, url string, method string, headers http.Header, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header = headers
	res, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// SendWebhook sends a single webhook.
func SendWebhook(ctx context.Context, w models.Webhook, event Event, payload interface{}) error {
	var buf bytes.Buffer

	contentType := ContentType(w.ContentType) //nolint:gosec
	switch contentType {
	case ContentTypeJSON:
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return err
		}
	case ContentTypeForm:
		v, err := query.Values(payload)
		if err != nil {
			return err
		}
		buf.WriteString(v.Encode()) // nolint: errcheck
	default:
		return ErrInvalidContentType
	}

	headers := http.Header{}
	headers.Add("Content-Type", contentType.String())
	headers.Add("User-Agent", "Tracks/"+version.Version)
	headers.Add("X-Tracks-Event", event.String())

	id, err := uuid.NewUUID()
	if err != nil {
		return err
	}

	headers.Add("X-Tracks-Delivery", id.String())

	if w.Secret != "" {
		sig := hmac.New(sha256.New, []byte(w.Secret))
		sig.Write(buf.Bytes()) // nolint: errcheck
		headers.Add("X-Tracks-Signature", "sha256="+hex.EncodeToString(sig.Sum(nil)))
	}

	res, err := do(ctx, w.URL, http.MethodPost, headers, &buf)
	if err != nil {
		return err
	}
	defer res.Body.Close() // nolint: errcheck

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("webhook %d: unexpected status %d", w.ID, res.StatusCode)
	}

	return nil
}

// SendEvent sends an event to all active webhooks of the event's project
// subscribed to it. Delivery is best effort, failures are logged and do
// not stop the remaining deliveries.
func SendEvent(ctx context.Context, payload EventPayload) error {
	dbx := db.FromContext(ctx)
	datastore := store.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("webhook")

	webhooks, err := datastore.ListWebhooksByProjectWhereEvent(ctx, dbx, payload.ProjectID(), []int{int(payload.Event())})
	if err != nil {
		return db.WrapError(err)
	}

	for _, w := range webhooks {
		err := SendWebhook(ctx, w, payload.Event(), payload)
		deliveryCounter.WithLabelValues(payload.Event().String(), strconv.FormatBool(err == nil)).Inc()
		if err != nil {
			logger.Error("failed to deliver webhook", "webhook", w.ID, "url", w.URL, "err", err)
		}
	}

	return nil
}
