package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/tracksdev/tracks/pkg/db/models"
)

type testPayload struct {
	Action string `json:"action" url:"action"`
	TaskID int64  `json:"taskId" url:"task_id"`
}

func TestSendWebhookJSON(t *testing.T) {
	is := is.New(t)

	var (
		gotHeaders http.Header
		gotBody    []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	hook := models.Webhook{
		ID:          1,
		URL:         srv.URL,
		Secret:      "s3cret",
		ContentType: int(ContentTypeJSON),
	}
	err := SendWebhook(context.TODO(), hook, EventTask, testPayload{Action: "created", TaskID: 42})
	is.NoErr(err)

	is.Equal(gotHeaders.Get("Content-Type"), "application/json")
	is.Equal(gotHeaders.Get("X-Tracks-Event"), "task")
	is.True(gotHeaders.Get("X-Tracks-Delivery") != "")

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(gotBody)
	is.Equal(gotHeaders.Get("X-Tracks-Signature"), "sha256="+hex.EncodeToString(mac.Sum(nil)))

	var p testPayload
	is.NoErr(json.Unmarshal(gotBody, &p))
	is.Equal(p, testPayload{Action: "created", TaskID: 42})
}

func TestSendWebhookForm(t *testing.T) {
	is := is.New(t)

	var (
		gotContentType string
		gotBody        []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	hook := models.Webhook{
		ID:          1,
		URL:         srv.URL,
		ContentType: int(ContentTypeForm),
	}
	err := SendWebhook(context.TODO(), hook, EventComment, testPayload{Action: "created", TaskID: 42})
	is.NoErr(err)

	is.Equal(gotContentType, "application/x-www-form-urlencoded")
	is.True(strings.Contains(string(gotBody), "action=created"))
	is.True(strings.Contains(string(gotBody), "task_id=42"))
}

func TestSendWebhookNoSecretSkipsSignature(t *testing.T) {
	is := is.New(t)

	var gotSignature string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Tracks-Signature")
	}))
	defer srv.Close()

	hook := models.Webhook{URL: srv.URL, ContentType: int(ContentTypeJSON)}
	is.NoErr(SendWebhook(context.TODO(), hook, EventTask, testPayload{}))
	is.Equal(gotSignature, "")
}

func TestSendWebhookRejectsNon2xx(t *testing.T) {
	is := is.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	hook := models.Webhook{URL: srv.URL, ContentType: int(ContentTypeJSON)}
	err := SendWebhook(context.TODO(), hook, EventTask, testPayload{})
	is.True(err != nil)
}

func TestParseEvent(t *testing.T) {
	is := is.New(t)

	for _, e := range Events() {
		got, err := ParseEvent(e.String())
		is.NoErr(err)
		is.Equal(got, e)
	}

	_, err := ParseEvent("push")
	is.Equal(err, ErrInvalidEvent)
}

func TestParseContentType(t *testing.T) {
	is := is.New(t)

	ct, err := ParseContentType("application/json")
	is.NoErr(err)
	is.Equal(ct, ContentTypeJSON)

	ct, err = ParseContentType("application/x-www-form-urlencoded")
	is.NoErr(err)
	is.Equal(ct, ContentTypeForm)

	_, err = ParseContentType("text/plain")
	is.Equal(err, ErrInvalidContentType)
}
