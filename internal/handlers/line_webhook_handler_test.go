package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"salonBack/internal/line"
)

type recordingProcessor struct {
	batches [][]line.Event
}

func (p *recordingProcessor) HandleEvents(_ context.Context, events []line.Event) {
	p.batches = append(p.batches, events)
}

const webhookBody = `{"events":[{"type":"message","source":{"userId":"U1","type":"user"},"replyToken":"rt-1","message":{"id":"1","type":"text","text":"報名"}}]}`

// base64 HMAC-SHA256 of webhookBody under "test-secret"
const webhookSignature = "rhgn+7qWz97zw8an6PN/lk4a4GI6sllUBJ8afbkSTQo="

func newWebhookHandler(p *recordingProcessor) *LineWebhookHandler {
	quiet := log.New(io.Discard, "", 0)
	return &LineWebhookHandler{
		Conversation:  p,
		ChannelSecret: "test-secret",
		InfoLog:       quiet,
		ErrorLog:      quiet,
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	processor := &recordingProcessor{}
	h := newWebhookHandler(processor)

	req := httptest.NewRequest(http.MethodPost, "/webhook/line", strings.NewReader(webhookBody))
	req.Header.Set("X-Line-Signature", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=")
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(processor.batches) != 0 {
		t.Fatal("no events may be processed on signature mismatch")
	}
}

func TestWebhookAcceptsValidSignature(t *testing.T) {
	processor := &recordingProcessor{}
	h := newWebhookHandler(processor)

	req := httptest.NewRequest(http.MethodPost, "/webhook/line", strings.NewReader(webhookBody))
	req.Header.Set("X-Line-Signature", webhookSignature)
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp["success"] {
		t.Fatalf("expected success body, got %s", rec.Body.String())
	}
	if len(processor.batches) != 1 || len(processor.batches[0]) != 1 {
		t.Fatalf("expected one processed batch with one event, got %+v", processor.batches)
	}
	ev := processor.batches[0][0]
	if ev.Message.Text != "報名" || ev.Source.UserID != "U1" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestWebhookAllowsMissingSignature(t *testing.T) {
	processor := &recordingProcessor{}
	h := newWebhookHandler(processor)

	req := httptest.NewRequest(http.MethodPost, "/webhook/line", strings.NewReader(webhookBody))
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unsigned sandbox call, got %d", rec.Code)
	}
	if len(processor.batches) != 1 {
		t.Fatal("expected unsigned batch to be processed")
	}
}

func TestWebhookFailsFastWithoutSecret(t *testing.T) {
	processor := &recordingProcessor{}
	h := newWebhookHandler(processor)
	h.ChannelSecret = ""

	req := httptest.NewRequest(http.MethodPost, "/webhook/line", strings.NewReader(webhookBody))
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when secret is missing, got %d", rec.Code)
	}
	if len(processor.batches) != 0 {
		t.Fatal("no processing without configuration")
	}
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	processor := &recordingProcessor{}
	h := newWebhookHandler(processor)

	req := httptest.NewRequest(http.MethodPost, "/webhook/line", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
