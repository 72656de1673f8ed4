package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"salonBack/internal/models"
)

// RemarketingRunner executes one scheduler pass.
type RemarketingRunner interface {
	Run(ctx context.Context) (models.RemarketingRunResult, error)
}

type RemarketingHandler struct {
	Service  RemarketingRunner
	ErrorLog *log.Logger
}

type remarketingRunResponse struct {
	Success        bool                        `json:"success"`
	SentCount      int                         `json:"sentCount"`
	EligibleUsers  int                         `json:"eligibleUsers"`
	ActiveMessages int                         `json:"activeMessages"`
	Results        []models.RemarketingFailure `json:"results,omitempty"`
}

// RunNow is the cron-style external trigger: POST with no body, JSON summary back.
func (h *RemarketingHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.Run(r.Context())
	if errors.Is(err, models.ErrRunInProgress) {
		writeJSONError(w, "A remarketing run is already in progress", http.StatusConflict)
		return
	}
	if err != nil {
		h.ErrorLog.Printf("remarketing run error: %v", err)
		writeJSONError(w, "Remarketing run failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(remarketingRunResponse{
		Success:        true,
		SentCount:      result.SentCount,
		EligibleUsers:  result.EligibleUsers,
		ActiveMessages: result.ActiveMessages,
		Results:        result.Failures,
	})
}
