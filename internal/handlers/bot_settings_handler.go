package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"salonBack/internal/models"
	"salonBack/internal/services"
)

type BotSettingsHandler struct {
	Service *services.BotSettingsService
}

func (h *BotSettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.Get(r.Context())
	if err != nil {
		log.Printf("GetSettings error: %v", err)
		http.Error(w, "Failed to get settings", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settings)
}

func (h *BotSettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.BotSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if err := h.Service.Save(r.Context(), settings); err != nil {
		log.Printf("UpdateSettings error: %v", err)
		http.Error(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
