package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"salonBack/internal/models"
	"salonBack/internal/services"
)

type RemarketingRuleHandler struct {
	Service *services.RemarketingRuleService
}

func (h *RemarketingRuleHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var rule models.RemarketingRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	created, err := h.Service.CreateRule(r.Context(), rule)
	if errors.Is(err, services.ErrInvalidRuleOffset) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, models.ErrDuplicateRuleOffset) {
		http.Error(w, "An active rule with this hour offset already exists", http.StatusConflict)
		return
	}
	if err != nil {
		log.Printf("CreateRule error: %v", err)
		http.Error(w, "Failed to create rule", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *RemarketingRuleHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Service.GetRules(r.Context())
	if err != nil {
		log.Printf("GetRules error: %v", err)
		http.Error(w, "Failed to get rules", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rules)
}

func (h *RemarketingRuleHandler) GetRuleByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIntParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	rule, err := h.Service.GetRuleByID(r.Context(), id)
	if errors.Is(err, models.ErrRuleNotFound) {
		http.Error(w, "Rule not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("GetRuleByID error: %v", err)
		http.Error(w, "Failed to get rule", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rule)
}

func (h *RemarketingRuleHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id, err := getIntParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	var rule models.RemarketingRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	rule.ID = id
	err = h.Service.UpdateRule(r.Context(), rule)
	if errors.Is(err, services.ErrInvalidRuleOffset) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, models.ErrDuplicateRuleOffset) {
		http.Error(w, "An active rule with this hour offset already exists", http.StatusConflict)
		return
	}
	if errors.Is(err, models.ErrRuleNotFound) {
		http.Error(w, "Rule not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("UpdateRule error: %v", err)
		http.Error(w, "Failed to update rule", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RemarketingRuleHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := getIntParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	err = h.Service.DeleteRule(r.Context(), id)
	if errors.Is(err, models.ErrRuleNotFound) {
		http.Error(w, "Rule not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("DeleteRule error: %v", err)
		http.Error(w, "Failed to delete rule", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
