package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/modguard/modguard/internal/moderation"
)

// AnalyzerService is the scoring surface the handler depends on.
type AnalyzerService interface {
	Analyze(ctx context.Context, message string) (*moderation.Result, error)
}

type AnalyzeHandler struct {
	svc      AnalyzerService
	maxWords int
	maxChars int
}

func NewAnalyzeHandler(svc AnalyzerService, maxWords, maxChars int) *AnalyzeHandler {
	return &AnalyzeHandler{svc: svc, maxWords: maxWords, maxChars: maxChars}
}

type analyzeRequest struct {
	Message string `json:"message"`
}

// Analyze validates the message against the input limits, scores it, and
// returns the verdict. Oracle-level failures degrade inside the analyzer;
// an error here means the request produced no usable verdict at all.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message required"})
		return
	}
	if n := utf8.RuneCountInString(req.Message); n > h.maxChars {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("message exceeds %d characters", h.maxChars),
		})
		return
	}
	if n := len(strings.Fields(req.Message)); n > h.maxWords {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("message exceeds %d words", h.maxWords),
		})
		return
	}

	result, err := h.svc.Analyze(r.Context(), req.Message)
	if err != nil {
		slog.Error("analysis failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "analysis failed"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}
