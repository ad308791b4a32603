package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/letsssgooo/quizweb/internal/lib/slogcustom"
)

type jsonResponse struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// respondSuccess отправляет JSON ответ 200 с данными.
func (h *Handler) respondSuccess(w http.ResponseWriter, message string, data interface{}) {
	h.sendJSON(w, http.StatusOK, &jsonResponse{
		Success: true,
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// respondError отправляет JSON ответ с ошибкой.
func (h *Handler) respondError(w http.ResponseWriter, code int, message string) {
	h.sendJSON(w, code, &jsonResponse{
		Success: false,
		Code:    code,
		Message: message,
	})
}

func (h *Handler) sendJSON(w http.ResponseWriter, code int, response *jsonResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("failed to encode response", slogcustom.Err(err))
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// logFailure пишет ошибку клиента как Warn, а ошибку сервера как Error.
func (h *Handler) logFailure(r *http.Request, code int, msg string, err error) {
	level := slog.LevelWarn
	if code >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	h.log.LogAttrs(r.Context(), level, msg,
		slog.String("path", r.URL.Path),
		slog.Int("status", code),
		slogcustom.Err(err),
	)
}
