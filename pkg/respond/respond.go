package respond

import (
	"encoding/json"
	"net/http"
)

// JSON пишет ответ с кодом code и телом data
func JSON(w http.ResponseWriter, r *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	if data == nil || code == http.StatusNoContent {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// Error отдаёт {"error": message}; клиент доски разбирает именно этот формат
func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, map[string]string{"error": message})
}
