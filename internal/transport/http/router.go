package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"darkstar-quiz-service/internal/app"
	"darkstar-quiz-service/internal/domain"
)

// NewRouter mounts the websocket endpoint, the results lookup and /healthz.
func NewRouter(ws *WSHandler, service *app.QuizService) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", ws.ServeWS)
	mux.HandleFunc("GET /channels/{channelID}/results", func(w http.ResponseWriter, r *http.Request) {
		report, err := service.LastResults(r.Context(), r.PathValue("channelID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindExpired:
		status = http.StatusGone
	case domain.KindGeneration:
		status = http.StatusBadGateway
	}
	msg := err.Error()
	if errors.Is(err, domain.ErrNoResults) {
		msg = domain.ErrNoResults.Error()
	}
	writeJSON(w, status, errorPayload{Kind: domain.KindOf(err), Message: msg})
}
