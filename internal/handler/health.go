package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/itchan-dev/textboard/internal/api"
	"github.com/itchan-dev/textboard/internal/utils"
)

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// Ready pings storage with a short timeout.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.forum.Ready(ctx); err != nil {
		utils.WriteJSON(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "unavailable", Error: "storage unreachable"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}
