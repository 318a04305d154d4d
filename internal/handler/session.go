package handler

import (
	"net/http"

	"github.com/itchan-dev/textboard/internal/api"
	mw "github.com/itchan-dev/textboard/internal/middleware"
	"github.com/itchan-dev/textboard/internal/session"
	"github.com/itchan-dev/textboard/internal/utils"
)

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s := mw.GetSession(r)
	if s == nil {
		http.Error(w, "No session", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewSession(s.State(), h.formatPost))
}

// ApplyIntent runs one intent against the caller's session and returns the
// resulting state. Blank create submissions succeed without changing anything.
func (h *Handler) ApplyIntent(w http.ResponseWriter, r *http.Request) {
	s := mw.GetSession(r)
	if s == nil {
		http.Error(w, "No session", http.StatusInternalServerError)
		return
	}

	var body api.IntentRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	in := session.Intent{Kind: body.Intent, Target: body.Target, Value: body.Value}
	if in.IsCreate() && h.creates != nil {
		ip, err := utils.GetIP(r)
		if err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
		if !h.creates.Allow(ip) {
			http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
			return
		}
	}
	if err := h.guard.Apply(r.Context(), s, in); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewSession(s.State(), h.formatPost))
}
