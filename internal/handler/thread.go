package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/textboard/internal/api"
	"github.com/itchan-dev/textboard/internal/domain"
	"github.com/itchan-dev/textboard/internal/utils"
)

func (h *Handler) GetThreads(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")
	if _, err := h.forum.Board(r.Context(), board); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewThreads(h.forum.ListThreads(r.Context(), board)))
}

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")

	var body api.CreateThreadRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, err := h.forum.CreateThread(r.Context(), domain.ThreadCreationData{
		Board: board,
		Title: body.Title,
		OpPost: domain.PostCreationData{
			Board:   board,
			Name:    body.Name,
			Content: body.Body,
		},
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.NewThread(thread))
}
