package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/textboard/internal/api"
	"github.com/itchan-dev/textboard/internal/domain"
	"github.com/itchan-dev/textboard/internal/utils"
)

func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")
	threadId := chi.URLParam(r, "thread")

	thread, err := h.forum.Thread(r.Context(), board, threadId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewPosts(h.forum.ListPosts(r.Context(), thread.Id), h.formatPost))
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var body api.CreatePostRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, _, err := h.forum.CreatePost(r.Context(), domain.PostCreationData{
		Board:   chi.URLParam(r, "board"),
		Thread:  chi.URLParam(r, "thread"),
		Name:    body.Name,
		Content: body.Body,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.NewPost(post, h.formatPost))
}
