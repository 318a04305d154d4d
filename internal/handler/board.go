package handler

import (
	"net/http"

	"github.com/itchan-dev/textboard/internal/api"
	"github.com/itchan-dev/textboard/internal/utils"
)

func (h *Handler) GetBoards(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, api.NewBoards(h.forum.Boards(r.Context())))
}
