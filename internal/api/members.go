package api

import (
	"net/http"

	"pagechat/internal/chat"
)

type MemberHandler struct {
	directory chat.MemberDirectory
}

func NewMemberHandler(directory chat.MemberDirectory) *MemberHandler {
	return &MemberHandler{directory: directory}
}

// List returns the members eligible for mention, in directory order.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.directory.ListMembers(r.Context())
	if err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, members)
}
