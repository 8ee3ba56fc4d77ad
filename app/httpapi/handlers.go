package httpapi

import (
	"net/http"

	"github.com/AntonStoeckl/lending-ledger/app/features/command/borrowitem"
	"github.com/AntonStoeckl/lending-ledger/app/features/command/createitem"
	"github.com/AntonStoeckl/lending-ledger/app/features/command/createuser"
	"github.com/AntonStoeckl/lending-ledger/app/features/command/returnitem"
	"github.com/AntonStoeckl/lending-ledger/app/features/query/currentholder"
	"github.com/AntonStoeckl/lending-ledger/app/features/query/itemdetail"
	"github.com/AntonStoeckl/lending-ledger/app/features/query/listitems"
	"github.com/AntonStoeckl/lending-ledger/app/features/query/listusers"
	"github.com/AntonStoeckl/lending-ledger/app/features/query/userdetail"
	"github.com/AntonStoeckl/lending-ledger/ledger"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	result, err := s.handlers.ListUsers.Handle(r.Context(), listusers.BuildQuery())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toNamedUsers(result.Users))
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	cmd, err := createuser.BuildCommand(req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.handlers.CreateUser.Handle(r.Context(), cmd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, namedResponse{ID: user.ID, Name: user.Name})
}

func (s *Server) handleUserDetail(w http.ResponseWriter, r *http.Request) {
	userID, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	detail, err := s.handlers.UserDetail.Handle(r.Context(), userdetail.BuildQuery(userID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserDetail(detail))
}

func (s *Server) handleBorrow(w http.ResponseWriter, r *http.Request) {
	userID, err := uuidParam(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	itemID, err := uuidParam(r, "bookId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entryID, err := s.newEntryID()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cmd := borrowitem.BuildCommand(entryID, userID, itemID, s.clock())

	if _, err = s.handlers.BorrowItem.Handle(r.Context(), cmd); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleReturn validates the score before any lookup, so a bad score is a 400
// even for unknown users or items.
func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	var req returnRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.Score == nil {
		s.writeError(w, r, ledger.ErrScoreMissing)
		return
	}

	if err := ledger.ValidateScore(*req.Score); err != nil {
		s.writeError(w, r, err)
		return
	}

	userID, err := uuidParam(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	itemID, err := uuidParam(r, "bookId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cmd := returnitem.BuildCommand(userID, itemID, req.Score, s.clock())

	if _, err = s.handlers.ReturnItem.Handle(r.Context(), cmd); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	result, err := s.handlers.ListItems.Handle(r.Context(), listitems.BuildQuery())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toNamedItems(result.Items))
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	cmd, err := createitem.BuildCommand(req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	item, err := s.handlers.CreateItem.Handle(r.Context(), cmd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, namedResponse{ID: item.ID, Name: item.Name})
}

func (s *Server) handleItemDetail(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	detail, err := s.handlers.ItemDetail.Handle(r.Context(), itemdetail.BuildQuery(itemID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemDetail(detail))
}

func (s *Server) handleCurrentHolder(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	availability, err := s.handlers.CurrentHolder.Handle(r.Context(), currentholder.BuildQuery(itemID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toHolder(availability))
}
