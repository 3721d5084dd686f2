package api

import (
	"net/http"

	"shareit/internal/service"
)

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	actorID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		page, err := parsePage(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		views, err := s.items.GetOwnerItems(r.Context(), actorID, page)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, views)

	case http.MethodPost:
		var input service.ItemInput
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		item, err := s.items.AddItem(r.Context(), actorID, input)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleItemSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, err := callerID(r); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.items.Search(r.Context(), r.URL.Query().Get("text"), page)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleItemByID(w http.ResponseWriter, r *http.Request) {
	itemID, tail, err := pathID(r.URL.Path, "/items/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	actorID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if tail == "comment" {
		s.handleAddComment(w, r, actorID, itemID)
		return
	}
	if tail != "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		view, err := s.items.GetItem(r.Context(), actorID, itemID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)

	case http.MethodPatch:
		var patch service.ItemPatch
		if err := decodeJSON(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		item, err := s.items.UpdateItem(r.Context(), actorID, itemID, patch)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request, actorID, itemID int64) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	comment, err := s.items.AddComment(r.Context(), actorID, itemID, body.Text)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}
