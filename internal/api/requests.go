package api

import (
	"net/http"
)

func (s *Server) handleRequests(w http.ResponseWriter, r *http.Request) {
	actorID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		views, err := s.requests.GetOwn(r.Context(), actorID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, views)

	case http.MethodPost:
		var body struct {
			Description string `json:"description"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		request, err := s.requests.Create(r.Context(), actorID, body.Description)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, request)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleOtherRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	actorID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	views, err := s.requests.GetOthers(r.Context(), actorID, page)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleRequestByID(w http.ResponseWriter, r *http.Request) {
	requestID, tail, err := pathID(r.URL.Path, "/requests/")
	if err != nil || tail != "" {
		writeError(w, http.StatusBadRequest, "invalid request id")
		return
	}
	actorID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.requests.Get(r.Context(), actorID, requestID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
