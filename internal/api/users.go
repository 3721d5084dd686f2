package api

import (
	"net/http"

	"shareit/internal/models"
	"shareit/internal/service"
)

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := s.users.GetAll(r.Context())
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)

	case http.MethodPost:
		var user models.User
		if err := decodeJSON(r, &user); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		created, err := s.users.Create(r.Context(), &user)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, created)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	id, tail, err := pathID(r.URL.Path, "/users/")
	if err != nil || tail != "" {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := s.users.Get(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)

	case http.MethodPatch:
		var patch service.UserPatch
		if err := decodeJSON(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		user, err := s.users.Update(r.Context(), id, patch)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)

	case http.MethodDelete:
		if err := s.users.Delete(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
