package api

import (
	"net/http"
	"strings"

	"shareit/internal/metrics"
	"shareit/internal/models"
	"shareit/internal/service"
)

func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	actorID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.listBookings(w, r, actorID, models.RoleBooker)

	case http.MethodPost:
		var input service.BookingInput
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		view, err := s.bookings.CreateBooking(r.Context(), actorID, input)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		metrics.IncBooking(string(view.Status))
		writeJSON(w, http.StatusOK, view)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleOwnerBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	actorID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.listBookings(w, r, actorID, models.RoleOwner)
}

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request, actorID int64, role models.BookingRole) {
	state := strings.TrimSpace(r.URL.Query().Get("state"))
	if state == "" {
		state = string(models.StateAll)
	}
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	views, err := s.bookings.ListBookings(r.Context(), actorID, role, state, page)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleOwnerExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	actorID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	views, err := s.bookings.ListBookings(r.Context(), actorID, models.RoleOwner, string(models.StateAll), nil)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	filePath, err := s.exporter.OwnerBookings(actorID, views)
	if err != nil {
		s.logger.Error().Err(err).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"bookings.xlsx\"")
	http.ServeFile(w, r, filePath)
}

func (s *Server) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	bookingID, tail, err := pathID(r.URL.Path, "/bookings/")
	if err != nil || tail != "" {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	actorID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		view, err := s.bookings.GetBooking(r.Context(), actorID, bookingID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)

	case http.MethodPatch:
		var approved bool
		switch r.URL.Query().Get("approved") {
		case "true":
			approved = true
		case "false":
			approved = false
		default:
			writeError(w, http.StatusBadRequest, "'approved' must be true or false")
			return
		}
		view, err := s.bookings.UpdateBooking(r.Context(), actorID, bookingID, approved)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		metrics.IncBooking(string(view.Status))
		writeJSON(w, http.StatusOK, view)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
