package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/models"
)

// validate performs shape checks only. Business rules (ownership, item
// availability, booking lifecycle) belong to the server.
func (g *Gateway) validate(r *http.Request, body []byte) error {
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	resource := segments[0]

	if resource != "users" {
		if err := validateUserHeader(r); err != nil {
			return err
		}
	}
	if err := validatePageParams(r); err != nil {
		return err
	}

	switch resource {
	case "users":
		return validateUserBody(r, body)
	case "items":
		return validateItemBody(r, segments, body)
	case "bookings":
		return validateBookingRequest(r, segments, body)
	case "requests":
		return validateRequestBody(r, body)
	}
	return nil
}

func validateUserHeader(r *http.Request) error {
	raw := strings.TrimSpace(r.Header.Get(userHeader))
	if raw == "" {
		return fmt.Errorf("%s header is required", userHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("%s header must be a positive integer", userHeader)
	}
	return nil
}

func validatePageParams(r *http.Request) error {
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("'from' must be an integer")
		}
		if from < 0 {
			return fmt.Errorf("'from' must be >= 0")
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("size")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("'size' must be an integer")
		}
		if size <= 0 {
			return fmt.Errorf("'size' must be > 0")
		}
	}
	return nil
}

func validateUserBody(r *http.Request, body []byte) error {
	if r.Method != http.MethodPost && r.Method != http.MethodPatch {
		return nil
	}

	var payload struct {
		Email *string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("invalid JSON body")
	}

	if r.Method == http.MethodPost {
		if payload.Email == nil || strings.TrimSpace(*payload.Email) == "" {
			return fmt.Errorf("email is required")
		}
	}
	if payload.Email != nil && !strings.Contains(*payload.Email, "@") {
		return fmt.Errorf("email %q is malformed", *payload.Email)
	}
	return nil
}

func validateItemBody(r *http.Request, segments []string, body []byte) error {
	if r.Method != http.MethodPost {
		return nil
	}

	// POST /items/{id}/comment
	if len(segments) == 3 && segments[2] == "comment" {
		var payload struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("invalid JSON body")
		}
		if strings.TrimSpace(payload.Text) == "" {
			return fmt.Errorf("comment text is required")
		}
		return nil
	}

	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Available   *bool  `json:"available"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	if strings.TrimSpace(payload.Name) == "" {
		return fmt.Errorf("item name is required")
	}
	if strings.TrimSpace(payload.Description) == "" {
		return fmt.Errorf("item description is required")
	}
	if payload.Available == nil {
		return fmt.Errorf("item availability is required")
	}
	return nil
}

func validateBookingRequest(r *http.Request, segments []string, body []byte) error {
	switch r.Method {
	case http.MethodGet:
		if state := strings.TrimSpace(r.URL.Query().Get("state")); state != "" {
			normalized := strings.ToUpper(state)
			if _, ok := models.ParseBookingState(normalized); !ok {
				return fmt.Errorf("Unknown state: %s", normalized)
			}
		}
		return nil

	case http.MethodPatch:
		if len(segments) != 2 {
			return nil
		}
		switch r.URL.Query().Get("approved") {
		case "true", "false":
			return nil
		default:
			return fmt.Errorf("'approved' must be true or false")
		}

	case http.MethodPost:
		var payload struct {
			ItemID *int64     `json:"itemId"`
			Start  *time.Time `json:"start"`
			End    *time.Time `json:"end"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("invalid JSON body")
		}
		if payload.ItemID == nil {
			return fmt.Errorf("itemId is required")
		}
		if payload.Start == nil || payload.End == nil {
			return fmt.Errorf("booking dates are required")
		}
		now := time.Now()
		if payload.Start.Before(now) {
			return fmt.Errorf("booking start is in the past")
		}
		if !payload.End.After(*payload.Start) {
			return fmt.Errorf("booking end must be after its start")
		}
		return nil
	}
	return nil
}

func validateRequestBody(r *http.Request, body []byte) error {
	if r.Method != http.MethodPost {
		return nil
	}
	var payload struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	if strings.TrimSpace(payload.Description) == "" {
		return fmt.Errorf("request description is required")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
