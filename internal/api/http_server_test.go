package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/export"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *database.DB) {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	exporter := export.NewExporter(t.TempDir(), &logger)
	return NewServer(config.ServerConfig{Port: 0}, db, exporter, &logger), db
}

func doJSON(t *testing.T, handler http.Handler, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(userHeader, fmt.Sprintf("%d", userID))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createUserHTTP(t *testing.T, handler http.Handler, name, email string) models.User {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/users", 0, map[string]string{"name": name, "email": email})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[models.User](t, rec)
}

func createItemHTTP(t *testing.T, handler http.Handler, ownerID int64, name string, available bool) models.Item {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/items", ownerID, map[string]any{
		"name": name, "description": name + " description", "available": available,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[models.Item](t, rec)
}

func TestUsersAPI(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	alice := createUserHTTP(t, h, "Alice", "alice@example.com")
	assert.NotZero(t, alice.ID)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/users", 0, map[string]string{"name": "Clone", "email": "alice@example.com"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("malformed email", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/users", 0, map[string]string{"name": "Bob", "email": "nope"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/users/%d", alice.ID), 0, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[models.User](t, rec)
		assert.Equal(t, "Alice", got.Name)
	})

	t.Run("get missing", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/users/999", 0, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("patch", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPatch, fmt.Sprintf("/users/%d", alice.ID), 0, map[string]string{"name": "Alice Renamed"})
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[models.User](t, rec)
		assert.Equal(t, "Alice Renamed", got.Name)
		assert.Equal(t, "alice@example.com", got.Email)
	})

	t.Run("list", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/users", 0, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[[]models.User](t, rec)
		assert.Len(t, got, 1)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodDelete, fmt.Sprintf("/users/%d", alice.ID), 0, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/users/%d", alice.ID), 0, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestItemsAPI(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	owner := createUserHTTP(t, h, "Owner", "owner@example.com")
	viewer := createUserHTTP(t, h, "Viewer", "viewer@example.com")
	item := createItemHTTP(t, h, owner.ID, "Drill", true)

	t.Run("missing header", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/items", 0, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("owner listing", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/items", owner.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[[]models.ItemView](t, rec)
		require.Len(t, got, 1)
		assert.Equal(t, item.ID, got[0].ID)
	})

	t.Run("search", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/items/search?text=drill", viewer.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[[]models.Item](t, rec)
		require.Len(t, got, 1)
	})

	t.Run("search blank text", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/items/search?text=", viewer.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[[]models.Item](t, rec)
		assert.Empty(t, got)
	})

	t.Run("patch by stranger hides the item", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPatch, fmt.Sprintf("/items/%d", item.ID), viewer.ID, map[string]string{"name": "Mine now"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("comment without completed booking", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, fmt.Sprintf("/items/%d/comment", item.ID), viewer.ID, map[string]string{"text": "great"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// TestBookingLifecycle drives the full flow end to end: create, reject the
// duplicate decision, filter by state, enforce visibility.
func TestBookingLifecycle(t *testing.T) {
	srv, db := newTestServer(t)
	h := srv.Handler()

	owner := createUserHTTP(t, h, "Owner", "owner@example.com")
	booker := createUserHTTP(t, h, "Booker", "booker@example.com")
	stranger := createUserHTTP(t, h, "Stranger", "stranger@example.com")
	item := createItemHTTP(t, h, owner.ID, "Drill", true)

	start := time.Now().Add(24 * time.Hour).UTC()
	end := start.Add(24 * time.Hour)

	rec := doJSON(t, h, http.MethodPost, "/bookings", booker.ID, map[string]any{
		"itemId": item.ID,
		"start":  start.Format(time.RFC3339),
		"end":    end.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	booking := decodeBody[models.BookingView](t, rec)
	assert.Equal(t, models.StatusWaiting, booking.Status)
	assert.Equal(t, booker.ID, booking.Booker.ID)

	t.Run("owner cannot book own item", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/bookings", owner.ID, map[string]any{
			"itemId": item.ID,
			"start":  start.Format(time.RFC3339),
			"end":    end.Format(time.RFC3339),
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("approve requires owner", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPatch, fmt.Sprintf("/bookings/%d?approved=true", booking.ID), booker.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("approved must be a boolean literal", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPatch, fmt.Sprintf("/bookings/%d?approved=yes", booking.ID), owner.ID, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("owner approves", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPatch, fmt.Sprintf("/bookings/%d?approved=true", booking.ID), owner.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[models.BookingView](t, rec)
		assert.Equal(t, models.StatusApproved, got.Status)
	})

	t.Run("second approve fails", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPatch, fmt.Sprintf("/bookings/%d?approved=true", booking.ID), owner.ID, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("visibility", func(t *testing.T) {
		for _, tc := range []struct {
			userID int64
			want   int
		}{
			{booker.ID, http.StatusOK},
			{owner.ID, http.StatusOK},
			{stranger.ID, http.StatusNotFound},
		} {
			rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/bookings/%d", booking.ID), tc.userID, nil)
			assert.Equal(t, tc.want, rec.Code)
		}
	})

	t.Run("state filters", func(t *testing.T) {
		for state, wantLen := range map[string]int{
			"ALL":      1,
			"FUTURE":   1,
			"PAST":     0,
			"CURRENT":  0,
			"WAITING":  0,
			"REJECTED": 0,
		} {
			rec := doJSON(t, h, http.MethodGet, "/bookings?state="+state, booker.ID, nil)
			require.Equal(t, http.StatusOK, rec.Code, state)
			got := decodeBody[[]models.BookingView](t, rec)
			assert.Len(t, got, wantLen, state)
		}
	})

	t.Run("owner listing", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/bookings/owner?state=ALL", owner.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[[]models.BookingView](t, rec)
		require.Len(t, got, 1)
		assert.Equal(t, booking.ID, got[0].ID)
	})

	t.Run("unsupported state", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/bookings?state=UNSUPPORTED_STATUS", booker.ID, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody[map[string]string](t, rec)
		assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", body["error"])
	})

	t.Run("page number arithmetic", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/bookings?state=ALL&from=1&size=10", booker.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[[]models.BookingView](t, rec)
		assert.Len(t, got, 1)
	})

	t.Run("export", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/bookings/owner/export", nil)
		req.Header.Set(userHeader, fmt.Sprintf("%d", owner.ID))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
		assert.NotZero(t, rec.Body.Len())
	})

	t.Run("comment after the booking ends", func(t *testing.T) {
		// Сдвигаем бронирование в прошлое напрямую.
		_, err := db.ExecContext(context.Background(), `UPDATE bookings SET start_date = ?, end_date = ? WHERE id = ?`,
			time.Now().Add(-48*time.Hour), time.Now().Add(-24*time.Hour), booking.ID)
		require.NoError(t, err)

		rec := doJSON(t, h, http.MethodPost, fmt.Sprintf("/items/%d/comment", item.ID), booker.ID, map[string]string{"text": "worked well"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		comment := decodeBody[models.CommentView](t, rec)
		assert.Equal(t, "Booker", comment.AuthorName)

		itemRec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/items/%d", item.ID), booker.ID, nil)
		require.Equal(t, http.StatusOK, itemRec.Code)
		view := decodeBody[models.ItemView](t, itemRec)
		require.Len(t, view.Comments, 1)
		assert.Equal(t, "worked well", view.Comments[0].Text)
	})
}

func TestRequestsAPI(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	requestor := createUserHTTP(t, h, "Requestor", "requestor@example.com")
	owner := createUserHTTP(t, h, "Owner", "owner@example.com")

	rec := doJSON(t, h, http.MethodPost, "/requests", requestor.ID, map[string]string{"description": "need a ladder"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	request := decodeBody[models.ItemRequest](t, rec)
	assert.NotZero(t, request.ID)

	itemRec := doJSON(t, h, http.MethodPost, "/items", owner.ID, map[string]any{
		"name": "Ladder", "description": "tall ladder", "available": true, "requestId": request.ID,
	})
	require.Equal(t, http.StatusOK, itemRec.Code)

	t.Run("own requests carry offered items", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/requests", requestor.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		views := decodeBody[[]models.RequestView](t, rec)
		require.Len(t, views, 1)
		require.Len(t, views[0].Items, 1)
		assert.Equal(t, "Ladder", views[0].Items[0].Name)
	})

	t.Run("others listing excludes own", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/requests/all", requestor.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		views := decodeBody[[]models.RequestView](t, rec)
		assert.Empty(t, views)

		rec = doJSON(t, h, http.MethodGet, "/requests/all", owner.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		views = decodeBody[[]models.RequestView](t, rec)
		assert.Len(t, views, 1)
	})

	t.Run("get by id", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/requests/%d", request.ID), owner.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		view := decodeBody[models.RequestView](t, rec)
		assert.Equal(t, "need a ladder", view.Description)
	})

	t.Run("missing", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/requests/999", owner.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPut, "/users", 0, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
