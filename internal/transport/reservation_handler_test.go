package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dkoshelev/restobook/internal/model"
	"github.com/dkoshelev/restobook/internal/notify"
	"github.com/dkoshelev/restobook/internal/repository/memory"
	"github.com/dkoshelev/restobook/internal/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	logger := zap.NewNop()

	bookings := service.NewBookingService(store, notify.Nop{}, logger)
	tables := service.NewTableService(store, logger)
	availability := service.NewAvailabilityFinder(store, logger)

	router := InitRoutes(
		NewTableHandler(tables, availability, model.DefaultDuration),
		NewReservationHandler(bookings, model.DefaultDuration),
		nil,
		logger,
	)
	return router, store
}

func seedActiveTable(t *testing.T, store *memory.Store, capacity int) *model.Table {
	t.Helper()
	table := &model.Table{Number: fmt.Sprintf("T%d", capacity), Capacity: capacity, Status: model.TableStatusActive}
	require.NoError(t, store.Tables().Create(context.Background(), table))
	return table
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Staff-Name", "maria")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func createBody(tableID int64, start time.Time, partySize int) gin.H {
	return gin.H{
		"table_id":     tableID,
		"start_time":   start.Format(time.RFC3339),
		"party_size":   partySize,
		"contact_name": "Jordan Lee",
	}
}

func TestCreateReservationEndpoint(t *testing.T) {
	evening := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	t.Run("created", func(t *testing.T) {
		router, store := newTestRouter(t)
		table := seedActiveTable(t, store, 4)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/reservations", createBody(table.ID, evening, 4))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got model.Reservation
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, model.ReservationStatusPending, got.Status)
		assert.Equal(t, "maria", got.CreatedBy)
	})

	t.Run("overlap answers 409 with conflicting ids", func(t *testing.T) {
		router, store := newTestRouter(t)
		table := seedActiveTable(t, store, 4)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/reservations", createBody(table.ID, evening, 2))
		require.Equal(t, http.StatusCreated, rec.Code)
		var first model.Reservation
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

		rec = doJSON(t, router, http.MethodPost, "/api/v1/reservations", createBody(table.ID, evening.Add(time.Hour), 2))
		require.Equal(t, http.StatusConflict, rec.Code)

		var payload struct {
			Error          string  `json:"error"`
			ConflictingIDs []int64 `json:"conflicting_ids"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, []int64{first.ID}, payload.ConflictingIDs)
	})

	t.Run("unknown table answers 404", func(t *testing.T) {
		router, _ := newTestRouter(t)
		rec := doJSON(t, router, http.MethodPost, "/api/v1/reservations", createBody(42, evening, 2))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("oversized party answers 422", func(t *testing.T) {
		router, store := newTestRouter(t)
		table := seedActiveTable(t, store, 2)
		rec := doJSON(t, router, http.MethodPost, "/api/v1/reservations", createBody(table.ID, evening, 6))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("missing contact name answers 400", func(t *testing.T) {
		router, store := newTestRouter(t)
		table := seedActiveTable(t, store, 4)
		body := createBody(table.ID, evening, 2)
		delete(body, "contact_name")
		rec := doJSON(t, router, http.MethodPost, "/api/v1/reservations", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReservationLifecycleEndpoints(t *testing.T) {
	evening := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	router, store := newTestRouter(t)
	table := seedActiveTable(t, store, 4)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/reservations", createBody(table.ID, evening, 2))
	require.Equal(t, http.StatusCreated, rec.Code)
	var reservation model.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reservation))
	base := fmt.Sprintf("/api/v1/reservations/%d", reservation.ID)

	rec = doJSON(t, router, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, base+"/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var confirmed model.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &confirmed))
	assert.Equal(t, model.ReservationStatusConfirmed, confirmed.Status)

	newStart := evening.Add(time.Hour)
	rec = doJSON(t, router, http.MethodPatch, base, gin.H{"start_time": newStart.Format(time.RFC3339)})
	require.Equal(t, http.StatusOK, rec.Code)
	var moved model.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &moved))
	assert.True(t, moved.StartTime.Equal(newStart))

	rec = doJSON(t, router, http.MethodPost, base+"/cancel", gin.H{"reason": "guest called"})
	require.Equal(t, http.StatusOK, rec.Code)
	var cancelled model.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cancelled))
	assert.Equal(t, model.ReservationStatusCancelled, cancelled.Status)
	assert.Equal(t, "maria", cancelled.CancelledBy)

	// Cancelled is terminal.
	rec = doJSON(t, router, http.MethodPost, base+"/cancel", gin.H{"reason": "again"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = doJSON(t, router, http.MethodPost, base+"/confirm", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	evening := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	router, store := newTestRouter(t)
	small := seedActiveTable(t, store, 2)
	large := seedActiveTable(t, store, 6)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/reservations", createBody(small.ID, evening, 2))
	require.Equal(t, http.StatusCreated, rec.Code)

	url := fmt.Sprintf("/api/v1/tables/availability?start=%s&party_size=2", evening.Format(time.RFC3339))
	rec = doJSON(t, router, http.MethodGet, url, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tables []*model.Table
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tables))
	require.Len(t, tables, 1)
	assert.Equal(t, large.ID, tables[0].ID)

	t.Run("empty answer is a 200", func(t *testing.T) {
		url := fmt.Sprintf("/api/v1/tables/availability?start=%s&party_size=10", evening.Format(time.RFC3339))
		rec := doJSON(t, router, http.MethodGet, url, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("malformed start is a 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/tables/availability?start=tonight&party_size=2", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListForTableEndpoint(t *testing.T) {
	evening := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	router, store := newTestRouter(t)
	table := seedActiveTable(t, store, 4)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/reservations", createBody(table.ID, evening, 2))
	require.Equal(t, http.StatusCreated, rec.Code)

	url := fmt.Sprintf("/api/v1/tables/%d/reservations?day=2026-03-14", table.ID)
	rec = doJSON(t, router, http.MethodGet, url, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var reservations []*model.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reservations))
	assert.Len(t, reservations, 1)

	t.Run("other day is empty", func(t *testing.T) {
		url := fmt.Sprintf("/api/v1/tables/%d/reservations?day=2026-03-15", table.ID)
		rec := doJSON(t, router, http.MethodGet, url, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("unknown table is a 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/tables/999/reservations?day=2026-03-14", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTableEndpoints(t *testing.T) {
	router, store := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/tables", gin.H{"number": "12", "capacity": 4})
	require.Equal(t, http.StatusCreated, rec.Code)
	var table model.Table
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &table))
	assert.Equal(t, model.TableStatusActive, table.Status)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/tables", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/tables/%d/status", table.ID), gin.H{"status": "inactive"})
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := store.Tables().GetByID(context.Background(), table.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TableStatusInactive, got.Status)

	rec = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/tables/%d/status", table.ID), gin.H{"status": "broken"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
