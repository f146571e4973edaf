package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dkoshelev/restobook/internal/model"
	"github.com/dkoshelev/restobook/internal/service"
)

// actorHeader names the staff member performing the operation. Auth belongs
// to the surrounding system; the core just records the name.
const actorHeader = "X-Staff-Name"

type ReservationHandler struct {
	bookings        *service.BookingService
	defaultDuration time.Duration
}

func NewReservationHandler(bookings *service.BookingService, defaultDuration time.Duration) *ReservationHandler {
	return &ReservationHandler{
		bookings:        bookings,
		defaultDuration: defaultDuration,
	}
}

type createReservationRequest struct {
	TableID         int64     `json:"table_id" binding:"required"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty,min=1"`
	PartySize       int       `json:"party_size" binding:"required,min=1"`
	ContactName     string    `json:"contact_name" binding:"required"`
	ContactPhone    string    `json:"contact_phone"`
	ContactEmail    string    `json:"contact_email" binding:"omitempty,email"`
	Notes           string    `json:"notes"`
	Confirmed       bool      `json:"confirmed"`
}

func (h *ReservationHandler) Create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	duration := h.defaultDuration
	if req.DurationMinutes > 0 {
		duration = time.Duration(req.DurationMinutes) * time.Minute
	}

	reservation, err := h.bookings.Create(c.Request.Context(), &service.CreateReservationRequest{
		TableID:      req.TableID,
		StartTime:    req.StartTime,
		Duration:     duration,
		PartySize:    req.PartySize,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		Notes:        req.Notes,
		Confirmed:    req.Confirmed,
		Actor:        actor(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reservation)
}

func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := reservationID(c)
	if !ok {
		return
	}

	reservation, err := h.bookings.GetReservation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

type rescheduleReservationRequest struct {
	TableID         *int64     `json:"table_id"`
	StartTime       *time.Time `json:"start_time"`
	DurationMinutes *int       `json:"duration_minutes"`
	PartySize       *int       `json:"party_size"`
}

func (h *ReservationHandler) Reschedule(c *gin.Context) {
	id, ok := reservationID(c)
	if !ok {
		return
	}

	var req rescheduleReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	serviceReq := &service.RescheduleReservationRequest{
		ReservationID: id,
		TableID:       req.TableID,
		StartTime:     req.StartTime,
		PartySize:     req.PartySize,
		Actor:         actor(c),
	}
	if req.DurationMinutes != nil {
		duration := time.Duration(*req.DurationMinutes) * time.Minute
		serviceReq.Duration = &duration
	}

	reservation, err := h.bookings.Reschedule(c.Request.Context(), serviceReq)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

func (h *ReservationHandler) Confirm(c *gin.Context) {
	id, ok := reservationID(c)
	if !ok {
		return
	}

	reservation, err := h.bookings.Confirm(c.Request.Context(), id, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

type cancelReservationRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, ok := reservationID(c)
	if !ok {
		return
	}

	var req cancelReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.bookings.Cancel(c.Request.Context(), id, actor(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// ListForTable answers GET /tables/:id/reservations?day=2006-01-02, default
// today (UTC). Cancelled reservations are included for the staff view.
func (h *ReservationHandler) ListForTable(c *gin.Context) {
	tableID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid table id"})
		return
	}

	day := time.Now().UTC()
	if raw := c.Query("day"); raw != "" {
		day, err = time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be formatted as 2006-01-02"})
			return
		}
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	reservations, err := h.bookings.ListForTable(c.Request.Context(), tableID, from, from.Add(24*time.Hour))
	if err != nil {
		respondError(c, err)
		return
	}
	if reservations == nil {
		reservations = []*model.Reservation{}
	}

	c.JSON(http.StatusOK, reservations)
}

func reservationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return 0, false
	}
	return id, true
}

func actor(c *gin.Context) string {
	if name := c.GetHeader(actorHeader); name != "" {
		return name
	}
	return "staff"
}
