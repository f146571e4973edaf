package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dkoshelev/restobook/internal/model"
	"github.com/dkoshelev/restobook/internal/service"
)

type TableHandler struct {
	tables          *service.TableService
	availability    *service.AvailabilityFinder
	defaultDuration time.Duration
}

func NewTableHandler(tables *service.TableService, availability *service.AvailabilityFinder, defaultDuration time.Duration) *TableHandler {
	return &TableHandler{
		tables:          tables,
		availability:    availability,
		defaultDuration: defaultDuration,
	}
}

type createTableRequest struct {
	Number   string `json:"number" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
}

func (h *TableHandler) Create(c *gin.Context) {
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	table, err := h.tables.Create(c.Request.Context(), req.Number, req.Capacity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, table)
}

func (h *TableHandler) List(c *gin.Context) {
	tables, err := h.tables.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tables)
}

type updateTableStatusRequest struct {
	Status model.TableStatus `json:"status" binding:"required"`
}

func (h *TableHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid table id"})
		return
	}

	var req updateTableStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	table, err := h.tables.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, table)
}

// FindAvailable answers GET /tables/availability?start=...&party_size=...
// An empty list is a normal answer, not an error.
func (h *TableHandler) FindAvailable(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be an RFC3339 timestamp"})
		return
	}

	partySize, err := strconv.Atoi(c.Query("party_size"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "party_size must be an integer"})
		return
	}

	duration := h.defaultDuration
	if raw := c.Query("duration_minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "duration_minutes must be a positive integer"})
			return
		}
		duration = time.Duration(minutes) * time.Minute
	}

	tables, err := h.availability.FindAvailableTables(c.Request.Context(), model.NewWindow(start, duration), partySize)
	if err != nil {
		respondError(c, err)
		return
	}
	if tables == nil {
		tables = []*model.Table{}
	}

	c.JSON(http.StatusOK, tables)
}
