package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkoshelev/restobook/internal/model"
)

// respondError maps each error kind of the reservation taxonomy to a stable
// HTTP status so callers can branch without parsing messages.
func respondError(c *gin.Context, err error) {
	var conflict *model.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"error":           conflict.Error(),
			"conflicting_ids": conflict.ConflictingIDs,
		})
		return
	}

	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var (
		notFound   *model.NotFoundError
		capacity   *model.CapacityError
		state      *model.StateError
		validation *model.ValidationError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &capacity):
		return http.StatusUnprocessableEntity
	case errors.As(err, &state):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrTableInactive):
		return http.StatusUnprocessableEntity
	case errors.As(err, &validation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
