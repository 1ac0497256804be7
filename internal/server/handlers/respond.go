package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAborted):
		return http.StatusPreconditionRequired
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}

	body := gin.H{"error": err.Error()}
	if status == http.StatusPreconditionRequired {
		body["hint"] = "repeat the request with ?confirm=true"
	}
	c.JSON(status, body)
}

// respondMutation writes the result of a mutation. A persistence warning still
// yields status, with the warning attached to the body.
func respondMutation(c *gin.Context, logger *zap.Logger, status int, body gin.H, err error) {
	if models.Failed(err) {
		respondError(c, logger, err)
		return
	}
	if err != nil {
		logger.Warn("mutation applied without persisting", zap.String("path", c.FullPath()), zap.Error(err))
		body["warning"] = err.Error()
	}
	c.JSON(status, body)
}

// decisionFrom reads the confirm query parameter. Absent means the caller has
// not been asked yet.
func decisionFrom(c *gin.Context) models.Decision {
	raw, ok := c.GetQuery("confirm")
	if !ok {
		return models.DecisionPending
	}
	confirmed, err := strconv.ParseBool(raw)
	if err != nil {
		return models.DecisionDeclined
	}
	return models.DecisionFromBool(confirmed)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return 0, false
	}
	return id, true
}
