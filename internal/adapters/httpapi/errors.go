package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skufu/lipidcare/internal/domain"
)

type errorBody struct {
	Success bool           `json:"success"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// writeError maps the domain error taxonomy onto a status code and body.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		verr     *domain.ValidationError
		xerr     *domain.ExtractionError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorBody{
			Code:    "validation_failed",
			Message: verr.Error(),
			Details: map[string]any{"field": verr.Field, "reason": verr.Reason},
		})
	case errors.As(err, &xerr):
		details := map[string]any{"reason": xerr.Reason, "raw_text": xerr.RawText}
		if xerr.Partial != nil {
			details["partial"] = xerr.Partial
		}
		c.JSON(http.StatusUnprocessableEntity, errorBody{
			Code:    "extraction_failed",
			Message: xerr.Error(),
			Details: details,
		})
	case errors.Is(err, domain.ErrDataAbsent):
		c.JSON(http.StatusNotFound, errorBody{Code: "data_absent", Message: err.Error()})
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, errorBody{Code: "payload_too_large", Message: "request body too large"})
	case errors.Is(err, domain.ErrUpstream):
		logger.Warn("upstream failure", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadGateway, errorBody{Code: "upstream_unavailable", Message: err.Error()})
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorBody{Code: "internal", Message: "internal server error"})
	}
}

func invalidPayload(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, errorBody{Code: "payload_too_large", Message: "request body too large"})
		return
	}
	c.JSON(http.StatusBadRequest, errorBody{Code: "invalid_payload", Message: err.Error()})
}
