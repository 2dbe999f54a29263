package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gocomet/fleet-rides/internal/api/dto"
	apperrors "github.com/gocomet/fleet-rides/pkg/errors"
	"github.com/gocomet/fleet-rides/pkg/logger"
)

// respondError maps an error onto the uniform error body. AppErrors carry
// their own HTTP status; anything else is an internal error.
func (h *Handlers) respondError(c *gin.Context, err error) {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		if appErr.Status >= http.StatusInternalServerError {
			h.Logger.Error("Request failed",
				logger.String("path", c.FullPath()),
				logger.String("code", appErr.Code),
				logger.Err(err))
		}
		c.JSON(appErr.Status, dto.ErrorResponse{Code: appErr.Code, Message: appErr.Message})
		return
	}
	h.Logger.Error("Unhandled error",
		logger.String("path", c.FullPath()),
		logger.Err(err))
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Code:    apperrors.CodeInternal,
		Message: "Internal server error",
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    apperrors.CodeValidation,
		Message: err.Error(),
	})
}
