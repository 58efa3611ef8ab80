package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/internal/infrastructure/logger"
	"github.com/greenshop/backend/internal/interfaces/http/dto"
	"github.com/greenshop/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler writes the response envelope for every handler
type BaseHandler struct{}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) SuccessList(c *gin.Context, data any, total int64, limit int) {
	c.JSON(http.StatusOK, dto.NewListResponse(data, total, limit))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.fail(c, dto.ErrCodeUnauthorized, message)
}

// BindError answers a failed ShouldBind* with per-field details
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, middleware.FormatValidationErrors(err, middleware.GetRequestID(c)))
}

// HandleError answers a DomainError with its code. Other errors are
// logged with the request and hidden behind ERR_INTERNAL.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var de *shared.DomainError
	switch {
	case err == nil:
	case errors.As(err, &de):
		h.fail(c, de.Code, de.Message)
	default:
		_ = c.Error(err)
		logger.GetGinLogger(c).Error("unhandled error", zap.Error(err))
		h.fail(c, dto.ErrCodeInternal, "An unexpected error occurred")
	}
}

// fail normalizes code and derives the status from it
func (h *BaseHandler) fail(c *gin.Context, code, message string) {
	code = dto.NormalizeErrorCode(code)
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

func (h *BaseHandler) parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.fail(c, dto.ErrCodeInvalidInput, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
