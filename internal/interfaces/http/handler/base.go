package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitefund/backend/internal/domain/shared"
	"github.com/sitefund/backend/internal/interfaces/http/dto"
	"github.com/sitefund/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides shared response and error helpers for all handlers
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a BaseHandler
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseHandler{logger: logger}
}

// Success writes a 200 response with the given payload
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta writes a 200 response with pagination metadata
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, meta dto.Meta) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, meta))
}

// Created writes a 201 response with the given payload
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent writes a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 response with the given message
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.writeError(c, dto.ErrCodeInvalidInput, message)
}

// Forbidden writes a 403 response with the given message
func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.writeError(c, dto.ErrCodeForbidden, message)
}

// HandleError maps an error onto the API error contract. Domain errors keep
// their code; anything else is a 500 with the detail kept out of the body.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		if code == dto.ErrCodeInternal && domainErr.Code != dto.ErrCodeInternal {
			h.logger.Error("unmapped domain error",
				zap.String("code", domainErr.Code),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
		}
		h.writeError(c, code, domainErr.Message)
		return
	}

	h.logger.Error("request failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		zap.Error(err))
	h.writeError(c, dto.ErrCodeInternal, "An internal error occurred")
}

func (h *BaseHandler) writeError(c *gin.Context, code, message string) {
	status := dto.GetHTTPStatus(code)
	requestID := c.GetString(middleware.RequestIDKey)
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// tenantID returns the authenticated tenant or aborts with 401
func (h *BaseHandler) tenantID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetTenantID(c)
	if !ok {
		h.writeError(c, dto.ErrCodeUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}

// userID returns the authenticated user or aborts with 401
func (h *BaseHandler) userID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		h.writeError(c, dto.ErrCodeUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses the :id path parameter as a UUID
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}
