package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appfinance "github.com/sitefund/backend/internal/application/finance"
	"github.com/sitefund/backend/internal/domain/shared"
	"github.com/sitefund/backend/internal/interfaces/http/dto"
)

// RecurringRuleHandler serves recurring due rule management
type RecurringRuleHandler struct {
	BaseHandler
	recurringService *appfinance.RecurringService
}

// NewRecurringRuleHandler creates a RecurringRuleHandler
func NewRecurringRuleHandler(recurringService *appfinance.RecurringService, logger *zap.Logger) *RecurringRuleHandler {
	return &RecurringRuleHandler{
		BaseHandler:      NewBaseHandler(logger),
		recurringService: recurringService,
	}
}

// RegisterRoutes registers recurring rule routes, all admin-only
func (h *RecurringRuleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rules := rg.Group("/recurring-rules")
	{
		rules.GET("", h.List)
		rules.POST("", h.Create)
		rules.PUT("/:id", h.Update)
		rules.POST("/:id/toggle", h.Toggle)
	}
}

// List returns the tenant's recurring rules
func (h *RecurringRuleHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	req = req.DefaultListRequest()

	rules, err := h.recurringService.List(c.Request.Context(), tenantID, shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rules)
}

// Create creates a recurring rule
func (h *RecurringRuleHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req appfinance.CreateRecurringRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	req.CreatedBy = userID

	rule, err := h.recurringService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rule)
}

// Update replaces a recurring rule's description, amount and day of month
func (h *RecurringRuleHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req appfinance.UpdateRecurringRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rule, err := h.recurringService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rule)
}

// Toggle flips a rule between active and inactive
func (h *RecurringRuleHandler) Toggle(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	rule, err := h.recurringService.Toggle(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rule)
}
