package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appfinance "github.com/sitefund/backend/internal/application/finance"
	"github.com/sitefund/backend/internal/interfaces/http/middleware"
)

// ExpenseHandler serves expense recording and invoice attachments
type ExpenseHandler struct {
	BaseHandler
	expenseService *appfinance.ExpenseService
}

// NewExpenseHandler creates an ExpenseHandler
func NewExpenseHandler(expenseService *appfinance.ExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		BaseHandler:    NewBaseHandler(logger),
		expenseService: expenseService,
	}
}

// RegisterRoutes registers expense routes, all admin-only
func (h *ExpenseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	expenses := rg.Group("/expenses", middleware.RequireAdmin())
	{
		expenses.POST("", h.Create)
		expenses.GET("", h.List)
		expenses.POST("/:id/invoice", h.AttachInvoice)
		expenses.GET("/:id/invoice-url", h.InvoiceURL)
	}
}

// Create records an expense and its ledger entry
func (h *ExpenseHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req appfinance.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	req.CreatedBy = userID

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// List returns expenses for the tenant with optional date filters
func (h *ExpenseHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter appfinance.ExpenseListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	expenses, total, err := h.expenseService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, expenses, newMeta(filter.Page, filter.PageSize, total))
}

// AttachInvoice stores an invoice document against an expense
func (h *ExpenseHandler) AttachInvoice(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	data, contentType, err := readUpload(c, "file")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	expense, err := h.expenseService.AttachInvoice(c.Request.Context(), tenantID, id, data, contentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// InvoiceURL returns a short-lived download URL for an expense's invoice
func (h *ExpenseHandler) InvoiceURL(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	url, err := h.expenseService.InvoiceDownloadURL(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"url": url})
}
