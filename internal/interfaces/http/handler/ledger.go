package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appfinance "github.com/sitefund/backend/internal/application/finance"
	"github.com/sitefund/backend/internal/interfaces/http/middleware"
)

// LedgerHandler serves the append-only fund ledger
type LedgerHandler struct {
	BaseHandler
	ledgerService *appfinance.LedgerService
}

// NewLedgerHandler creates a LedgerHandler
func NewLedgerHandler(ledgerService *appfinance.LedgerService, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler:   NewBaseHandler(logger),
		ledgerService: ledgerService,
	}
}

// RegisterRoutes registers ledger routes on the given group. Reads are open
// to every authenticated user of the tenant; residents get the same view of
// the fund the board has. Manual postings stay admin-only.
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ledger := rg.Group("/ledger")
	{
		ledger.GET("", h.List)
		ledger.GET("/balance", h.Balance)
		ledger.GET("/report", h.Report)
		ledger.POST("/entries", middleware.RequireAdmin(), h.CreateManualEntry)
	}
}

// List returns ledger entries for the authenticated tenant
func (h *LedgerHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter appfinance.LedgerListFilter
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

	entries, total, err := h.ledgerService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, newMeta(filter.Page, filter.PageSize, total))
}

// Balance returns the current fund balance
func (h *LedgerHandler) Balance(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	balance, err := h.ledgerService.Balance(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"balance": balance})
}

type reportQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

// Report returns income, expense and balance figures for a date range.
// Dates are inclusive-from, exclusive-to, in YYYY-MM-DD form.
func (h *LedgerHandler) Report(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var q reportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Both from and to dates are required")
		return
	}
	from, err := time.Parse("2006-01-02", q.From)
	if err != nil {
		h.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", q.To)
	if err != nil {
		h.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
		return
	}
	if !to.After(from) {
		h.BadRequest(c, "to must be after from")
		return
	}

	report, err := h.ledgerService.Report(c.Request.Context(), tenantID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// CreateManualEntry posts a manual income or expense correction entry
func (h *LedgerHandler) CreateManualEntry(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req appfinance.CreateManualEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	req.CreatedBy = &userID

	entry, err := h.ledgerService.CreateManualEntry(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}
