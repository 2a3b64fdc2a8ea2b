package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appfinance "github.com/sitefund/backend/internal/application/finance"
	"github.com/sitefund/backend/internal/interfaces/http/middleware"
)

// DuesHandler serves due assignment, resident self-service, receipt upload
// and the manual review queue
type DuesHandler struct {
	BaseHandler
	duesService    *appfinance.DuesService
	reconciliation *appfinance.ReconciliationService
}

// NewDuesHandler creates a DuesHandler
func NewDuesHandler(duesService *appfinance.DuesService, reconciliation *appfinance.ReconciliationService, logger *zap.Logger) *DuesHandler {
	return &DuesHandler{
		BaseHandler:    NewBaseHandler(logger),
		duesService:    duesService,
		reconciliation: reconciliation,
	}
}

// RegisterRoutes registers due routes. Assignment, approval, toggling and
// the review queue are admin-only; /mine and receipt upload serve the
// authenticated resident.
func (h *DuesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dues := rg.Group("/dues")
	{
		dues.GET("/mine", h.ListMine)
		dues.GET("/mine/summary", h.MySummary)
		dues.POST("/:id/receipt", h.UploadReceipt)

		admin := dues.Group("", middleware.RequireAdmin())
		{
			admin.POST("", h.Assign)
			admin.POST("/assign-all", h.AssignAll)
			admin.GET("", h.List)
			admin.GET("/review", h.ReviewQueue)
			admin.GET("/:id", h.Get)
			admin.GET("/:id/receipt-url", h.ReceiptURL)
			admin.POST("/:id/approve", h.Approve)
			admin.POST("/:id/toggle", h.Toggle)
		}
	}
}

// Assign assigns a due to a single resident
func (h *DuesHandler) Assign(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req appfinance.AssignDueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	due, err := h.duesService.AssignDue(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, due)
}

// AssignAll assigns the same due to every active resident
func (h *DuesHandler) AssignAll(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req appfinance.AssignAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.duesService.AssignToAllResidents(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List returns dues for the tenant with optional status and date filters
func (h *DuesHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter appfinance.DueListFilter
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

	dues, total, err := h.duesService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dues, newMeta(filter.Page, filter.PageSize, total))
}

// Get returns one due by ID
func (h *DuesHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	due, err := h.duesService.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, due)
}

// ListMine returns the authenticated resident's own dues
func (h *DuesHandler) ListMine(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	residentID, ok := h.userID(c)
	if !ok {
		return
	}

	var filter appfinance.DueListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	dues, err := h.duesService.ListForResident(c.Request.Context(), tenantID, residentID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dues)
}

// MySummary returns the authenticated resident's current-month summary
func (h *DuesHandler) MySummary(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	residentID, ok := h.userID(c)
	if !ok {
		return
	}

	summary, err := h.duesService.MonthlySummary(c.Request.Context(), tenantID, residentID, time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ReviewQueue returns dues waiting for manual receipt review, oldest
// uploads last
func (h *DuesHandler) ReviewQueue(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter appfinance.DueListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	dues, err := h.duesService.ReviewQueue(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dues)
}

// UploadReceipt accepts a payment receipt for the caller's own due and runs
// reconciliation on it
func (h *DuesHandler) UploadReceipt(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	residentID, ok := h.userID(c)
	if !ok {
		return
	}
	dueID, ok := h.pathID(c)
	if !ok {
		return
	}

	data, contentType, err := readUpload(c, "file")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.reconciliation.ProcessReceipt(c.Request.Context(), tenantID, dueID, residentID, data, contentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ReceiptURL returns a short-lived download URL for a due's stored receipt
func (h *DuesHandler) ReceiptURL(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	url, err := h.duesService.ReceiptDownloadURL(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"url": url})
}

// Approve approves a pending receipt and marks the due paid
func (h *DuesHandler) Approve(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	approvedBy, ok := h.userID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	due, err := h.duesService.Approve(c.Request.Context(), tenantID, id, approvedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, due)
}

// Toggle flips a due between paid and unpaid, posting the matching ledger
// entry or its reversal
func (h *DuesHandler) Toggle(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	actorID, ok := h.userID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	due, err := h.duesService.Toggle(c.Request.Context(), tenantID, id, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, due)
}
