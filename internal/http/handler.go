package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dkravt/eventops-payments/internal/http/middleware"
	"github.com/dkravt/eventops-payments/internal/locale"
	"github.com/dkravt/eventops-payments/internal/model"
	"github.com/dkravt/eventops-payments/internal/service"
)

type Handler struct {
	estimates  *service.EstimateService
	reports    *service.WorkReportService
	allocation *service.AllocationService
	ledger     *service.LedgerService
	reporting  *service.ReportService
	personnel  *service.PersonnelService
	log        zerolog.Logger
}

func NewHandler(
	estimates *service.EstimateService,
	reports *service.WorkReportService,
	allocation *service.AllocationService,
	ledger *service.LedgerService,
	reporting *service.ReportService,
	personnel *service.PersonnelService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		estimates:  estimates,
		reports:    reports,
		allocation: allocation,
		ledger:     ledger,
		reporting:  reporting,
		personnel:  personnel,
		log:        log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/estimates", h.createEstimate)
	protected.GET("/estimates/:id", h.getEstimate)
	protected.POST("/estimates/:id/status", h.updateEstimateStatus)
	protected.POST("/estimates/:id/activate", h.activateEstimate)
	protected.GET("/estimates/:id/pdf", h.exportEstimatePDF)

	protected.POST("/work-reports", h.createWorkReport)
	protected.POST("/work-reports/:id/status", h.advanceWorkReport)
	protected.POST("/work-reports/:id/revert", h.revertWorkReport)
	protected.PUT("/work-reports/:id/distributions", h.replaceDistributions)
	protected.GET("/work-reports/:id/distributions", h.listDistributions)

	protected.POST("/payments", h.recordPayment)
	protected.GET("/payments", h.listPayments)
	protected.POST("/payments/:id/settle", h.settlePayment)
	protected.DELETE("/payments/:id", h.deletePayment)
	protected.POST("/payments/reclassify-overdue", h.reclassifyOverdue)
	protected.GET("/payments/totals", h.paymentTotals)

	protected.GET("/reports/payments/by-month", h.paymentsByMonth)
	protected.GET("/reports/payments/export", h.exportPayments)

	protected.POST("/personnel", h.createPersonnel)
	protected.GET("/personnel", h.listPersonnel)
	protected.PUT("/personnel/:id", h.updatePersonnel)
	protected.DELETE("/personnel/:id", h.deletePersonnel)
	protected.PUT("/budget-items/:id/personnel", h.assignBudgetItemPersonnel)
	protected.GET("/budget-items/:id/personnel", h.listBudgetItemPersonnel)
}

type estimateItemRequest struct {
	ItemType    string  `json:"item_type" binding:"required"`
	EquipmentID *string `json:"equipment_id"`
	WorkType    string  `json:"work_type"`
	Quantity    int     `json:"quantity" binding:"required"`
	// Days defaults to 1 when omitted; an explicit value below 1 is rejected.
	Days       *int             `json:"days"`
	PriceUSD   decimal.Decimal  `json:"price_usd"`
	DistanceKM *decimal.Decimal `json:"distance_km"`
}

type createEstimateRequest struct {
	EstimateNumber  string                `json:"estimate_number" binding:"required"`
	Version         int                   `json:"version"`
	EventID         *string               `json:"event_id"`
	CalculationType string                `json:"calculation_type" binding:"required"`
	USDRate         *decimal.Decimal      `json:"usd_rate"`
	Items           []estimateItemRequest `json:"items"`
}

func (h *Handler) createEstimate(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eventID, err := parseOptionalUUID(req.EventID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_id"})
		return
	}

	input := service.CreateEstimateInput{
		EstimateNumber:  req.EstimateNumber,
		Version:         req.Version,
		EventID:         eventID,
		CalculationType: model.CalculationType(req.CalculationType),
		USDRate:         req.USDRate,
		Principal:       principal,
	}
	for _, item := range req.Items {
		equipmentID, err := parseOptionalUUID(item.EquipmentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid equipment_id"})
			return
		}
		days := 1
		if item.Days != nil {
			days = *item.Days
		}
		input.Items = append(input.Items, service.EstimateItemInput{
			ItemType:    model.EstimateItemType(item.ItemType),
			EquipmentID: equipmentID,
			WorkType:    item.WorkType,
			Quantity:    item.Quantity,
			Days:        days,
			PriceUSD:    item.PriceUSD,
			DistanceKM:  item.DistanceKM,
		})
	}

	estimate, err := h.estimates.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, estimateResponseFrom(estimate))
}

func (h *Handler) getEstimate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	estimate, err := h.estimates.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimateResponseFrom(estimate))
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) updateEstimateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	estimate, err := h.estimates.UpdateStatus(c.Request.Context(), id, model.EstimateStatus(req.Status))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimateResponseFrom(estimate))
}

func (h *Handler) activateEstimate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.estimates.Activate(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) exportEstimatePDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	result, err := h.estimates.ExportPDF(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

type createWorkReportRequest struct {
	EventID    string  `json:"event_id" binding:"required"`
	EstimateID *string `json:"estimate_id"`
	ReportDate string  `json:"report_date" binding:"required"`
	Notes      string  `json:"notes"`
}

func (h *Handler) createWorkReport(c *gin.Context) {
	var req createWorkReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eventID, err := uuid.Parse(strings.TrimSpace(req.EventID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_id"})
		return
	}
	estimateID, err := parseOptionalUUID(req.EstimateID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid estimate_id"})
		return
	}
	reportDate, err := parseDate(req.ReportDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report_date"})
		return
	}

	report, err := h.reports.Create(c.Request.Context(), service.CreateWorkReportInput{
		EventID:    eventID,
		EstimateID: estimateID,
		ReportDate: reportDate,
		Notes:      req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, workReportResponseFrom(report))
}

func (h *Handler) advanceWorkReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := h.reports.Advance(c.Request.Context(), id, model.WorkReportStatus(req.Status))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, workReportResponseFrom(report))
}

func (h *Handler) revertWorkReport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := h.reports.Revert(c.Request.Context(), id, model.WorkReportStatus(req.Status), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, workReportResponseFrom(report))
}

type shareRequest struct {
	StaffID           string          `json:"staff_id" binding:"required"`
	EstimateItemID    *string         `json:"estimate_item_id"`
	SharePercentage   decimal.Decimal `json:"share_percentage"`
	PaymentPercentage decimal.Decimal `json:"payment_percentage"`
	Notes             string          `json:"notes"`
}

type distributeRequest struct {
	EstimateItemID *string          `json:"estimate_item_id"`
	BaseAmount     *decimal.Decimal `json:"base_amount"`
	Shares         []shareRequest   `json:"shares"`
}

func (h *Handler) replaceDistributions(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req distributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var base service.BaseValueProvider
	switch {
	case req.EstimateItemID != nil:
		itemID, err := uuid.Parse(strings.TrimSpace(*req.EstimateItemID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid estimate_item_id"})
			return
		}
		base = service.EstimateItemBase{Source: h.estimates, ItemID: itemID}
	case req.BaseAmount != nil:
		base = service.ManualBase{Amount: *req.BaseAmount}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "estimate_item_id or base_amount is required"})
		return
	}

	shares := make([]service.ShareInput, 0, len(req.Shares))
	for _, share := range req.Shares {
		staffID, err := uuid.Parse(strings.TrimSpace(share.StaffID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid staff_id"})
			return
		}
		itemID, err := parseOptionalUUID(share.EstimateItemID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid estimate_item_id"})
			return
		}
		shares = append(shares, service.ShareInput{
			StaffID:           staffID,
			EstimateItemID:    itemID,
			SharePercentage:   share.SharePercentage,
			PaymentPercentage: share.PaymentPercentage,
			Notes:             share.Notes,
		})
	}

	rows, err := h.allocation.Distribute(c.Request.Context(), reportID, base, shares)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, distributionsResponseFrom(rows))
}

func (h *Handler) listDistributions(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	rows, err := h.allocation.Distributions(c.Request.Context(), reportID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, distributionsResponseFrom(rows))
}

type recordPaymentRequest struct {
	PersonnelID  string          `json:"personnel_id" binding:"required"`
	EventID      *string         `json:"event_id"`
	BudgetItemID *string         `json:"budget_item_id"`
	WorkItemID   *string         `json:"work_item_id"`
	WorkReportID *string         `json:"work_report_id"`
	Month        string          `json:"month" binding:"required"`
	Amount       decimal.Decimal `json:"amount"`
	Notes        string          `json:"notes"`
}

func (h *Handler) recordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	personnelID, err := uuid.Parse(strings.TrimSpace(req.PersonnelID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid personnel_id"})
		return
	}
	month, err := parseMonth(req.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	eventID, err := parseOptionalUUID(req.EventID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_id"})
		return
	}
	budgetItemID, err := parseOptionalUUID(req.BudgetItemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid budget_item_id"})
		return
	}
	workItemID, err := parseOptionalUUID(req.WorkItemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid work_item_id"})
		return
	}
	workReportID, err := parseOptionalUUID(req.WorkReportID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid work_report_id"})
		return
	}

	payment, err := h.ledger.RecordPayment(c.Request.Context(), service.RecordPaymentInput{
		PersonnelID: personnelID,
		Month:       month,
		Amount:      req.Amount,
		Refs: model.SourceRefs{
			EventID:      eventID,
			BudgetItemID: budgetItemID,
			WorkItemID:   workItemID,
			WorkReportID: workReportID,
		},
		Notes: req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, paymentResponseFrom(*payment))
}

func (h *Handler) listPayments(c *gin.Context) {
	month, err := parseMonth(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	personnelID, err := parseOptionalUUIDQuery(c.Query("personnel_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid personnel_id"})
		return
	}

	payments, err := h.ledger.Payments(c.Request.Context(), month, personnelID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentResponseFrom(p))
	}
	c.JSON(http.StatusOK, gin.H{"payments": out})
}

type settlePaymentRequest struct {
	PaymentDate string `json:"payment_date" binding:"required"`
}

func (h *Handler) settlePayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req settlePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment_date"})
		return
	}

	payment, err := h.ledger.Settle(c.Request.Context(), id, paymentDate)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentResponseFrom(*payment))
}

func (h *Handler) deletePayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.ledger.DeletePayment(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reclassifyRequest struct {
	AsOf string `json:"as_of"`
}

func (h *Handler) reclassifyOverdue(c *gin.Context) {
	// Body is optional; an absent or malformed body means "now".
	var req reclassifyRequest
	_ = c.ShouldBindJSON(&req)

	asOf := time.Now().UTC()
	if strings.TrimSpace(req.AsOf) != "" {
		parsed, err := parseDate(req.AsOf)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid as_of"})
			return
		}
		asOf = parsed
	}

	count, err := h.ledger.ReclassifyOverdue(c.Request.Context(), asOf)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reclassified": count})
}

func (h *Handler) paymentTotals(c *gin.Context) {
	month, err := parseMonth(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	totals, err := h.ledger.TotalsByStatus(c.Request.Context(), month)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"planned": totals.Planned.StringFixed(2),
		"paid":    totals.Paid.StringFixed(2),
		"overdue": totals.Overdue.StringFixed(2),
		"total":   totals.Total().StringFixed(2),
	})
}

func (h *Handler) paymentsByMonth(c *gin.Context) {
	personnelID, err := parseOptionalUUIDQuery(c.Query("personnel_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid personnel_id"})
		return
	}
	report, err := h.reporting.MonthlyReport(c.Request.Context(), personnelID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, monthlyReportResponseFrom(report))
}

func (h *Handler) exportPayments(c *gin.Context) {
	personnelID, err := parseOptionalUUIDQuery(c.Query("personnel_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid personnel_id"})
		return
	}
	result, err := h.reporting.Export(c.Request.Context(), personnelID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

type personnelRequest struct {
	FullName       string          `json:"full_name" binding:"required"`
	Salary         decimal.Decimal `json:"salary"`
	RatePercentage decimal.Decimal `json:"rate_percentage"`
	DriversLicense string          `json:"drivers_license"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
}

func (h *Handler) createPersonnel(c *gin.Context) {
	var req personnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	person, err := h.personnel.Create(c.Request.Context(), model.Personnel{
		FullName:       req.FullName,
		Salary:         req.Salary,
		RatePercentage: req.RatePercentage,
		DriversLicense: req.DriversLicense,
		Phone:          req.Phone,
		Address:        req.Address,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, personnelResponseFrom(*person))
}

func (h *Handler) listPersonnel(c *gin.Context) {
	people, err := h.personnel.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]personnelResponse, 0, len(people))
	for _, person := range people {
		out = append(out, personnelResponseFrom(person))
	}
	c.JSON(http.StatusOK, gin.H{"personnel": out})
}

func (h *Handler) updatePersonnel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req personnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	person, err := h.personnel.Update(c.Request.Context(), model.Personnel{
		ID:             id,
		FullName:       req.FullName,
		Salary:         req.Salary,
		RatePercentage: req.RatePercentage,
		DriversLicense: req.DriversLicense,
		Phone:          req.Phone,
		Address:        req.Address,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, personnelResponseFrom(*person))
}

func (h *Handler) deletePersonnel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.personnel.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type assignPersonnelRequest struct {
	PersonnelIDs []string `json:"personnel_ids"`
}

func (h *Handler) assignBudgetItemPersonnel(c *gin.Context) {
	budgetItemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req assignPersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ids := make([]uuid.UUID, 0, len(req.PersonnelIDs))
	for _, raw := range req.PersonnelIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid personnel_id"})
			return
		}
		ids = append(ids, id)
	}
	if err := h.personnel.AssignToBudgetItem(c.Request.Context(), budgetItemID, ids); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listBudgetItemPersonnel(c *gin.Context) {
	budgetItemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	people, err := h.personnel.ForBudgetItem(c.Request.Context(), budgetItemID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]personnelResponse, 0, len(people))
	for _, person := range people {
		out = append(out, personnelResponseFrom(person))
	}
	c.JSON(http.StatusOK, gin.H{"personnel": out})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateObligation):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(value))
}

// parseMonth accepts either a month key ("2024-05") or a full date, which is
// normalized to the first day of its month.
func parseMonth(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01", value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	return model.MonthOf(t), nil
}

func parseOptionalUUID(value *string) (*uuid.UUID, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*value))
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseOptionalUUIDQuery(value string) (*uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	return &id, nil
}

type paymentResponse struct {
	ID           string  `json:"id"`
	PersonnelID  string  `json:"personnel_id"`
	EventID      *string `json:"event_id"`
	BudgetItemID *string `json:"budget_item_id"`
	WorkItemID   *string `json:"work_item_id"`
	WorkReportID *string `json:"work_report_id"`
	Month        string  `json:"month"`
	Amount       string  `json:"amount"`
	Status       string  `json:"status"`
	StatusLabel  string  `json:"status_label"`
	PaymentDate  *string `json:"payment_date"`
	Notes        string  `json:"notes"`
}

func paymentResponseFrom(p model.Payment) paymentResponse {
	return paymentResponse{
		ID:           p.ID.String(),
		PersonnelID:  p.PersonnelID.String(),
		EventID:      uuidPtrString(p.EventID),
		BudgetItemID: uuidPtrString(p.BudgetItemID),
		WorkItemID:   uuidPtrString(p.WorkItemID),
		WorkReportID: uuidPtrString(p.WorkReportID),
		Month:        p.Month.Format("2006-01-02"),
		Amount:       p.Amount.StringFixed(2),
		Status:       string(p.Status),
		StatusLabel:  locale.PaymentStatus(p.Status),
		PaymentDate:  datePtrString(p.PaymentDate),
		Notes:        p.Notes,
	}
}

type distributionResponse struct {
	ID                string  `json:"id"`
	WorkReportID      string  `json:"work_report_id"`
	EstimateItemID    *string `json:"estimate_item_id"`
	StaffID           string  `json:"staff_id"`
	SharePercentage   string  `json:"share_percentage"`
	PaymentPercentage string  `json:"payment_percentage"`
	AmountBYN         string  `json:"amount_byn"`
	Notes             string  `json:"notes"`
}

func distributionsResponseFrom(rows []model.WorkDistribution) gin.H {
	out := make([]distributionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, distributionResponse{
			ID:                row.ID.String(),
			WorkReportID:      row.WorkReportID.String(),
			EstimateItemID:    uuidPtrString(row.EstimateItemID),
			StaffID:           row.StaffID.String(),
			SharePercentage:   row.SharePercentage.StringFixed(2),
			PaymentPercentage: row.PaymentPercentage.StringFixed(2),
			AmountBYN:         row.AmountBYN.StringFixed(2),
			Notes:             row.Notes,
		})
	}
	return gin.H{"distributions": out}
}

type estimateItemResponse struct {
	ID         string  `json:"id"`
	ItemType   string  `json:"item_type"`
	WorkType   string  `json:"work_type,omitempty"`
	Quantity   int     `json:"quantity"`
	Days       int     `json:"days"`
	PriceUSD   string  `json:"price_usd"`
	DistanceKM *string `json:"distance_km,omitempty"`
	TotalUSD   string  `json:"total_usd"`
	TotalBYN   string  `json:"total_byn"`
}

type estimateResponse struct {
	ID              string                 `json:"id"`
	EstimateNumber  string                 `json:"estimate_number"`
	Version         int                    `json:"version"`
	IsActive        bool                   `json:"is_active"`
	EventID         *string                `json:"event_id"`
	CalculationType string                 `json:"calculation_type"`
	USDRate         *string                `json:"usd_rate"`
	Status          string                 `json:"status"`
	StatusLabel     string                 `json:"status_label"`
	TotalUSD        string                 `json:"total_usd"`
	TotalBYN        string                 `json:"total_byn"`
	Items           []estimateItemResponse `json:"items"`
}

func estimateResponseFrom(e *model.Estimate) estimateResponse {
	resp := estimateResponse{
		ID:              e.ID.String(),
		EstimateNumber:  e.EstimateNumber,
		Version:         e.Version,
		IsActive:        e.IsActive,
		EventID:         uuidPtrString(e.EventID),
		CalculationType: string(e.CalculationType),
		Status:          string(e.Status),
		StatusLabel:     locale.EstimateStatus(e.Status),
		TotalUSD:        e.TotalUSD.StringFixed(2),
		TotalBYN:        e.TotalBYN.StringFixed(2),
	}
	if e.USDRate != nil {
		rate := e.USDRate.StringFixed(4)
		resp.USDRate = &rate
	}
	for _, item := range e.Items {
		itemResp := estimateItemResponse{
			ID:       item.ID.String(),
			ItemType: string(item.ItemType),
			WorkType: item.WorkType,
			Quantity: item.Quantity,
			Days:     item.Days,
			PriceUSD: item.PriceUSD.StringFixed(2),
			TotalUSD: item.TotalUSD.StringFixed(2),
			TotalBYN: item.TotalBYN.StringFixed(2),
		}
		if item.DistanceKM != nil {
			km := item.DistanceKM.StringFixed(1)
			itemResp.DistanceKM = &km
		}
		resp.Items = append(resp.Items, itemResp)
	}
	return resp
}

type workReportResponse struct {
	ID          string  `json:"id"`
	EventID     string  `json:"event_id"`
	EstimateID  *string `json:"estimate_id"`
	ReportDate  string  `json:"report_date"`
	Status      string  `json:"status"`
	StatusLabel string  `json:"status_label"`
	Notes       string  `json:"notes"`
}

func workReportResponseFrom(r *model.WorkReport) workReportResponse {
	return workReportResponse{
		ID:          r.ID.String(),
		EventID:     r.EventID.String(),
		EstimateID:  uuidPtrString(r.EstimateID),
		ReportDate:  r.ReportDate.Format("2006-01-02"),
		Status:      string(r.Status),
		StatusLabel: locale.WorkReportStatus(r.Status),
		Notes:       r.Notes,
	}
}

type personnelResponse struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	Salary         string `json:"salary"`
	RatePercentage string `json:"rate_percentage"`
	DriversLicense string `json:"drivers_license,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
}

func personnelResponseFrom(p model.Personnel) personnelResponse {
	return personnelResponse{
		ID:             p.ID.String(),
		FullName:       p.FullName,
		Salary:         p.Salary.StringFixed(2),
		RatePercentage: p.RatePercentage.StringFixed(2),
		DriversLicense: p.DriversLicense,
		Phone:          p.Phone,
		Address:        p.Address,
	}
}

type monthGroupResponse struct {
	Month    string            `json:"month"`
	Total    string            `json:"total"`
	Planned  string            `json:"planned"`
	Paid     string            `json:"paid"`
	Overdue  string            `json:"overdue"`
	Payments []paymentResponse `json:"payments"`
}

func monthlyReportResponseFrom(report *model.MonthlyPaymentsReport) gin.H {
	months := make([]monthGroupResponse, 0, len(report.Months))
	for _, group := range report.Months {
		resp := monthGroupResponse{
			Month:   group.Month.Format("2006-01-02"),
			Total:   group.Total.StringFixed(2),
			Planned: group.Planned.StringFixed(2),
			Paid:    group.Paid.StringFixed(2),
			Overdue: group.Overdue.StringFixed(2),
		}
		for _, row := range group.Rows {
			resp.Payments = append(resp.Payments, paymentResponseFrom(row.Payment))
		}
		months = append(months, resp)
	}
	out := gin.H{"months": months}
	if report.Personnel != nil {
		out["personnel"] = personnelResponseFrom(*report.Personnel)
	}
	return out
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func datePtrString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
