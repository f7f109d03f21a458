package handler

import (
	"strconv"
	"time"

	dividendapp "github.com/coopfleet/backend/internal/application/dividend"
	"github.com/coopfleet/backend/internal/domain/dividend"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DividendHandler exposes the distribution engine over HTTP
type DividendHandler struct {
	BaseHandler
	distributionService *dividendapp.DistributionService
	paymentService      *dividendapp.PaymentService
	queryService        *dividendapp.QueryService
}

// NewDividendHandler creates a new DividendHandler
func NewDividendHandler(
	distributionService *dividendapp.DistributionService,
	paymentService *dividendapp.PaymentService,
	queryService *dividendapp.QueryService,
) *DividendHandler {
	return &DividendHandler{
		distributionService: distributionService,
		paymentService:      paymentService,
		queryService:        queryService,
	}
}

// RegisterRoutes registers all dividend routes under the given group
func (h *DividendHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tenants := rg.Group("/tenants/:tenant_id")

	tenants.POST("/dividend-distributions", h.CreateDistribution)
	tenants.GET("/dividend-distributions", h.ListDistributions)
	tenants.GET("/dividend-distributions/:id", h.GetDistribution)
	tenants.GET("/dividend-distributions/:id/records", h.DistributionRecords)
	tenants.POST("/dividend-distributions/:id/finalize", h.FinalizeDistribution)
	tenants.POST("/dividend-distributions/:id/void", h.VoidDistribution)

	tenants.PATCH("/dividends/:dividend_id/payment", h.UpdatePayment)

	tenants.GET("/customers/:member_id/dividends", h.MemberHistory(dividend.MemberTypeCustomer))
	tenants.GET("/drivers/:member_id/dividends", h.MemberHistory(dividend.MemberTypeDriver))
}

// CreateDistributionRequest represents a request to compute a distribution
type CreateDistributionRequest struct {
	MemberType  string    `json:"member_type" binding:"required"`
	PeriodStart time.Time `json:"period_start" binding:"required"`
	PeriodEnd   time.Time `json:"period_end" binding:"required"`
}

// VoidDistributionRequest carries the void justification
type VoidDistributionRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// UpdatePaymentRequest transitions a dividend record out of pending
type UpdatePaymentRequest struct {
	Action        string     `json:"action" binding:"required,oneof=paid cancelled"`
	PaymentMethod string     `json:"payment_method"`
	PaymentDate   *time.Time `json:"payment_date"`
	Reason        string     `json:"reason" binding:"max=500"`
}

// CreateDistribution computes a distribution for a period.
// An optional Idempotency-Key header dedupes retried submissions.
func (h *DividendHandler) CreateDistribution(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateDistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	distribution, err := h.distributionService.CreateDistribution(c.Request.Context(), tenantID,
		dividendapp.CreateDistributionRequest{
			MemberType:     req.MemberType,
			PeriodStart:    req.PeriodStart,
			PeriodEnd:      req.PeriodEnd,
			IdempotencyKey: c.GetHeader("Idempotency-Key"),
		})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, distribution)
}

// ListDistributions lists a tenant's distributions newest first
func (h *DividendHandler) ListDistributions(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter dividendapp.DistributionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	distributions, total, err := h.distributionService.ListDistributions(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, distributions, total, filter.Page, filter.PageSize)
}

// GetDistribution returns one distribution with its records
func (h *DividendHandler) GetDistribution(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	distributionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid distribution ID format")
		return
	}

	distribution, err := h.distributionService.GetDistribution(c.Request.Context(), tenantID, distributionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, distribution)
}

// DistributionRecords returns all records of one distribution
func (h *DividendHandler) DistributionRecords(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	distributionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid distribution ID format")
		return
	}

	records, err := h.queryService.DistributionRecords(c.Request.Context(), tenantID, distributionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, records)
}

// FinalizeDistribution accepts a computed distribution
func (h *DividendHandler) FinalizeDistribution(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	distributionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid distribution ID format")
		return
	}

	distribution, err := h.distributionService.FinalizeDistribution(c.Request.Context(), tenantID, distributionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, distribution)
}

// VoidDistribution supersedes a computed distribution, freeing its period
// key for recomputation
func (h *DividendHandler) VoidDistribution(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	distributionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid distribution ID format")
		return
	}

	var req VoidDistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	distribution, err := h.distributionService.VoidDistribution(c.Request.Context(), tenantID, distributionID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, distribution)
}

// UpdatePayment applies a payment transition to a dividend record
func (h *DividendHandler) UpdatePayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	recordID, err := uuid.Parse(c.Param("dividend_id"))
	if err != nil {
		h.BadRequest(c, "Invalid dividend record ID format")
		return
	}

	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	switch req.Action {
	case "paid":
		if req.PaymentMethod == "" || req.PaymentDate == nil {
			h.BadRequest(c, "payment_method and payment_date are required when action is paid")
			return
		}
		record, err := h.paymentService.MarkPaid(c.Request.Context(), tenantID, recordID,
			dividendapp.MarkPaidRequest{
				PaymentMethod: req.PaymentMethod,
				PaymentDate:   *req.PaymentDate,
			})
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, record)

	case "cancelled":
		if req.Reason == "" {
			h.BadRequest(c, "reason is required when action is cancelled")
			return
		}
		record, err := h.paymentService.Cancel(c.Request.Context(), tenantID, recordID,
			dividendapp.CancelRequest{Reason: req.Reason})
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, record)
	}
}

// MemberHistory returns a member's dividend history with a derived summary.
// The member type comes from the route: customers and drivers each have
// their own path, so one member ID never reads across types.
func (h *DividendHandler) MemberHistory(memberType dividend.MemberType) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := getTenantID(c)
		if err != nil {
			h.BadRequest(c, "Invalid tenant ID")
			return
		}

		memberID, err := uuid.Parse(c.Param("member_id"))
		if err != nil {
			h.BadRequest(c, "Invalid member ID format")
			return
		}

		limit := 0
		if raw := c.Query("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit < 0 {
				h.BadRequest(c, "limit must be a non-negative integer")
				return
			}
		}

		history, err := h.queryService.MemberHistory(c.Request.Context(), tenantID, memberType, memberID, limit)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}

		h.Success(c, history)
	}
}
