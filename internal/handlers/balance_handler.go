package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hearth/internal/balance"
	apperrors "hearth/internal/errors"
	"hearth/internal/logger"
	"hearth/internal/services"
)

// BalanceHandler serves computed household balances.
type BalanceHandler struct {
	householdService services.HouseholdServicer
	balanceService   services.BalanceServicer
	previewLimit     int
}

// NewBalanceHandler creates a new BalanceHandler. previewLimit is the number
// of impacting transactions returned when the caller gives no limit.
func NewBalanceHandler(householdService services.HouseholdServicer, balanceService services.BalanceServicer, previewLimit int) *BalanceHandler {
	if previewLimit <= 0 {
		previewLimit = 20
	}
	return &BalanceHandler{
		householdService: householdService,
		balanceService:   balanceService,
		previewLimit:     previewLimit,
	}
}

// BalancesResponse wraps a balance report with a staleness flag.
type BalancesResponse struct {
	*services.BalanceReport
	Stale bool `json:"stale"`
}

// ReconcileResponse is the result of a reconciliation run.
type ReconcileResponse struct {
	HouseholdID string            `json:"household_id"`
	Consistent  bool              `json:"consistent"`
	Warnings    []balance.Warning `json:"warnings"`
}

type previewQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

// GetBalances recomputes and returns member balances
// @Summary     Get household balances
// @Description Recompute member balances from all transactions. If the refresh fails the last good result is returned with stale=true.
// @Tags        balances
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Household ID"
// @Success     200 {object} BalancesResponse "Balances"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     503 {object} ErrorResponse "Balances unavailable"
// @Router      /households/{id}/balances [get]
func (h *BalanceHandler) GetBalances(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	householdID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if _, err := h.householdService.RequireMembership(userID, householdID); err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.balanceService.Refresh(c.Request.Context(), householdID)
	if err != nil {
		last, ok := h.balanceService.Last(householdID)
		if !ok {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, BalancesResponse{BalanceReport: last, Stale: true})
		return
	}

	c.JSON(http.StatusOK, BalancesResponse{BalanceReport: report})
}

// GetImpactingTransactions lists the transactions that move balances
// @Summary     List balance-impacting transactions
// @Description If the refresh fails the last good list is returned with stale=true.
// @Tags        balances
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string true  "Household ID"
// @Param       limit query int    false "Maximum transactions returned (default 20)"
// @Success     200 {object} services.ImpactingTransactions "Impacting transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     503 {object} ErrorResponse "Balances unavailable"
// @Router      /households/{id}/balance-transactions [get]
func (h *BalanceHandler) GetImpactingTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	householdID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q previewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if q.Limit == 0 {
		q.Limit = h.previewLimit
	}

	if _, err := h.householdService.RequireMembership(userID, householdID); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.balanceService.ImpactingTransactions(c.Request.Context(), householdID, q.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Reconcile recomputes a household's balances and reports disagreements with
// the persisted snapshot. Called by the scheduled pipeline.
// @Summary     Reconcile household balances
// @Tags        internal
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Param       id        path   string true "Household ID"
// @Success     200 {object} ReconcileResponse "Reconciliation result"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     503 {object} ErrorResponse "Balances unavailable"
// @Router      /internal/households/{id}/reconcile [post]
func (h *BalanceHandler) Reconcile(c *gin.Context) {
	householdID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.balanceService.Refresh(c.Request.Context(), householdID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	logger.Get().Infow("household reconciled",
		"household_id", householdID,
		"warnings", len(report.Warnings),
	)

	warnings := report.Warnings
	if warnings == nil {
		warnings = []balance.Warning{}
	}
	c.JSON(http.StatusOK, ReconcileResponse{
		HouseholdID: householdID,
		Consistent:  len(warnings) == 0,
		Warnings:    warnings,
	})
}
