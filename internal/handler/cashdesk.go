package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/apierror"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/dto"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/middleware"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CashdeskHandler struct{ svc service.SessionService }

func NewCashdeskHandler(svc service.SessionService) *CashdeskHandler {
	return &CashdeskHandler{svc: svc}
}

// actor extracts the authenticated caller's identity and tenant. Every write
// the core performs is scoped to this tenant — a request can never carry a
// different tenant than its token.
func actor(c *gin.Context) (tenantID, userID uuid.UUID, ok bool) {
	claims := middleware.GetClaims(c)
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("invalid tenant in token"))
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("invalid user in token"))
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, true
}

// Open godoc
// @Summary Opens a new cash session for the caller's tenant
// @Tags cashdesk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenSessionRequest true "Opening data"
// @Success 201 {object} dto.SessionReport
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/cashdesk/open [post]
func (h *CashdeskHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	tenantID, userID, ok := actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.Open(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegisterSale godoc
// @Summary Registers a sale against the open session (idempotent)
// @Tags cashdesk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegisterSaleRequest true "Sale data"
// @Success 201 {object} dto.MovementResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cashdesk/sales [post]
func (h *CashdeskHandler) RegisterSale(c *gin.Context) {
	var req dto.RegisterSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	tenantID, userID, ok := actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.RegisterSale(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RecordWithdrawal godoc
// @Summary Records a cash withdrawal from the open session
// @Tags cashdesk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ManualMovementRequest true "Withdrawal data"
// @Success 201 {object} dto.MovementResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cashdesk/withdrawals [post]
func (h *CashdeskHandler) RecordWithdrawal(c *gin.Context) {
	h.recordManual(c, h.svc.RecordWithdrawal)
}

// RecordReinforcement godoc
// @Summary Records a cash reinforcement into the open session
// @Tags cashdesk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ManualMovementRequest true "Reinforcement data"
// @Success 201 {object} dto.MovementResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cashdesk/reinforcements [post]
func (h *CashdeskHandler) RecordReinforcement(c *gin.Context) {
	h.recordManual(c, h.svc.RecordReinforcement)
}

func (h *CashdeskHandler) recordManual(c *gin.Context, fn func(ctx context.Context, tenantID, actorID uuid.UUID, req dto.ManualMovementRequest) (*dto.MovementResponse, error)) {
	var req dto.ManualMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	tenantID, userID, ok := actor(c)
	if !ok {
		return
	}
	resp, err := fn(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary Closes the open session with reconciliation
// @Tags cashdesk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CloseSessionRequest true "Counted balance and closing data"
// @Success 200 {object} dto.CloseResult
// @Failure 409 {object} apierror.APIError
// @Failure 428 {object} apierror.PolicyViolation
// @Router /v1/cashdesk/close [post]
func (h *CashdeskHandler) Close(c *gin.Context) {
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	tenantID, userID, ok := actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Current returns the caller tenant's open session, if any.
func (h *CashdeskHandler) Current(c *gin.Context) {
	tenantID, _, ok := actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.Current(c.Request.Context(), tenantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report returns the full report for one session.
func (h *CashdeskHandler) Report(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid session id"))
		return
	}
	tenantID, _, ok := actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.Report(c.Request.Context(), tenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movements lists a session's ledger entries, newest first.
func (h *CashdeskHandler) Movements(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid session id"))
		return
	}
	tenantID, _, ok := actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.Movements(c.Request.Context(), tenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// History returns a paginated list of closed sessions.
func (h *CashdeskHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	tenantID, _, ok := actor(c)
	if !ok {
		return
	}
	resp, total, err := h.svc.History(c.Request.Context(), tenantID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "total": total, "page": page, "limit": limit})
}
