package handlers

import (
	"net/http"

	"github.com/arturomz/bank-records-go/pkg"
	"github.com/arturomz/bank-records-go/services/bank-api/internal/services"
	"github.com/arturomz/bank-records-go/services/bank-api/internal/views"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AccountHandler struct {
	logger          *zap.Logger
	accountService  services.AccountService
	transferService services.TransferService
	transferLimiter *pkg.DistributedLimiter
}

func NewAccountHandler(logger *zap.Logger, accountSvc services.AccountService, transferSvc services.TransferService, transferLimiter *pkg.DistributedLimiter) *AccountHandler {
	return &AccountHandler{
		logger:          logger,
		accountService:  accountSvc,
		transferService: transferSvc,
		transferLimiter: transferLimiter,
	}
}

// RegisterRoutes registers account routes on the provided Gin router group.
func (h *AccountHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/account_types", h.ListAccountTypes)
	r.POST("/accounts", h.CreateAccount)
	r.GET("/accounts", h.ListAccounts)
	r.POST("/accounts/transfer", h.Transfer)
}

func (h *AccountHandler) ListAccountTypes(c *gin.Context) {
	traceId, ok := traceID(c)
	if !ok {
		return
	}

	types, err := h.accountService.ListTypes(c.Request.Context(), traceId)
	if err != nil {
		abortWithError(c, h.logger, traceId, err)
		return
	}

	c.JSON(http.StatusOK, pkg.APIResponse{
		TraceID: traceId,
		Data: map[string]interface{}{
			"account_types": types,
		},
	})
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	traceId, ok := traceID(c)
	if !ok {
		return
	}

	var req views.AccountCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	account, err := h.accountService.Create(c.Request.Context(), traceId, req)
	if err != nil {
		abortWithError(c, h.logger, traceId, err)
		return
	}

	c.JSON(http.StatusCreated, pkg.APIResponse{
		TraceID: traceId,
		Data: map[string]interface{}{
			"account": account,
		},
	})
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	traceId, ok := traceID(c)
	if !ok {
		return
	}

	accounts, err := h.accountService.List(c.Request.Context(), traceId)
	if err != nil {
		abortWithError(c, h.logger, traceId, err)
		return
	}

	c.JSON(http.StatusOK, pkg.APIResponse{
		TraceID: traceId,
		Data: map[string]interface{}{
			"accounts": accounts,
		},
	})
}

func (h *AccountHandler) Transfer(c *gin.Context) {
	traceId, ok := traceID(c)
	if !ok {
		return
	}

	if h.transferLimiter != nil && !h.transferLimiter.Allow(c.Request.Context()) {
		abortWithError(c, h.logger, traceId, pkg.NewAppError(pkg.ErrRateLimitedCode, "transfer rate limit exceeded", pkg.ErrRateLimitExceeded))
		return
	}

	var req views.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	if err := h.transferService.Transfer(c.Request.Context(), traceId, req); err != nil {
		abortWithError(c, h.logger, traceId, err)
		return
	}

	c.JSON(http.StatusOK, pkg.APIResponse{
		TraceID: traceId,
		Data: map[string]interface{}{
			"message": "transfer successful",
		},
	})
}
