package handlers

import (
	"net/http"
	"strconv"

	"github.com/arturomz/bank-records-go/pkg"
	"github.com/arturomz/bank-records-go/services/bank-api/internal/services"
	"github.com/arturomz/bank-records-go/services/bank-api/internal/views"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	logger  *zap.Logger
	service services.UserService
}

func NewUserHandler(logger *zap.Logger, svc services.UserService) *UserHandler {
	return &UserHandler{logger: logger, service: svc}
}

// RegisterRoutes registers user routes on the provided Gin router group.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/users", h.CreateUser)
	r.GET("/users", h.ListUsers)
	r.GET("/users/:id", h.GetUser)
	r.PUT("/users/:id", h.UpdateUser)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	traceId, ok := traceID(c)
	if !ok {
		return
	}

	var req views.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	user, err := h.service.Create(c.Request.Context(), traceId, req)
	if err != nil {
		abortWithError(c, h.logger, traceId, err)
		return
	}

	c.JSON(http.StatusCreated, pkg.APIResponse{
		TraceID: traceId,
		Data: map[string]interface{}{
			"user": user,
		},
	})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	traceId, ok := traceID(c)
	if !ok {
		return
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		abortBadRequest(c, err)
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(pkg.DefaultPageLimit)))
	if err != nil {
		abortBadRequest(c, err)
		return
	}

	users, err := h.service.List(c.Request.Context(), traceId, offset, limit)
	if err != nil {
		abortWithError(c, h.logger, traceId, err)
		return
	}

	c.JSON(http.StatusOK, pkg.APIResponse{
		TraceID: traceId,
		Data: map[string]interface{}{
			"users":  users,
			"offset": offset,
			"limit":  limit,
		},
	})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	traceId, ok := traceID(c)
	if !ok {
		return
	}

	userID, err := pathID(c, "id")
	if err != nil {
		abortBadRequest(c, err)
		return
	}

	user, err := h.service.Get(c.Request.Context(), traceId, userID)
	if err != nil {
		abortWithError(c, h.logger, traceId, err)
		return
	}

	c.JSON(http.StatusOK, pkg.APIResponse{
		TraceID: traceId,
		Data: map[string]interface{}{
			"user": user,
		},
	})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	traceId, ok := traceID(c)
	if !ok {
		return
	}

	userID, err := pathID(c, "id")
	if err != nil {
		abortBadRequest(c, err)
		return
	}

	var req views.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	user, err := h.service.Update(c.Request.Context(), traceId, userID, req)
	if err != nil {
		abortWithError(c, h.logger, traceId, err)
		return
	}

	c.JSON(http.StatusOK, pkg.APIResponse{
		TraceID: traceId,
		Data: map[string]interface{}{
			"user": user,
		},
	})
}
