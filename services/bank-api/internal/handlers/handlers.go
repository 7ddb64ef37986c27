package handlers

import (
	"net/http"
	"strconv"

	"github.com/arturomz/bank-records-go/pkg"
	"github.com/arturomz/bank-records-go/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// traceID extracts the request trace ID set by the TraceID middleware,
// aborting with a 500 when absent.
func traceID(c *gin.Context) (string, bool) {
	id, err := utils.GetTraceID(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, pkg.ErrorResponse{
			Code:    pkg.ErrServerCode.Code,
			Message: pkg.ErrServerCode.Message,
		})
		return "", false
	}
	return id, true
}

// abortWithError renders any service error through the standard mapping.
func abortWithError(c *gin.Context, logger *zap.Logger, traceId string, err error) {
	resp := pkg.ToErrorResponse(logger, traceId, err)
	c.JSON(resp.Status, resp)
}

// abortBadRequest renders a binding/validation failure.
func abortBadRequest(c *gin.Context, detail error) {
	resp := pkg.ErrorResponse{
		Code:    pkg.ErrInvalidInputCode.Code,
		Message: pkg.ErrInvalidInputCode.Message,
	}
	if pkg.ExposeErrorDetails && detail != nil {
		resp.Details = detail.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// pathID parses a numeric :id path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
