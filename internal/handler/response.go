package handler

import (
	"errors"
	"net/http"

	"github.com/blues/quirklr/internal/logger"
	"github.com/blues/quirklr/internal/logic"
	"github.com/blues/quirklr/internal/proofrail"
	"github.com/gin-gonic/gin"
)

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

// HandleLogicError 把logic层错误映射为HTTP状态码
func HandleLogicError(c *gin.Context, err error) {
	var goalErr *logic.GoalNotReachedError
	var hasPayments *logic.ProjectHasPaymentsError

	switch {
	case errors.Is(err, logic.ErrInvalid):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &goalErr), errors.As(err, &hasPayments):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, logic.ErrProjectNotFound),
		errors.Is(err, logic.ErrPaymentNotFound),
		errors.Is(err, logic.ErrApiKeyNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, logic.ErrDuplicatePayment):
		ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, proofrail.ErrUnauthorized):
		ErrorResponse(c, http.StatusUnauthorized, "凭证服务鉴权失败")
	case errors.Is(err, logic.ErrChainAnchor):
		ErrorResponse(c, http.StatusBadGateway, err.Error())
	default:
		logger.Error("Internal error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "服务器内部错误")
	}
}
