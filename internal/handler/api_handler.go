package handler

import (
	"errors"
	"net/http"

	"github.com/blues/quirklr/internal/logic"
	"github.com/gin-gonic/gin"
)

// ApiHandler 公开验证接口处理器，需通过API密钥中间件
type ApiHandler struct {
	paymentLogic *logic.PaymentLogic
	projectLogic *logic.ProjectLogic
}

// NewApiHandler 创建公开验证接口处理器
func NewApiHandler(paymentLogic *logic.PaymentLogic, projectLogic *logic.ProjectLogic) *ApiHandler {
	return &ApiHandler{
		paymentLogic: paymentLogic,
		projectLogic: projectLogic,
	}
}

// Verify 验证某钱包是否支付过某项目
func (h *ApiHandler) Verify(c *gin.Context) {
	projectId := c.Query("projectId")
	walletAddress := c.Query("walletAddress")

	if projectId == "" || walletAddress == "" {
		ErrorResponse(c, http.StatusBadRequest, "缺少 projectId 或 walletAddress")
		return
	}

	// 项目必须存在，避免对任意ID返回hasPaid=false造成误判
	if _, err := h.projectLogic.GetProject(projectId); err != nil {
		HandleLogicError(c, err)
		return
	}

	payment, err := h.paymentLogic.FindPayment(projectId, walletAddress)
	if err != nil {
		if errors.Is(err, logic.ErrPaymentNotFound) {
			c.JSON(http.StatusOK, gin.H{
				"hasPaid": false,
				"payment": nil,
			})
			return
		}
		HandleLogicError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hasPaid": true,
		"payment": ToPaymentResponse(payment),
	})
}

// ApiKeyAuth API密钥校验中间件：
// 哈希请求头中的原始密钥后查库，未命中返回403
func ApiKeyAuth(authLogic *logic.AuthLogic) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawKey := c.GetHeader("X-API-KEY")
		if rawKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "未提供API密钥",
			})
			return
		}

		record, err := authLogic.ValidateKey(rawKey)
		if err != nil {
			if errors.Is(err, logic.ErrApiKeyInvalid) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": "无效的API密钥",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "服务器内部错误",
			})
			return
		}

		// 供下游使用的调用方钱包
		c.Set("apiUserWallet", record.UserWallet)
		c.Next()
	}
}
