package handler

import (
	"net/http"

	"github.com/blues/quirklr/internal/logic"
	"github.com/gin-gonic/gin"
)

// ProofrailsHandler 支付登记处理器
type ProofrailsHandler struct {
	recorderLogic *logic.RecorderLogic
}

// NewProofrailsHandler 创建支付登记处理器
func NewProofrailsHandler(recorderLogic *logic.RecorderLogic) *ProofrailsHandler {
	return &ProofrailsHandler{recorderLogic: recorderLogic}
}

// AddPayment 登记一笔已确认的链上贡献：
// 生成凭证 -> 同一事务写支付记录并累加项目余额
func (h *ProofrailsHandler) AddPayment(c *gin.Context) {
	var input logic.AddPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	payment, newBalance, err := h.recorderLogic.AddPayment(c.Request.Context(), input)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "支付已登记，项目余额已更新",
		"payment":         ToPaymentResponse(payment),
		"newTotalBalance": newBalance,
	})
}
