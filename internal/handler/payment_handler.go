package handler

import (
	"net/http"
	"strings"

	"github.com/blues/quirklr/internal/logic"
	"github.com/blues/quirklr/internal/model"
	"github.com/gin-gonic/gin"
)

// PaymentHandler 支付查询处理器
type PaymentHandler struct {
	paymentLogic  *logic.PaymentLogic
	recorderLogic *logic.RecorderLogic
}

// NewPaymentHandler 创建支付查询处理器
func NewPaymentHandler(paymentLogic *logic.PaymentLogic, recorderLogic *logic.RecorderLogic) *PaymentHandler {
	return &PaymentHandler{
		paymentLogic:  paymentLogic,
		recorderLogic: recorderLogic,
	}
}

// GetPayments 获取支付记录，可按付款钱包过滤
func (h *PaymentHandler) GetPayments(c *gin.Context) {
	payerWallet := c.Query("walletaddress")

	payments, err := h.paymentLogic.GetPayments(payerWallet)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToPaymentResponseList(payments))
}

// GetReceipt 获取支付记录及凭证服务侧的实时凭证
func (h *PaymentHandler) GetReceipt(c *gin.Context) {
	receiptId := c.Param("receiptId")

	payment, proof, err := h.recorderLogic.GetReceiptDetails(c.Request.Context(), receiptId)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment": ToPaymentResponse(payment),
		"proof":   proof,
	})
}

// GetProjectProgress 获取筹款进度。一次性收款项目返回精简响应
func (h *PaymentHandler) GetProjectProgress(c *gin.Context) {
	projectId := c.Param("projectId")

	progress, err := h.paymentLogic.GetProjectProgress(projectId)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	if progress.PaymentType == model.PaymentTypeOnetime {
		c.JSON(http.StatusOK, OnetimeProgressResponse{
			Balance:    progress.Balance,
			PayeeCount: progress.PayeeCount,
			Current:    progress.Current,
		})
		return
	}

	c.JSON(http.StatusOK, ToProgressResponse(progress))
}

// GetPaymentsByProject 获取项目的全部支付记录
func (h *PaymentHandler) GetPaymentsByProject(c *gin.Context) {
	projectId := c.Param("projectId")

	payments, err := h.paymentLogic.GetPaymentsByProject(projectId)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToPaymentResponseList(payments))
}

// CheckPayment 检查某钱包对某项目的支付情况
func (h *PaymentHandler) CheckPayment(c *gin.Context) {
	var body struct {
		ProjectId     string `json:"projectId"`
		WalletAddress string `json:"walletAddress"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.ProjectId == "" || body.WalletAddress == "" {
		ErrorResponse(c, http.StatusBadRequest, "缺少 projectId 或 walletAddress")
		return
	}

	projectId := strings.TrimSpace(body.ProjectId)
	walletAddress := strings.TrimSpace(body.WalletAddress)

	hasPaid, count, err := h.paymentLogic.CheckPaymentStatus(projectId, walletAddress)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hasPaid":       hasPaid,
		"paymentCount":  count,
		"projectId":     projectId,
		"walletAddress": walletAddress,
	})
}
