package handler

import (
	"net/http"

	"github.com/blues/quirklr/internal/logic"
	"github.com/gin-gonic/gin"
)

// AuthHandler API密钥处理器
type AuthHandler struct {
	authLogic *logic.AuthLogic
}

// NewAuthHandler 创建API密钥处理器
func NewAuthHandler(authLogic *logic.AuthLogic) *AuthHandler {
	return &AuthHandler{authLogic: authLogic}
}

// CheckKey 检查钱包是否已签发过密钥。出于安全不返回存储的哈希
func (h *AuthHandler) CheckKey(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet == "" {
		ErrorResponse(c, http.StatusBadRequest, "钱包地址不能为空")
		return
	}

	exists, err := h.authLogic.HasKey(wallet)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	if !exists {
		ErrorResponse(c, http.StatusNotFound, "未找到该钱包的API密钥")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"exists":  true,
	})
}

// GenerateKey 签发新密钥：覆盖旧哈希使旧密钥立即失效。
// 原始密钥只在本次响应展示一次
func (h *AuthHandler) GenerateKey(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet == "" {
		ErrorResponse(c, http.StatusBadRequest, "钱包地址不能为空")
		return
	}

	rawKey, err := h.authLogic.GenerateKey(wallet)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "API密钥生成成功，请妥善保存，之后无法再次查看",
		"apiKey":  rawKey,
	})
}
