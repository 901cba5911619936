package handler

import (
	"net/http"

	"github.com/blues/quirklr/internal/logic"
	"github.com/gin-gonic/gin"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	projectLogic *logic.ProjectLogic
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(projectLogic *logic.ProjectLogic) *ProjectHandler {
	return &ProjectHandler{projectLogic: projectLogic}
}

// CreateProject 创建项目：先上链登记，成功后落库
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var input logic.CreateProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.projectLogic.CreateProject(c.Request.Context(), input)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"project": ToProjectResponse(project),
		"txHash":  project.ProjectCreationHash,
	})
}

// GetProjects 获取项目列表，可按创建者钱包过滤
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	creatorWallet := c.Query("walletaddress")

	projects, err := h.projectLogic.GetProjects(creatorWallet)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToProjectResponseList(projects))
}

// GetProject 获取项目详情
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectId := c.Param("projectId")

	project, err := h.projectLogic.GetProject(projectId)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToProjectResponse(project))
}

// DeleteProject 删除项目，存在支付记录时拒绝
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	var body struct {
		ProjectId string `json:"projectId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.ProjectId == "" {
		ErrorResponse(c, http.StatusBadRequest, "项目ID不能为空")
		return
	}

	if err := h.projectLogic.DeleteProject(body.ProjectId); err != nil {
		HandleLogicError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "项目已删除（无任何支付记录）",
	})
}

// Withdraw 提现标记：服务端重新校验筹款进度后翻转状态
func (h *ProjectHandler) Withdraw(c *gin.Context) {
	var body struct {
		ProjectId string `json:"projectId"`
		TxHash    string `json:"txHash"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.ProjectId == "" {
		ErrorResponse(c, http.StatusBadRequest, "项目ID不能为空")
		return
	}

	project, err := h.projectLogic.Withdraw(c.Request.Context(), body.ProjectId, body.TxHash)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "提现状态已更新",
		"project": ToProjectResponse(project),
	})
}
