package handler

import (
	"time"

	"github.com/blues/quirklr/internal/logic"
	"github.com/blues/quirklr/internal/model"
)

// 项目相关响应模型

// ProjectResponse 项目响应模型
type ProjectResponse struct {
	ProjectId           string    `json:"projectId"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	ImageUrl            string    `json:"imageUrl"`
	CreatorWallet       string    `json:"creatorWallet"`
	PaymentType         string    `json:"paymentType"`
	FundraisingGoal     float64   `json:"fundraisingGoal,omitempty"`
	FixedAmount         float64   `json:"fixedAmount,omitempty"`
	MinimumPayment      float64   `json:"minimumPayment,omitempty"`
	Currency            string    `json:"currency"`
	Balance             float64   `json:"balance"`
	WithdrawalStatus    bool      `json:"withdrawalStatus"`
	ProjectCreationHash string    `json:"projectCreationHash"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// PaymentResponse 支付记录响应模型
type PaymentResponse struct {
	ProjectId   string    `json:"projectId"`
	PaymentId   string    `json:"paymentId"`
	ReceiptId   string    `json:"receiptId"`
	PayerWallet string    `json:"payerWallet"`
	Amount      float64   `json:"amount"`
	Asset       string    `json:"asset"`
	ProofHash   string    `json:"proofHash"`
	Reference   string    `json:"reference"`
	Timestamp   time.Time `json:"timestamp"`
}

// ProgressResponse 筹款进度响应（fundraising完整版）
type ProgressResponse struct {
	ProjectId         string  `json:"projectId"`
	Title             string  `json:"title"`
	Goal              float64 `json:"goal"`
	Current           float64 `json:"current"`
	PercentCompletion string  `json:"percent_completion"`
	Balance           float64 `json:"balance"`
	PayeeCount        int64   `json:"payeeCount"`
	RawPercent        float64 `json:"raw_percent"`
	Currency          string  `json:"currency"`
}

// OnetimeProgressResponse 一次性收款进度响应（精简版）
type OnetimeProgressResponse struct {
	Balance    float64 `json:"balance"`
	PayeeCount int64   `json:"payeeCount"`
	Current    float64 `json:"current"`
}

// 转换函数

// ToProjectResponse 将数据库模型转换为响应模型
func ToProjectResponse(project *model.ProjectModel) ProjectResponse {
	return ProjectResponse{
		ProjectId:           project.ProjectId,
		Title:               project.Title,
		Description:         project.Description,
		ImageUrl:            project.ImageURL,
		CreatorWallet:       project.CreatorWallet,
		PaymentType:         string(project.PaymentType),
		FundraisingGoal:     project.FundraisingGoal,
		FixedAmount:         project.FixedAmount,
		MinimumPayment:      project.MinimumPayment,
		Currency:            project.Currency,
		Balance:             project.Balance,
		WithdrawalStatus:    project.WithdrawalStatus,
		ProjectCreationHash: project.ProjectCreationHash,
		CreatedAt:           project.CreatedAt,
		UpdatedAt:           project.UpdatedAt,
	}
}

// ToProjectResponseList 将数据库模型列表转换为响应模型列表
func ToProjectResponseList(projects []model.ProjectModel) []ProjectResponse {
	result := make([]ProjectResponse, len(projects))
	for i, project := range projects {
		result[i] = ToProjectResponse(&project)
	}
	return result
}

// ToPaymentResponse 将支付记录数据库模型转换为响应模型
func ToPaymentResponse(payment *model.PaymentModel) PaymentResponse {
	return PaymentResponse{
		ProjectId:   payment.ProjectId,
		PaymentId:   payment.PaymentId,
		ReceiptId:   payment.ReceiptId,
		PayerWallet: payment.PayerWallet,
		Amount:      payment.Amount,
		Asset:       payment.Asset,
		ProofHash:   payment.ProofHash,
		Reference:   payment.Reference,
		Timestamp:   payment.CreatedAt,
	}
}

// ToPaymentResponseList 将支付记录数据库模型列表转换为响应模型列表
func ToPaymentResponseList(payments []model.PaymentModel) []PaymentResponse {
	result := make([]PaymentResponse, len(payments))
	for i, payment := range payments {
		result[i] = ToPaymentResponse(&payment)
	}
	return result
}

// ToProgressResponse 将进度计算结果转换为完整响应
func ToProgressResponse(progress *logic.ProgressResult) ProgressResponse {
	return ProgressResponse{
		ProjectId:         progress.ProjectId,
		Title:             progress.Title,
		Goal:              progress.Goal,
		Current:           progress.Current,
		PercentCompletion: progress.PercentCompletion,
		Balance:           progress.Balance,
		PayeeCount:        progress.PayeeCount,
		RawPercent:        progress.RawPercent,
		Currency:          progress.Currency,
	}
}
