package logic

import (
	"errors"
	"fmt"
)

// 哨兵错误，handler层用errors.Is映射HTTP状态码
var (
	ErrInvalid          = errors.New("无效的请求参数")
	ErrProjectNotFound  = errors.New("项目不存在")
	ErrPaymentNotFound  = errors.New("支付记录不存在")
	ErrApiKeyNotFound   = errors.New("未找到该钱包的API密钥")
	ErrApiKeyInvalid    = errors.New("无效的API密钥")
	ErrDuplicatePayment = errors.New("该交易哈希已记录过支付")
	ErrChainAnchor      = errors.New("链上锚定失败")
)

// GoalNotReachedError 筹款目标未达成，携带当前进度
type GoalNotReachedError struct {
	Percent float64
}

func (e *GoalNotReachedError) Error() string {
	return fmt.Sprintf("筹款目标尚未达成，当前进度 %.2f%%，无法提现", e.Percent)
}

// ProjectHasPaymentsError 项目存在支付记录，禁止删除
type ProjectHasPaymentsError struct {
	Count int64
}

func (e *ProjectHasPaymentsError) Error() string {
	return fmt.Sprintf("项目已收到 %d 笔支付，无法删除", e.Count)
}
