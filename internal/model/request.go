/**
 * 模型:请求模型
 * @author: sun977
 * @date: 2025.11.03
 * @description: API请求数据模型
 * @func: 各种Request结构体定义
 */
package model

import "fmt"

// RegisterCompanyRequest 公司注册请求
type RegisterCompanyRequest struct {
	Name string `json:"name" binding:"required"` // 公司名称
}

// SingleInvoiceItem 单发票任务项
type SingleInvoiceItem struct {
	CompanyIDNO string `json:"company_idno" binding:"required"`      // 本方公司IDNO
	Operator    string `json:"operator_identity" binding:"required"` // 操作员证书名
	Series      string `json:"series" binding:"required"`            // 发票序列
	Number      int    `json:"number" binding:"required"`            // 发票号
}

// NaturalKey 返回该项的自然键展示形式
func (i *SingleInvoiceItem) NaturalKey() string {
	return fmt.Sprintf("%s/%s/%s/%d", i.CompanyIDNO, i.Operator, i.Series, i.Number)
}

// CreateSingleInvoiceTasksRequest 创建单发票签章任务请求
type CreateSingleInvoiceTasksRequest struct {
	ActionType string              `json:"action_type" binding:"required"`         // 动作类型
	Invoices   []SingleInvoiceItem `json:"invoices" binding:"required,min=1,dive"` // 发票列表
}

// MultipleInvoicesItem 批量发票任务项
type MultipleInvoicesItem struct {
	CompanyIDNO      string `json:"company_idno" binding:"required"`      // 本方公司IDNO
	Operator         string `json:"operator_identity" binding:"required"` // 操作员证书名
	CounterpartyIDNO string `json:"counterparty_idno" binding:"required"` // 对方公司IDNO
	SignatureKind    string `json:"signature_kind" binding:"required"`    // 签章种类
}

// NaturalKey 返回该项的自然键展示形式
func (i *MultipleInvoicesItem) NaturalKey() string {
	return fmt.Sprintf("%s/%s/%s/%s", i.CompanyIDNO, i.Operator, i.CounterpartyIDNO, i.SignatureKind)
}

// CreateMultipleInvoicesTasksRequest 创建批量发票签章任务请求
type CreateMultipleInvoicesTasksRequest struct {
	ActionType string                 `json:"action_type" binding:"required"`         // 动作类型
	Invoices   []MultipleInvoicesItem `json:"invoices" binding:"required,min=1,dive"` // 任务列表
}

// SingleInvoiceStatusQuery 单发票任务状态查询标识
type SingleInvoiceStatusQuery struct {
	CompanyIDNO string `json:"company_idno" binding:"required"` // 本方公司IDNO
	Series      string `json:"series" binding:"required"`       // 发票序列
	Number      int    `json:"number" binding:"required"`       // 发票号
}

// TaskStatusUpdate 按任务UUID更新状态项
type TaskStatusUpdate struct {
	TaskID string     `json:"task_id" binding:"required"` // 任务UUID
	Status TaskStatus `json:"status" binding:"required"`  // 目标状态
}
