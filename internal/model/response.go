/**
 * 模型:响应模型
 * @author: sun977
 * @date: 2025.11.03
 * @description: API响应数据模型，包含各种业务操作的响应结构体
 * @func: 各种Response结构体定义
 */
package model

// APIResponse 通用API响应结构
type APIResponse struct {
	Code    int         `json:"code,omitempty"`  // 响应状态码，可选
	Status  string      `json:"status"`          // 响应状态："success" 或 "failed"
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据，可选
	Error   string      `json:"error,omitempty"` // 错误信息，可选
}

// CredentialResponse 凭证响应结构
// 注册和凭证轮换共用
type CredentialResponse struct {
	Credential string `json:"credential"` // 不透明Bearer凭证
}

// SingleInvoiceStatusEntry 单发票任务状态条目
type SingleInvoiceStatusEntry struct {
	CompanyIDNO string     `json:"company_idno"` // 本方公司IDNO
	Series      string     `json:"series"`       // 发票序列
	Number      int        `json:"number"`       // 发票号
	Status      TaskStatus `json:"status"`       // 当前状态
}

// SingleInvoiceStatusResponse 单发票任务状态响应
type SingleInvoiceStatusResponse struct {
	Tasks []SingleInvoiceStatusEntry `json:"tasks"` // 每个查询标识恰好一个条目
}

// MachineSingleInvoiceTask 机器视角的单发票任务项
type MachineSingleInvoiceTask struct {
	Series     string `json:"series"`      // 发票序列
	Number     int    `json:"number"`      // 发票号
	TaskID     string `json:"task_id"`     // 任务UUID
	ActionType string `json:"action_type"` // 动作类型
}

// MachineMultipleInvoicesTask 机器视角的批量发票任务项
type MachineMultipleInvoicesTask struct {
	CounterpartyIDNO string `json:"counterparty_idno"` // 对方公司IDNO
	SignatureKind    string `json:"signature_kind"`    // 签章种类
	TaskID           string `json:"task_id"`           // 任务UUID
	ActionType       string `json:"action_type"`       // 动作类型
}

// MachineTasksResponse 机器拉取等待任务的响应
// 两类任务都按 操作员证书名 -> 本方公司IDNO 两级分组，
// 机器拿到后无需再做任何查询即可按组消费
type MachineTasksResponse struct {
	SingleInvoiceTask    map[string]map[string][]MachineSingleInvoiceTask    `json:"SingleInvoiceTask"`
	MultipleInvoicesTask map[string]map[string][]MachineMultipleInvoicesTask `json:"MultipleInvoicesTask"`
}

// Empty 两类任务是否都为空
func (r *MachineTasksResponse) Empty() bool {
	return len(r.SingleInvoiceTask) == 0 && len(r.MultipleInvoicesTask) == 0
}
