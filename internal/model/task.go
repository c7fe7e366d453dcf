/**
 * 模型:任务实体
 * @author: sun977
 * @date: 2025.11.03
 * @description: 签章任务数据模型，包含两类任务内容实体和统一的所有权记录
 * @func:
 * 1.TaskStatus/TaskKind 枚举
 * 2.SingleInvoiceTaskData 单发票签章任务内容
 * 3.MultipleInvoicesTaskData 批量发票签章任务内容
 * 4.CompanyTask 任务所有权+状态记录
 */
package model

import (
	"fmt"
	"time"
)

// TaskStatus 任务状态
// 生命周期: WAITING -> {PROCESSING(可选)} -> COMPLETED | FAILED | USB_NOT_FOUND
// 终态不会被自动重入，重试需要客户端创建新任务
type TaskStatus string

const (
	TaskStatusWaiting     TaskStatus = "WAITING"       // 等待机器领取
	TaskStatusProcessing  TaskStatus = "PROCESSING"    // 机器执行中(可选标记)
	TaskStatusCompleted   TaskStatus = "COMPLETED"     // 签章成功
	TaskStatusFailed      TaskStatus = "FAILED"        // 执行失败
	TaskStatusUSBNotFound TaskStatus = "USB_NOT_FOUND" // USB签章设备缺失
)

// Valid 检查状态值是否为五个已定义值之一
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusWaiting, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed, TaskStatusUSBNotFound:
		return true
	}
	return false
}

// Terminal 检查是否为终态
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusUSBNotFound:
		return true
	}
	return false
}

// TaskKind 任务种类
type TaskKind string

const (
	TaskKindSingleInvoice    TaskKind = "SingleInvoiceTask"    // 买方逐张签章
	TaskKindMultipleInvoices TaskKind = "MultipleInvoicesTask" // 供方批量签章
)

// SingleInvoiceTaskData 单发票签章任务内容
// 自然键 (idno, operator, series, number) 唯一，重复创建必须被拒绝
type SingleInvoiceTaskData struct {
	TaskUUID   string `json:"task_id" gorm:"column:task_uuid;type:char(36);primaryKey;comment:任务UUID"`
	IDNO       string `json:"company_idno" gorm:"column:idno;size:50;not null;uniqueIndex:uniq_single_invoice_task,priority:1;comment:本方公司IDNO"`
	Operator   string `json:"operator_identity" gorm:"column:operator;size:100;not null;uniqueIndex:uniq_single_invoice_task,priority:2;comment:操作员证书名"`
	Series     string `json:"series" gorm:"column:series;size:50;not null;uniqueIndex:uniq_single_invoice_task,priority:3;comment:发票序列"`
	Number     int    `json:"number" gorm:"column:number;not null;uniqueIndex:uniq_single_invoice_task,priority:4;comment:发票号"`
	ActionType string `json:"action_type" gorm:"size:50;not null;comment:动作类型"`
}

// TableName 指定表名
func (SingleInvoiceTaskData) TableName() string {
	return "single_invoice_task_data"
}

// NaturalKey 返回自然键的展示形式，用于错误信息定位冲突项
func (t *SingleInvoiceTaskData) NaturalKey() string {
	return fmt.Sprintf("%s/%s/%s/%d", t.IDNO, t.Operator, t.Series, t.Number)
}

// MultipleInvoicesTaskData 批量发票签章任务内容
// 自然键 (idno, operator, counterparty_idno, signature_kind) 唯一
type MultipleInvoicesTaskData struct {
	TaskUUID         string `json:"task_id" gorm:"column:task_uuid;type:char(36);primaryKey;comment:任务UUID"`
	IDNO             string `json:"company_idno" gorm:"column:idno;size:50;not null;uniqueIndex:uniq_multiple_invoices_task,priority:1;comment:本方公司IDNO"`
	Operator         string `json:"operator_identity" gorm:"column:operator;size:100;not null;uniqueIndex:uniq_multiple_invoices_task,priority:2;comment:操作员证书名"`
	CounterpartyIDNO string `json:"counterparty_idno" gorm:"column:counterparty_idno;size:50;not null;uniqueIndex:uniq_multiple_invoices_task,priority:3;comment:对方公司IDNO"`
	SignatureKind    string `json:"signature_kind" gorm:"column:signature_kind;size:50;not null;uniqueIndex:uniq_multiple_invoices_task,priority:4;comment:签章种类"`
	ActionType       string `json:"action_type" gorm:"size:50;not null;comment:动作类型"`
}

// TableName 指定表名
func (MultipleInvoicesTaskData) TableName() string {
	return "multiple_invoices_task_data"
}

// NaturalKey 返回自然键的展示形式
func (t *MultipleInvoicesTaskData) NaturalKey() string {
	return fmt.Sprintf("%s/%s/%s/%s", t.IDNO, t.Operator, t.CounterpartyIDNO, t.SignatureKind)
}

// CompanyTask 任务所有权记录
// 与任务内容在同一事务内创建，初始状态 WAITING
// 所有权(task_uuid, company_uuid)创建后不可变，之后只有 status 可变
type CompanyTask struct {
	TaskUUID    string     `json:"task_id" gorm:"column:task_uuid;type:char(36);primaryKey;comment:任务UUID"`
	CompanyUUID string     `json:"company_uuid" gorm:"type:char(36);index;not null;comment:所有者公司UUID"`
	Status      TaskStatus `json:"status" gorm:"size:20;not null;comment:任务状态"`
	TaskType    TaskKind   `json:"task_type" gorm:"size:50;not null;comment:任务种类"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime;comment:创建时间"`
}

// TableName 指定表名
func (CompanyTask) TableName() string {
	return "company_tasks"
}
