/**
 * 仓库层:任务数据访问
 * @author: sun977
 * @date: 2025.11.04
 * @description: 任务内容和所有权记录的数据访问层
 * @func:
 * 1.自然键存在性判定
 * 2.任务内容+所有权记录的事务性创建
 * 3.按UUID批量查询所有权记录
 * 4.状态更新
 * 5.机器消费视角的等待任务检索
 * @note: 单纯数据访问，业务校验(去重/归属)在 service 层
 */
package mysql

import (
	"context"
	"errors"

	"signhub/internal/model"

	"gorm.io/gorm"
)

// TaskRepository 任务仓库接口
type TaskRepository interface {
	// 存在性判定(自然键)
	SingleInvoiceExists(ctx context.Context, item *model.SingleInvoiceItem) (bool, error)
	MultipleInvoicesExists(ctx context.Context, item *model.MultipleInvoicesItem) (bool, error)

	// 任务内容+所有权记录在同一事务内创建，避免孤儿内容行
	CreateSingleInvoiceTask(ctx context.Context, content *model.SingleInvoiceTaskData, companyUUID string) error
	CreateMultipleInvoicesTask(ctx context.Context, content *model.MultipleInvoicesTaskData, companyUUID string) error

	// 所有权记录检索
	GetCompanyTask(ctx context.Context, taskUUID string) (*model.CompanyTask, error)
	ListCompanyTasksByIDs(ctx context.Context, taskUUIDs []string) ([]model.CompanyTask, error)

	// 状态更新
	UpdateTaskStatus(ctx context.Context, taskUUID string, status model.TaskStatus) error

	// 状态查询标识解析
	GetSingleInvoiceByIdentifier(ctx context.Context, query *model.SingleInvoiceStatusQuery) (*model.SingleInvoiceTaskData, error)

	// 机器消费视角的等待任务，按 操作员、公司IDNO 排序返回
	ListWaitingSingleInvoiceTasks(ctx context.Context, companyUUID string) ([]model.SingleInvoiceTaskData, error)
	ListWaitingMultipleInvoicesTasks(ctx context.Context, companyUUID string) ([]model.MultipleInvoicesTaskData, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository 创建任务仓库实例
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{
		db: db,
	}
}

// SingleInvoiceExists 判定单发票任务自然键是否已存在
func (r *taskRepository) SingleInvoiceExists(ctx context.Context, item *model.SingleInvoiceItem) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SingleInvoiceTaskData{}).
		Where("idno = ? AND operator = ? AND series = ? AND number = ?",
			item.CompanyIDNO, item.Operator, item.Series, item.Number).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MultipleInvoicesExists 判定批量发票任务自然键是否已存在
func (r *taskRepository) MultipleInvoicesExists(ctx context.Context, item *model.MultipleInvoicesItem) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.MultipleInvoicesTaskData{}).
		Where("idno = ? AND operator = ? AND counterparty_idno = ? AND signature_kind = ?",
			item.CompanyIDNO, item.Operator, item.CounterpartyIDNO, item.SignatureKind).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateSingleInvoiceTask 事务性创建单发票任务内容和所有权记录
// 两条写入要么都成功要么都回滚，初始状态 WAITING
func (r *taskRepository) CreateSingleInvoiceTask(ctx context.Context, content *model.SingleInvoiceTaskData, companyUUID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(content).Error; err != nil {
			return err
		}
		ownership := &model.CompanyTask{
			TaskUUID:    content.TaskUUID,
			CompanyUUID: companyUUID,
			Status:      model.TaskStatusWaiting,
			TaskType:    model.TaskKindSingleInvoice,
		}
		return tx.Create(ownership).Error
	})
}

// CreateMultipleInvoicesTask 事务性创建批量发票任务内容和所有权记录
func (r *taskRepository) CreateMultipleInvoicesTask(ctx context.Context, content *model.MultipleInvoicesTaskData, companyUUID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(content).Error; err != nil {
			return err
		}
		ownership := &model.CompanyTask{
			TaskUUID:    content.TaskUUID,
			CompanyUUID: companyUUID,
			Status:      model.TaskStatusWaiting,
			TaskType:    model.TaskKindMultipleInvoices,
		}
		return tx.Create(ownership).Error
	})
}

// GetCompanyTask 获取指定任务的所有权记录，不存在时返回 nil, nil
func (r *taskRepository) GetCompanyTask(ctx context.Context, taskUUID string) (*model.CompanyTask, error) {
	var task model.CompanyTask
	err := r.db.WithContext(ctx).Where("task_uuid = ?", taskUUID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

// ListCompanyTasksByIDs 批量获取所有权记录，用于归属校验
func (r *taskRepository) ListCompanyTasksByIDs(ctx context.Context, taskUUIDs []string) ([]model.CompanyTask, error) {
	if len(taskUUIDs) == 0 {
		return nil, nil
	}
	var tasks []model.CompanyTask
	err := r.db.WithContext(ctx).
		Where("task_uuid IN ?", taskUUIDs).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTaskStatus 更新任务状态
func (r *taskRepository) UpdateTaskStatus(ctx context.Context, taskUUID string, status model.TaskStatus) error {
	return r.db.WithContext(ctx).Model(&model.CompanyTask{}).
		Where("task_uuid = ?", taskUUID).
		Update("status", status).Error
}

// GetSingleInvoiceByIdentifier 按 (idno, series, number) 解析单发票任务内容
// 不存在时返回 nil, nil
func (r *taskRepository) GetSingleInvoiceByIdentifier(ctx context.Context, query *model.SingleInvoiceStatusQuery) (*model.SingleInvoiceTaskData, error) {
	var content model.SingleInvoiceTaskData
	err := r.db.WithContext(ctx).
		Where("idno = ? AND series = ? AND number = ?", query.CompanyIDNO, query.Series, query.Number).
		First(&content).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &content, nil
}

// ListWaitingSingleInvoiceTasks 获取指定公司处于 WAITING 的单发票任务
func (r *taskRepository) ListWaitingSingleInvoiceTasks(ctx context.Context, companyUUID string) ([]model.SingleInvoiceTaskData, error) {
	var tasks []model.SingleInvoiceTaskData
	err := r.db.WithContext(ctx).
		Joins("JOIN company_tasks ON company_tasks.task_uuid = single_invoice_task_data.task_uuid").
		Where("company_tasks.company_uuid = ? AND company_tasks.status = ?", companyUUID, model.TaskStatusWaiting).
		Order("single_invoice_task_data.operator, single_invoice_task_data.idno").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListWaitingMultipleInvoicesTasks 获取指定公司处于 WAITING 的批量发票任务
func (r *taskRepository) ListWaitingMultipleInvoicesTasks(ctx context.Context, companyUUID string) ([]model.MultipleInvoicesTaskData, error) {
	var tasks []model.MultipleInvoicesTaskData
	err := r.db.WithContext(ctx).
		Joins("JOIN company_tasks ON company_tasks.task_uuid = multiple_invoices_task_data.task_uuid").
		Where("company_tasks.company_uuid = ? AND company_tasks.status = ?", companyUUID, model.TaskStatusWaiting).
		Order("multiple_invoices_task_data.operator, multiple_invoices_task_data.idno").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
