/**
 * 服务层:任务编排业务逻辑
 * @author: sun977
 * @date: 2025.11.05
 * @description: 任务创建(去重/存在性校验)、归属校验、状态流转、机器消费视图
 * @func:
 * 1.CreateSingleInvoiceTasks 创建单发票签章任务
 * 2.CreateMultipleInvoicesTasks 创建批量发票签章任务
 * 3.GetSingleInvoiceStatus 按标识查询任务状态
 * 4.UpdateTaskStatuses 按UUID批量更新状态
 * 5.ListWaitingForMachine 机器消费视角的等待任务
 * @note: 业务不变量只在这一层强制，仓库层只做数据访问
 */
package task

import (
	"context"
	"errors"

	"signhub/internal/model"
	"signhub/internal/repo/mysql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskService 任务编排服务接口
type TaskService interface {
	CreateSingleInvoiceTasks(ctx context.Context, company *model.Company, req *model.CreateSingleInvoiceTasksRequest) error
	CreateMultipleInvoicesTasks(ctx context.Context, company *model.Company, req *model.CreateMultipleInvoicesTasksRequest) error
	GetSingleInvoiceStatus(ctx context.Context, company *model.Company, queries []model.SingleInvoiceStatusQuery) (*model.SingleInvoiceStatusResponse, error)
	UpdateTaskStatuses(ctx context.Context, company *model.Company, updates []model.TaskStatusUpdate) error
	ListWaitingForMachine(ctx context.Context, company *model.Company) (*model.MachineTasksResponse, error)
}

// taskService 任务编排服务实现
type taskService struct {
	taskRepo mysql.TaskRepository
}

// NewTaskService 创建任务编排服务实例
func NewTaskService(taskRepo mysql.TaskRepository) TaskService {
	return &taskService{
		taskRepo: taskRepo,
	}
}

// CreateSingleInvoiceTasks 创建单发票签章任务
// 校验顺序: 1.请求内去重 2.存在性检查 3.逐项事务性落库(WAITING)
// 前两步失败时整批拒绝，不产生任何写入
func (s *taskService) CreateSingleInvoiceTasks(ctx context.Context, company *model.Company, req *model.CreateSingleInvoiceTasksRequest) error {
	// 1. 请求内去重
	seen := make(map[string]bool, len(req.Invoices))
	var duplicates []string
	for i := range req.Invoices {
		key := req.Invoices[i].NaturalKey()
		if seen[key] {
			duplicates = append(duplicates, key)
		} else {
			seen[key] = true
		}
	}
	if len(duplicates) > 0 {
		return &model.DuplicateTasksError{Duplicates: duplicates}
	}

	// 2. 存在性检查
	var existing []string
	for i := range req.Invoices {
		exists, err := s.taskRepo.SingleInvoiceExists(ctx, &req.Invoices[i])
		if err != nil {
			return model.NewStorageError(err)
		}
		if exists {
			existing = append(existing, req.Invoices[i].NaturalKey())
		}
	}
	if len(existing) > 0 {
		return &model.TasksExistError{Existing: existing}
	}

	// 3. 逐项创建内容+所有权记录(同一事务)
	// 检查和写入之间存在竞争窗口，自然键唯一约束是真正的安全网，
	// 约束冲突同样映射为"已存在"
	for i := range req.Invoices {
		item := &req.Invoices[i]
		content := &model.SingleInvoiceTaskData{
			TaskUUID:   uuid.NewString(),
			IDNO:       item.CompanyIDNO,
			Operator:   item.Operator,
			Series:     item.Series,
			Number:     item.Number,
			ActionType: req.ActionType,
		}
		if err := s.taskRepo.CreateSingleInvoiceTask(ctx, content, company.CompanyUUID); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &model.TasksExistError{Existing: []string{item.NaturalKey()}}
			}
			return model.NewStorageError(err)
		}
	}

	return nil
}

// CreateMultipleInvoicesTasks 创建批量发票签章任务
// 结构与单发票一致，自然键为 (idno, operator, counterparty_idno, signature_kind)
func (s *taskService) CreateMultipleInvoicesTasks(ctx context.Context, company *model.Company, req *model.CreateMultipleInvoicesTasksRequest) error {
	// 1. 请求内去重
	seen := make(map[string]bool, len(req.Invoices))
	var duplicates []string
	for i := range req.Invoices {
		key := req.Invoices[i].NaturalKey()
		if seen[key] {
			duplicates = append(duplicates, key)
		} else {
			seen[key] = true
		}
	}
	if len(duplicates) > 0 {
		return &model.DuplicateTasksError{Duplicates: duplicates}
	}

	// 2. 存在性检查
	var existing []string
	for i := range req.Invoices {
		exists, err := s.taskRepo.MultipleInvoicesExists(ctx, &req.Invoices[i])
		if err != nil {
			return model.NewStorageError(err)
		}
		if exists {
			existing = append(existing, req.Invoices[i].NaturalKey())
		}
	}
	if len(existing) > 0 {
		return &model.TasksExistError{Existing: existing}
	}

	// 3. 逐项创建内容+所有权记录(同一事务)
	for i := range req.Invoices {
		item := &req.Invoices[i]
		content := &model.MultipleInvoicesTaskData{
			TaskUUID:         uuid.NewString(),
			IDNO:             item.CompanyIDNO,
			Operator:         item.Operator,
			CounterpartyIDNO: item.CounterpartyIDNO,
			SignatureKind:    item.SignatureKind,
			ActionType:       req.ActionType,
		}
		if err := s.taskRepo.CreateMultipleInvoicesTask(ctx, content, company.CompanyUUID); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &model.TasksExistError{Existing: []string{item.NaturalKey()}}
			}
			return model.NewStorageError(err)
		}
	}

	return nil
}

// verifyOwnership 校验整组任务UUID的存在性和归属
// 任何UUID未知 -> TaskNotFoundError(优先于归属错误)
// 任何UUID属于其他公司 -> TaskNotOwnedError
// 全部通过时返回 UUID -> 所有权记录 的映射
func (s *taskService) verifyOwnership(ctx context.Context, company *model.Company, taskUUIDs []string) (map[string]model.CompanyTask, error) {
	tasks, err := s.taskRepo.ListCompanyTasksByIDs(ctx, taskUUIDs)
	if err != nil {
		return nil, model.NewStorageError(err)
	}

	owned := make(map[string]model.CompanyTask, len(tasks))
	for _, t := range tasks {
		owned[t.TaskUUID] = t
	}

	var notFound []string
	var notOwned []string
	for _, id := range taskUUIDs {
		t, ok := owned[id]
		if !ok {
			notFound = append(notFound, id)
			continue
		}
		if t.CompanyUUID != company.CompanyUUID {
			notOwned = append(notOwned, id)
		}
	}

	if len(notFound) > 0 {
		return nil, &model.TaskNotFoundError{TaskIDs: notFound}
	}
	if len(notOwned) > 0 {
		return nil, &model.TaskNotOwnedError{TaskIDs: notOwned}
	}

	return owned, nil
}

// GetSingleInvoiceStatus 按 (idno, series, number) 标识批量查询任务状态
// 返回条目数恰好等于查询条目数，顺序与请求一致
func (s *taskService) GetSingleInvoiceStatus(ctx context.Context, company *model.Company, queries []model.SingleInvoiceStatusQuery) (*model.SingleInvoiceStatusResponse, error) {
	// 1. 标识解析为任务UUID
	contents := make([]*model.SingleInvoiceTaskData, len(queries))
	var unknown []string
	for i := range queries {
		content, err := s.taskRepo.GetSingleInvoiceByIdentifier(ctx, &queries[i])
		if err != nil {
			return nil, model.NewStorageError(err)
		}
		if content == nil {
			unknown = append(unknown, (&model.SingleInvoiceTaskData{
				IDNO:   queries[i].CompanyIDNO,
				Series: queries[i].Series,
				Number: queries[i].Number,
			}).NaturalKey())
			continue
		}
		contents[i] = content
	}
	if len(unknown) > 0 {
		return nil, &model.TaskNotFoundError{TaskIDs: unknown}
	}

	// 2. 整组归属校验
	taskUUIDs := make([]string, len(contents))
	for i, c := range contents {
		taskUUIDs[i] = c.TaskUUID
	}
	owned, err := s.verifyOwnership(ctx, company, taskUUIDs)
	if err != nil {
		return nil, err
	}

	// 3. 按请求顺序组装状态条目
	resp := &model.SingleInvoiceStatusResponse{
		Tasks: make([]model.SingleInvoiceStatusEntry, len(queries)),
	}
	for i := range queries {
		resp.Tasks[i] = model.SingleInvoiceStatusEntry{
			CompanyIDNO: queries[i].CompanyIDNO,
			Series:      queries[i].Series,
			Number:      queries[i].Number,
			Status:      owned[contents[i].TaskUUID].Status,
		}
	}

	return resp, nil
}

// UpdateTaskStatuses 按任务UUID批量更新状态
// 校验顺序: 1.状态值合法性(任何写入之前) 2.整组归属校验 3.逐项更新
func (s *taskService) UpdateTaskStatuses(ctx context.Context, company *model.Company, updates []model.TaskStatusUpdate) error {
	// 1. 状态值校验
	for _, u := range updates {
		if !u.Status.Valid() {
			return &model.InvalidStatusError{Status: string(u.Status)}
		}
	}

	// 2. 整组归属校验
	taskUUIDs := make([]string, len(updates))
	for i, u := range updates {
		taskUUIDs[i] = u.TaskID
	}
	if _, err := s.verifyOwnership(ctx, company, taskUUIDs); err != nil {
		return err
	}

	// 3. 逐项更新
	for _, u := range updates {
		if err := s.taskRepo.UpdateTaskStatus(ctx, u.TaskID, u.Status); err != nil {
			return model.NewStorageError(err)
		}
	}

	return nil
}

// ListWaitingForMachine 机器消费视角的等待任务
// 两类任务都按 操作员 -> 本方公司IDNO 两级分组
func (s *taskService) ListWaitingForMachine(ctx context.Context, company *model.Company) (*model.MachineTasksResponse, error) {
	singles, err := s.taskRepo.ListWaitingSingleInvoiceTasks(ctx, company.CompanyUUID)
	if err != nil {
		return nil, model.NewStorageError(err)
	}
	multiples, err := s.taskRepo.ListWaitingMultipleInvoicesTasks(ctx, company.CompanyUUID)
	if err != nil {
		return nil, model.NewStorageError(err)
	}

	resp := &model.MachineTasksResponse{
		SingleInvoiceTask:    make(map[string]map[string][]model.MachineSingleInvoiceTask),
		MultipleInvoicesTask: make(map[string]map[string][]model.MachineMultipleInvoicesTask),
	}

	for _, t := range singles {
		byIDNO, ok := resp.SingleInvoiceTask[t.Operator]
		if !ok {
			byIDNO = make(map[string][]model.MachineSingleInvoiceTask)
			resp.SingleInvoiceTask[t.Operator] = byIDNO
		}
		byIDNO[t.IDNO] = append(byIDNO[t.IDNO], model.MachineSingleInvoiceTask{
			Series:     t.Series,
			Number:     t.Number,
			TaskID:     t.TaskUUID,
			ActionType: t.ActionType,
		})
	}

	for _, t := range multiples {
		byIDNO, ok := resp.MultipleInvoicesTask[t.Operator]
		if !ok {
			byIDNO = make(map[string][]model.MachineMultipleInvoicesTask)
			resp.MultipleInvoicesTask[t.Operator] = byIDNO
		}
		byIDNO[t.IDNO] = append(byIDNO[t.IDNO], model.MachineMultipleInvoicesTask{
			CounterpartyIDNO: t.CounterpartyIDNO,
			SignatureKind:    t.SignatureKind,
			TaskID:           t.TaskUUID,
			ActionType:       t.ActionType,
		})
	}

	return resp, nil
}
