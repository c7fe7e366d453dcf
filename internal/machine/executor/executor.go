/**
 * 执行器:任务组执行器
 * @author: sun977
 * @date: 2025.11.22
 * @description: 按 操作员 -> 公司IDNO 分组消费任务，每组一个签章会话，保证每个任务恰好产出一个终态
 * @func:
 *   - Execute 执行一批分组任务，返回与任务一一对应的状态回报
 */
package executor

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"signhub/internal/machine/actuator"
	"signhub/internal/model"
	"signhub/internal/pkg/logger"
)

// Executor 任务组执行器
type Executor struct {
	factory   actuator.Factory
	operators map[string]string // 操作员证书名 -> USB PIN
}

// NewExecutor 创建执行器实例
func NewExecutor(factory actuator.Factory, operators map[string]string) *Executor {
	return &Executor{
		factory:   factory,
		operators: operators,
	}
}

// Execute 执行一批分组任务
// 每个收到的任务恰好产出一个状态回报，单个任务或任务组失败不影响其他组
func (e *Executor) Execute(ctx context.Context, tasks *model.MachineTasksResponse) []model.TaskStatusUpdate {
	var results []model.TaskStatusUpdate

	// 单发票任务以买方身份执行
	for _, operator := range sortedKeys(tasks.SingleInvoiceTask) {
		byIDNO := tasks.SingleInvoiceTask[operator]
		for _, idno := range sortedKeys(byIDNO) {
			group := byIDNO[idno]
			results = append(results, e.executeSingleGroup(ctx, operator, idno, group)...)
		}
	}

	// 批量发票任务以供方身份执行
	for _, operator := range sortedKeys(tasks.MultipleInvoicesTask) {
		byIDNO := tasks.MultipleInvoicesTask[operator]
		for _, idno := range sortedKeys(byIDNO) {
			group := byIDNO[idno]
			results = append(results, e.executeBulkGroup(ctx, operator, idno, group)...)
		}
	}

	return results
}

// executeSingleGroup 执行一组单发票任务
func (e *Executor) executeSingleGroup(ctx context.Context, operator, idno string, group []model.MachineSingleInvoiceTask) []model.TaskStatusUpdate {
	taskIDs := make([]string, len(group))
	for i, t := range group {
		taskIDs[i] = t.TaskID
	}

	session, groupStatus := e.openSession(ctx, operator, idno, actuator.RoleBuyer)
	if session == nil {
		// 会话建立失败，整组统一终态
		return fillStatuses(taskIDs, groupStatus)
	}
	defer session.Release()

	results := make([]model.TaskStatusUpdate, 0, len(group))
	for _, task := range group {
		status := e.runTask(ctx, operator, idno, task.TaskID, func() error {
			return session.PerformSingleAction(ctx, task.Series, task.Number, task.ActionType)
		})
		results = append(results, model.TaskStatusUpdate{
			TaskID: task.TaskID,
			Status: status,
		})
	}
	return results
}

// executeBulkGroup 执行一组批量发票任务
func (e *Executor) executeBulkGroup(ctx context.Context, operator, idno string, group []model.MachineMultipleInvoicesTask) []model.TaskStatusUpdate {
	taskIDs := make([]string, len(group))
	for i, t := range group {
		taskIDs[i] = t.TaskID
	}

	session, groupStatus := e.openSession(ctx, operator, idno, actuator.RoleSupplier)
	if session == nil {
		return fillStatuses(taskIDs, groupStatus)
	}
	defer session.Release()

	results := make([]model.TaskStatusUpdate, 0, len(group))
	for _, task := range group {
		status := e.runTask(ctx, operator, idno, task.TaskID, func() error {
			return session.PerformBulkAction(ctx, task.CounterpartyIDNO, task.SignatureKind, task.ActionType)
		})
		results = append(results, model.TaskStatusUpdate{
			TaskID: task.TaskID,
			Status: status,
		})
	}
	return results
}

// openSession 建立并登录一个任务组的签章会话
// 失败时返回 (nil, FAILED)：登录阶段失败整组按FAILED上报,USB_NOT_FOUND只在单任务动作阶段产生
func (e *Executor) openSession(ctx context.Context, operator, idno string, role actuator.Role) (actuator.Actuator, model.TaskStatus) {
	pin, ok := e.operators[operator]
	if !ok {
		logger.LogSystemEvent("executor", "unknown_operator", "操作员未配置PIN,跳过任务组", logger.WarnLevel, map[string]interface{}{
			"operator":     operator,
			"company_idno": idno,
		})
		return nil, model.TaskStatusFailed
	}

	session, err := e.factory.NewSession(ctx)
	if err != nil {
		e.logGroupError(err, operator, idno, "open_session")
		return nil, model.TaskStatusFailed
	}

	// 登录序列：选证书 -> 输PIN -> 选公司和角色
	// 任一步失败则整组统一上报FAILED
	steps := []struct {
		name string
		run  func() error
	}{
		{"select_certificate", func() error { return session.AuthenticateAndSelectCertificate(ctx, operator) }},
		{"enter_pin", func() error { return session.EnterCredential(ctx, pin) }},
		{"select_company", func() error { return session.SelectCompanyAndRole(ctx, idno, role) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			e.logGroupError(err, operator, idno, step.name)
			session.Release()
			return nil, model.TaskStatusFailed
		}
	}

	return session, ""
}

// runTask 执行单个任务并分类其终态，panic也收敛为FAILED
func (e *Executor) runTask(ctx context.Context, operator, idno, taskID string, action func() error) (status model.TaskStatus) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogSystemEvent("executor", "task_panic", "任务执行panic", logger.ErrorLevel, map[string]interface{}{
				"task_id":      taskID,
				"operator":     operator,
				"company_idno": idno,
				"panic":        fmt.Sprintf("%v", r),
			})
			status = model.TaskStatusFailed
		}
	}()

	if err := action(); err != nil {
		logger.LogSystemEvent("executor", "task_failed", "任务执行失败", logger.WarnLevel, map[string]interface{}{
			"task_id":      taskID,
			"operator":     operator,
			"company_idno": idno,
			"error":        err.Error(),
		})
		return classifyError(err)
	}
	return model.TaskStatusCompleted
}

// classifyError 将执行错误映射为任务终态
// 设备或证书缺失 -> USB_NOT_FOUND，其余一律 FAILED
func classifyError(err error) model.TaskStatus {
	switch {
	case errors.Is(err, actuator.ErrHardwareNotFound), errors.Is(err, actuator.ErrCertificateNotFound):
		return model.TaskStatusUSBNotFound
	default:
		return model.TaskStatusFailed
	}
}

// logGroupError 记录任务组级错误
func (e *Executor) logGroupError(err error, operator, idno, step string) {
	logger.LogSystemEvent("executor", "group_error", "任务组登录失败", logger.WarnLevel, map[string]interface{}{
		"operator":     operator,
		"company_idno": idno,
		"step":         step,
		"error":        err.Error(),
	})
}

// fillStatuses 为一组任务填充统一终态
func fillStatuses(taskIDs []string, status model.TaskStatus) []model.TaskStatusUpdate {
	updates := make([]model.TaskStatusUpdate, len(taskIDs))
	for i, id := range taskIDs {
		updates[i] = model.TaskStatusUpdate{
			TaskID: id,
			Status: status,
		}
	}
	return updates
}

// sortedKeys 返回map的有序键，保证执行顺序稳定
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
