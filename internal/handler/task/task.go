/**
 * 处理器:任务相关接口
 * @author: sun977
 * @date: 2025.11.21
 * @description: 任务创建、状态查询、状态回报、机器拉取等HTTP接口处理器
 * @func:
 *   - CreateSingleInvoiceTasks 买方单发票签章任务批量创建
 *   - CreateMultipleInvoicesTasks 供方批量发票签章任务批量创建
 *   - GetSingleInvoiceStatus 单发票任务状态查询
 *   - UpdateTaskStatuses 机器回报任务状态
 *   - GetMachineTasks 机器拉取等待任务
 */
package task

import (
	"errors"
	"net/http"

	"signhub/internal/app/registry/middleware"
	"signhub/internal/model"
	"signhub/internal/pkg/logger"
	"signhub/internal/pkg/utils"
	taskService "signhub/internal/service/task"

	"github.com/gin-gonic/gin"
)

// TaskHandler 任务接口处理器
type TaskHandler struct {
	taskService taskService.TaskService
}

// NewTaskHandler 创建任务处理器实例
func NewTaskHandler(taskService taskService.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateSingleInvoiceTasks 买方单发票签章任务批量创建接口
// 整批请求要么全部入库要么全部拒绝（批内重复/已存在均拒绝整批）
// @Router /tasks/buyer/sign_single_invoice [post]
func (h *TaskHandler) CreateSingleInvoiceTasks(c *gin.Context) {
	company := middleware.RequireCompany(c)
	if company == nil {
		return
	}

	var req model.CreateSingleInvoiceTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	if err := h.taskService.CreateSingleInvoiceTasks(c.Request.Context(), company, &req); err != nil {
		h.writeTaskError(c, company, "create_single_invoice_tasks", err)
		return
	}

	logger.LogBusinessOperation("create_single_invoice_tasks", company.CompanyUUID, company.Name,
		utils.GetClientIP(c), c.GetHeader("X-Request-ID"), "success", "单发票任务批量创建成功", map[string]interface{}{
			"task_count":  len(req.Invoices),
			"action_type": req.ActionType,
		})
	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "tasks created",
	})
}

// CreateMultipleInvoicesTasks 供方批量发票签章任务批量创建接口
// @Router /tasks/supplier/sign_all_invoices [post]
func (h *TaskHandler) CreateMultipleInvoicesTasks(c *gin.Context) {
	company := middleware.RequireCompany(c)
	if company == nil {
		return
	}

	var req model.CreateMultipleInvoicesTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	if err := h.taskService.CreateMultipleInvoicesTasks(c.Request.Context(), company, &req); err != nil {
		h.writeTaskError(c, company, "create_multiple_invoices_tasks", err)
		return
	}

	logger.LogBusinessOperation("create_multiple_invoices_tasks", company.CompanyUUID, company.Name,
		utils.GetClientIP(c), c.GetHeader("X-Request-ID"), "success", "批量发票任务创建成功", map[string]interface{}{
			"task_count":  len(req.Invoices),
			"action_type": req.ActionType,
		})
	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "tasks created",
	})
}

// GetSingleInvoiceStatus 单发票任务状态查询接口
// 每个查询标识恰好返回一个状态条目，顺序与请求一致
// @Router /tasks/status/singleInvoice [post]
func (h *TaskHandler) GetSingleInvoiceStatus(c *gin.Context) {
	company := middleware.RequireCompany(c)
	if company == nil {
		return
	}

	var queries []model.SingleInvoiceStatusQuery
	if err := c.ShouldBindJSON(&queries); err != nil {
		writeBadRequest(c, err)
		return
	}
	if len(queries) == 0 {
		writeBadRequest(c, errors.New("empty query list"))
		return
	}

	resp, err := h.taskService.GetSingleInvoiceStatus(c.Request.Context(), company, queries)
	if err != nil {
		h.writeTaskError(c, company, "get_single_invoice_status", err)
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "status query ok",
		Data:    resp,
	})
}

// UpdateTaskStatuses 机器回报任务状态接口
// 所有状态值先整体校验，任一非法则整批拒绝
// @Router /tasks/status [put]
func (h *TaskHandler) UpdateTaskStatuses(c *gin.Context) {
	company := middleware.RequireCompany(c)
	if company == nil {
		return
	}

	var updates []model.TaskStatusUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		writeBadRequest(c, err)
		return
	}
	if len(updates) == 0 {
		writeBadRequest(c, errors.New("empty update list"))
		return
	}

	if err := h.taskService.UpdateTaskStatuses(c.Request.Context(), company, updates); err != nil {
		h.writeTaskError(c, company, "update_task_statuses", err)
		return
	}

	logger.LogBusinessOperation("update_task_statuses", company.CompanyUUID, company.Name,
		utils.GetClientIP(c), c.GetHeader("X-Request-ID"), "success", "任务状态回报成功", map[string]interface{}{
			"update_count": len(updates),
		})
	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "statuses updated",
	})
}

// GetMachineTasks 机器拉取等待任务接口
// 返回按 操作员证书名 -> 公司IDNO 两级分组的WAITING任务
// @Router /machine/tasks [get]
func (h *TaskHandler) GetMachineTasks(c *gin.Context) {
	company := middleware.RequireCompany(c)
	if company == nil {
		return
	}

	resp, err := h.taskService.ListWaitingForMachine(c.Request.Context(), company)
	if err != nil {
		h.writeTaskError(c, company, "get_machine_tasks", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// writeTaskError 将服务层的类型化错误映射为HTTP状态码并记录错误日志
// 映射关系:
//   - DuplicateTasksError / TasksExistError -> 409
//   - InvalidStatusError -> 400
//   - TaskNotFoundError -> 404
//   - TaskNotOwnedError -> 403
//   - 其余（含StorageError）-> 500
func (h *TaskHandler) writeTaskError(c *gin.Context, company *model.Company, operation string, err error) {
	clientIP := utils.GetClientIP(c)
	requestID := c.GetHeader("X-Request-ID")

	logger.LogBusinessError(err, requestID, company.CompanyUUID, clientIP, c.Request.URL.Path, c.Request.Method, map[string]interface{}{
		"operation": operation,
	})

	status := http.StatusInternalServerError
	message := "internal server error"

	var dupErr *model.DuplicateTasksError
	var existErr *model.TasksExistError
	var notFoundErr *model.TaskNotFoundError
	var notOwnedErr *model.TaskNotOwnedError
	var statusErr *model.InvalidStatusError

	switch {
	case errors.As(err, &dupErr):
		status = http.StatusConflict
		message = "duplicate tasks in request"
	case errors.As(err, &existErr):
		status = http.StatusConflict
		message = "tasks already exist"
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
		message = "tasks not found"
	case errors.As(err, &notOwnedErr):
		status = http.StatusForbidden
		message = "tasks not owned by company"
	case errors.As(err, &statusErr):
		status = http.StatusBadRequest
		message = "invalid task status"
	}

	c.JSON(status, model.APIResponse{
		Code:    status,
		Status:  "failed",
		Message: message,
		Error:   err.Error(),
	})
}

// writeBadRequest 写入400响应
func writeBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, model.APIResponse{
		Code:    http.StatusBadRequest,
		Status:  "failed",
		Message: "invalid request body",
		Error:   err.Error(),
	})
}
