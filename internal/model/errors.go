/**
 * 模型:错误定义
 * @author: sun977
 * @date: 2025.11.03
 * @description: 业务错误类型定义，带冲突键信息的结构化错误
 * @func: 各种业务错误类型和哨兵错误
 */
package model

import (
	"errors"
	"fmt"
	"strings"
)

// 认证相关错误
var (
	ErrCompanyNotFound = errors.New("公司不存在")
	ErrUnauthorized    = errors.New("认证凭证无效")
)

// DuplicateTasksError 请求批次内存在重复自然键
// 在任何持久化之前检测并整体拒绝
type DuplicateTasksError struct {
	Duplicates []string // 冲突的自然键列表
}

// Error 实现error接口
func (e *DuplicateTasksError) Error() string {
	return fmt.Sprintf("请求内存在重复任务: %s", strings.Join(e.Duplicates, ", "))
}

// TasksExistError 任务自然键已存在于存储中
type TasksExistError struct {
	Existing []string // 已存在的自然键列表
}

// Error 实现error接口
func (e *TasksExistError) Error() string {
	return fmt.Sprintf("任务已存在: %s", strings.Join(e.Existing, ", "))
}

// TaskNotFoundError 引用的任务UUID不存在
// 与"不属于本公司"区分，不能把未知ID静默当作无权访问
type TaskNotFoundError struct {
	TaskIDs []string // 未知的任务UUID列表
}

// Error 实现error接口
func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("任务不存在: %s", strings.Join(e.TaskIDs, ", "))
}

// TaskNotOwnedError 任务存在但属于其他公司
type TaskNotOwnedError struct {
	TaskIDs []string // 不属于请求方的任务UUID列表
}

// Error 实现error接口
func (e *TaskNotOwnedError) Error() string {
	return fmt.Sprintf("任务不属于当前公司: %s", strings.Join(e.TaskIDs, ", "))
}

// InvalidStatusError 状态值不在五个已定义值之内
// 在任何写入之前检测
type InvalidStatusError struct {
	Status string // 非法的状态值
}

// Error 实现error接口
func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("非法的任务状态: %s", e.Status)
}

// StorageError 存储层失败
// 统一包装底层持久化错误，上层不解释存储特定的错误码，
// 对外只暴露通用信息，底层原因保留在Cause中用于日志
type StorageError struct {
	Cause string // 底层错误描述
}

// Error 实现error接口
func (e *StorageError) Error() string {
	return fmt.Sprintf("存储操作失败: %s", e.Cause)
}

// NewStorageError 包装底层持久化错误
func NewStorageError(err error) *StorageError {
	return &StorageError{Cause: err.Error()}
}
