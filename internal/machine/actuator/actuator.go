/**
 * 执行器:签章自动化驱动接口
 * @author: sun977
 * @date: 2025.11.22
 * @description: 签章动作的硬件/浏览器自动化抽象，真实驱动由本机sidecar进程提供
 * @func:
 *   - Actuator 单次签章会话接口
 *   - Factory 会话工厂接口
 */
package actuator

import (
	"context"
	"errors"
)

// 签章会话的哨兵错误
// 执行器按 errors.Is 对这些错误分类，映射为任务终态
var (
	// ErrHardwareNotFound USB签章设备不在位
	ErrHardwareNotFound = errors.New("签章USB设备未找到")
	// ErrCertificateNotFound 操作员证书在设备上不存在
	ErrCertificateNotFound = errors.New("操作员证书未找到")
	// ErrAuthFailed PIN校验或登录失败
	ErrAuthFailed = errors.New("签章设备认证失败")
	// ErrNavigationFailed 自动化导航失败（页面结构变化、目标控件缺失等）
	ErrNavigationFailed = errors.New("自动化导航失败")
)

// Role 签章角色
// 同一操作员在不同任务形态下以买方或供方身份进入系统
type Role string

const (
	RoleBuyer    Role = "buyer"    // 买方，单发票签章
	RoleSupplier Role = "supplier" // 供方，批量发票签章
)

// Actuator 单次签章会话
// 一个会话对应一次 证书选择 -> PIN校验 -> 公司/角色选择 的登录过程，
// 之后可在该会话内连续执行同组的多个签章动作
type Actuator interface {
	// AuthenticateAndSelectCertificate 按操作员证书名选择证书
	AuthenticateAndSelectCertificate(ctx context.Context, operator string) error
	// EnterCredential 输入操作员PIN完成设备认证
	EnterCredential(ctx context.Context, pin string) error
	// SelectCompanyAndRole 选择公司（按IDNO）并以给定角色进入
	SelectCompanyAndRole(ctx context.Context, companyIDNO string, role Role) error
	// PerformSingleAction 对单张发票执行签章/拒签动作
	PerformSingleAction(ctx context.Context, series string, number int, actionType string) error
	// PerformBulkAction 对与对方公司相关的全部发票执行批量动作
	PerformBulkAction(ctx context.Context, counterpartyIDNO, signatureKind, actionType string) error
	// Release 释放会话占用的资源，可重复调用
	Release()
}

// Factory 会话工厂
// 每个任务组开启一个全新会话，保证组间硬件状态隔离
type Factory interface {
	NewSession(ctx context.Context) (Actuator, error)
}
