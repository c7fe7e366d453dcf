/**
 * 执行器:sidecar自动化驱动
 * @author: sun977
 * @date: 2025.11.22
 * @description: 通过本机自动化sidecar进程的HTTP接口驱动浏览器和USB签章设备
 * @func:
 *   - SidecarFactory 基于sidecar的会话工厂
 *   - sidecarSession Actuator的sidecar实现
 */
package actuator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"signhub/internal/config"
)

// sidecar错误码到哨兵错误的映射
var sidecarErrorCodes = map[string]error{
	"HARDWARE_NOT_FOUND": ErrHardwareNotFound,
	"CERT_NOT_FOUND":     ErrCertificateNotFound,
	"AUTH_FAILED":        ErrAuthFailed,
	"NAVIGATION_FAILED":  ErrNavigationFailed,
}

// sidecarResponse sidecar统一响应格式
type sidecarResponse struct {
	OK        bool   `json:"ok"`
	SessionID string `json:"session_id,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message,omitempty"`
	Present   bool   `json:"present,omitempty"` // 弹窗探测结果
}

// SidecarFactory 基于本机sidecar进程的会话工厂
type SidecarFactory struct {
	client      *http.Client
	baseURL     string
	maxAttempts int
	retryDelay  time.Duration
}

// NewSidecarFactory 创建sidecar会话工厂
func NewSidecarFactory(cfg *config.SidecarConfig) *SidecarFactory {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &SidecarFactory{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:     cfg.BaseURL,
		maxAttempts: maxAttempts,
		retryDelay:  cfg.RetryDelay,
	}
}

// NewSession 在sidecar中开启一个新的自动化会话
func (f *SidecarFactory) NewSession(ctx context.Context) (Actuator, error) {
	resp, err := f.call(ctx, http.MethodPost, "/session", nil)
	if err != nil {
		return nil, fmt.Errorf("开启sidecar会话失败: %w", err)
	}
	if resp.SessionID == "" {
		return nil, fmt.Errorf("sidecar未返回会话ID")
	}
	return &sidecarSession{
		factory:   f,
		sessionID: resp.SessionID,
	}, nil
}

// call 执行sidecar HTTP调用，对网络错误和5xx做有界重试
// 业务错误（error_code非空）不重试，直接映射为哨兵错误
func (f *SidecarFactory) call(ctx context.Context, method, path string, data interface{}) (*sidecarResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		resp, err := f.doOnce(ctx, method, path, data)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// 已分类的业务错误不重试
		for _, sentinel := range sidecarErrorCodes {
			if errors.Is(err, sentinel) {
				return nil, err
			}
		}
		if attempt < f.maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.retryDelay):
			}
		}
	}
	return nil, lastErr
}

// doOnce 单次sidecar调用
func (f *SidecarFactory) doOnce(ctx context.Context, method, path string, data interface{}) (*sidecarResponse, error) {
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal sidecar request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create sidecar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sidecar request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 500 {
		return nil, fmt.Errorf("sidecar returned status %d", httpResp.StatusCode)
	}

	var resp sidecarResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode sidecar response: %w", err)
	}

	if !resp.OK && resp.ErrorCode != "" {
		if sentinel, known := sidecarErrorCodes[resp.ErrorCode]; known {
			return nil, fmt.Errorf("%w: %s", sentinel, resp.Message)
		}
		return nil, fmt.Errorf("sidecar error %s: %s", resp.ErrorCode, resp.Message)
	}
	return &resp, nil
}

// sidecarSession sidecar会话
type sidecarSession struct {
	factory   *SidecarFactory
	sessionID string
	released  bool
}

// AuthenticateAndSelectCertificate 按操作员证书名选择证书
func (s *sidecarSession) AuthenticateAndSelectCertificate(ctx context.Context, operator string) error {
	_, err := s.factory.call(ctx, http.MethodPost, s.path("/certificate"), map[string]string{
		"operator": operator,
	})
	return err
}

// EnterCredential 输入操作员PIN完成设备认证
func (s *sidecarSession) EnterCredential(ctx context.Context, pin string) error {
	_, err := s.factory.call(ctx, http.MethodPost, s.path("/pin"), map[string]string{
		"pin": pin,
	})
	return err
}

// SelectCompanyAndRole 选择公司并以给定角色进入
func (s *sidecarSession) SelectCompanyAndRole(ctx context.Context, companyIDNO string, role Role) error {
	_, err := s.factory.call(ctx, http.MethodPost, s.path("/company"), map[string]string{
		"company_idno": companyIDNO,
		"role":         string(role),
	})
	return err
}

// PerformSingleAction 对单张发票执行签章/拒签动作
// 动作完成后探测确认弹窗，存在则关闭（探测结果是布尔值，弹窗缺失不算错误）
func (s *sidecarSession) PerformSingleAction(ctx context.Context, series string, number int, actionType string) error {
	_, err := s.factory.call(ctx, http.MethodPost, s.path("/sign/single"), map[string]interface{}{
		"series":      series,
		"number":      number,
		"action_type": actionType,
	})
	if err != nil {
		return err
	}

	probe, err := s.factory.call(ctx, http.MethodPost, s.path("/popup/probe"), nil)
	if err != nil {
		return err
	}
	if probe.Present {
		_, err = s.factory.call(ctx, http.MethodPost, s.path("/popup/dismiss"), nil)
	}
	return err
}

// PerformBulkAction 对与对方公司相关的全部发票执行批量动作
func (s *sidecarSession) PerformBulkAction(ctx context.Context, counterpartyIDNO, signatureKind, actionType string) error {
	_, err := s.factory.call(ctx, http.MethodPost, s.path("/sign/bulk"), map[string]string{
		"counterparty_idno": counterpartyIDNO,
		"signature_kind":    signatureKind,
		"action_type":       actionType,
	})
	return err
}

// Release 释放会话，可重复调用
// 释放失败只能放弃，sidecar会按超时自行回收
func (s *sidecarSession) Release() {
	if s.released {
		return
	}
	s.released = true

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = s.factory.doOnce(ctx, http.MethodDelete, s.path(""), nil)
}

// path 拼接会话路径
func (s *sidecarSession) path(suffix string) string {
	return "/session/" + s.sessionID + suffix
}
