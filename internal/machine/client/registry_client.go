/**
 * registry通信客户端
 * @author: sun977
 * @date: 2025.11.22
 * @description: 机器端与registry端的HTTP通信客户端
 * @func:
 *   - GetTasks 拉取当前公司的WAITING任务（分组视图）
 *   - UpdateTaskStatuses 回报任务终态
 */
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"signhub/internal/model"
)

// RegistryClient registry客户端接口
type RegistryClient interface {
	// GetTasks 拉取当前公司等待中的任务，按 操作员 -> 公司IDNO 两级分组
	GetTasks(ctx context.Context) (*model.MachineTasksResponse, error)
	// UpdateTaskStatuses 批量回报任务状态
	UpdateTaskStatuses(ctx context.Context, updates []model.TaskStatusUpdate) error
}

// registryClient registry客户端实现
type registryClient struct {
	client     *http.Client
	baseURL    string
	credential string
	userAgent  string
}

// NewRegistryClient 创建registry客户端实例
func NewRegistryClient(baseURL, credential string, timeout time.Duration) RegistryClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &registryClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:    baseURL,
		credential: credential,
		userAgent:  "SignHubMachine/1.0",
	}
}

// GetTasks 拉取当前公司等待中的任务
func (c *registryClient) GetTasks(ctx context.Context) (*model.MachineTasksResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/machine/tasks", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var tasks model.MachineTasksResponse
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		return nil, fmt.Errorf("decode tasks response: %w", err)
	}
	return &tasks, nil
}

// UpdateTaskStatuses 批量回报任务状态
func (c *registryClient) UpdateTaskStatuses(ctx context.Context, updates []model.TaskStatusUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	resp, err := c.doRequest(ctx, http.MethodPut, "/tasks/status", updates)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}
	return nil
}

// doRequest 执行HTTP请求
func (c *registryClient) doRequest(ctx context.Context, method, path string, data interface{}) (*http.Response, error) {
	fullURL := c.baseURL + path

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal request data: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// 设置默认头部
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", "Bearer "+c.credential)

	return c.client.Do(req)
}

// statusError 将非200响应转换为带响应体摘要的错误
func (c *registryClient) statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("registry returned status %d: %s", resp.StatusCode, string(data))
}
