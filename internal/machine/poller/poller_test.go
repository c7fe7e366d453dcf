/**
 * 轮询器测试
 * @author: sun977
 * @date: 2025.11.23
 * @description: 验证拉取失败不中断循环、空响应跳过执行、结果如实回报
 */
package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"signhub/internal/machine/actuator"
	"signhub/internal/machine/executor"
	"signhub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------- 测试桩 --------------------

// fakeRegistryClient 按轮次脚本化响应
type fakeRegistryClient struct {
	mu        sync.Mutex
	responses []fetchResult
	calls     int
	reported  [][]model.TaskStatusUpdate
}

type fetchResult struct {
	tasks *model.MachineTasksResponse
	err   error
}

func (c *fakeRegistryClient) GetTasks(ctx context.Context) (*model.MachineTasksResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.calls
	c.calls++
	if idx >= len(c.responses) {
		return emptyTasks(), nil
	}
	r := c.responses[idx]
	return r.tasks, r.err
}

func (c *fakeRegistryClient) UpdateTaskStatuses(ctx context.Context, updates []model.TaskStatusUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reported = append(c.reported, updates)
	return nil
}

func (c *fakeRegistryClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *fakeRegistryClient) reportedBatches() [][]model.TaskStatusUpdate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reported
}

type okFactory struct{}

func (okFactory) NewSession(ctx context.Context) (actuator.Actuator, error) {
	return okSession{}, nil
}

type okSession struct{}

func (okSession) AuthenticateAndSelectCertificate(ctx context.Context, operator string) error {
	return nil
}
func (okSession) EnterCredential(ctx context.Context, pin string) error { return nil }
func (okSession) SelectCompanyAndRole(ctx context.Context, companyIDNO string, role actuator.Role) error {
	return nil
}
func (okSession) PerformSingleAction(ctx context.Context, series string, number int, actionType string) error {
	return nil
}
func (okSession) PerformBulkAction(ctx context.Context, counterpartyIDNO, signatureKind, actionType string) error {
	return nil
}
func (okSession) Release() {}

func emptyTasks() *model.MachineTasksResponse {
	return &model.MachineTasksResponse{
		SingleInvoiceTask:    map[string]map[string][]model.MachineSingleInvoiceTask{},
		MultipleInvoicesTask: map[string]map[string][]model.MachineMultipleInvoicesTask{},
	}
}

func oneTask() *model.MachineTasksResponse {
	return &model.MachineTasksResponse{
		SingleInvoiceTask: map[string]map[string][]model.MachineSingleInvoiceTask{
			"POP ION": {
				"RO100": {{Series: "AAA", Number: 1, TaskID: "t1", ActionType: "sign"}},
			},
		},
		MultipleInvoicesTask: map[string]map[string][]model.MachineMultipleInvoicesTask{},
	}
}

// -------------------- 测试 --------------------

// 第一轮拉取失败后循环继续，后续轮次正常处理并回报
func TestRun_SurvivesFetchErrorAndReports(t *testing.T) {
	fake := &fakeRegistryClient{
		responses: []fetchResult{
			{err: errors.New("registry unreachable")},
			{tasks: oneTask()},
		},
	}
	exec := executor.NewExecutor(okFactory{}, map[string]string{"POP ION": "1234"})
	p := NewPoller(fake, exec, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	// 等待至少两轮
	require.Eventually(t, func() bool {
		return fake.callCount() >= 2
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	batches := fake.reportedBatches()
	require.NotEmpty(t, batches)
	require.Len(t, batches[0], 1)
	assert.Equal(t, "t1", batches[0][0].TaskID)
	assert.Equal(t, model.TaskStatusCompleted, batches[0][0].Status)
}

// 空响应不触发执行和回报
func TestRun_SkipsEmptyResponse(t *testing.T) {
	fake := &fakeRegistryClient{}
	exec := executor.NewExecutor(okFactory{}, map[string]string{"POP ION": "1234"})
	p := NewPoller(fake, exec, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return fake.callCount() >= 3
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Empty(t, fake.reportedBatches())
}
