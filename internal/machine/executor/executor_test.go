/**
 * 任务组执行器测试
 * @author: sun977
 * @date: 2025.11.23
 * @description: 覆盖每任务恰好一个终态、错误分类、组级失败隔离和会话生命周期
 */
package executor

import (
	"context"
	"errors"
	"testing"

	"signhub/internal/machine/actuator"
	"signhub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------- 测试桩：假 Actuator/Factory --------------------

// fakeActuator 按任务标识返回预设错误
type fakeActuator struct {
	loginErr   error            // 登录序列任一步的错误
	actionErrs map[string]error // 任务标识(series/number 或 counterparty) -> 错误
	panicOn    string           // 命中该标识时panic
	released   bool
}

func (a *fakeActuator) AuthenticateAndSelectCertificate(ctx context.Context, operator string) error {
	return a.loginErr
}

func (a *fakeActuator) EnterCredential(ctx context.Context, pin string) error { return nil }

func (a *fakeActuator) SelectCompanyAndRole(ctx context.Context, companyIDNO string, role actuator.Role) error {
	return nil
}

func (a *fakeActuator) PerformSingleAction(ctx context.Context, series string, number int, actionType string) error {
	if series == a.panicOn {
		panic("automation crashed")
	}
	return a.actionErrs[series]
}

func (a *fakeActuator) PerformBulkAction(ctx context.Context, counterpartyIDNO, signatureKind, actionType string) error {
	return a.actionErrs[counterpartyIDNO]
}

func (a *fakeActuator) Release() { a.released = true }

type fakeFactory struct {
	session    *fakeActuator
	sessionErr error
	sessions   int
}

func (f *fakeFactory) NewSession(ctx context.Context) (actuator.Actuator, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	f.sessions++
	return f.session, nil
}

// -------------------- 辅助 --------------------

func singleTasks(operator, idno string, tasks ...model.MachineSingleInvoiceTask) *model.MachineTasksResponse {
	return &model.MachineTasksResponse{
		SingleInvoiceTask: map[string]map[string][]model.MachineSingleInvoiceTask{
			operator: {idno: tasks},
		},
		MultipleInvoicesTask: map[string]map[string][]model.MachineMultipleInvoicesTask{},
	}
}

func statusByTask(updates []model.TaskStatusUpdate) map[string]model.TaskStatus {
	out := make(map[string]model.TaskStatus, len(updates))
	for _, u := range updates {
		out[u.TaskID] = u.Status
	}
	return out
}

var testOperators = map[string]string{"POP ION": "1234"}

// -------------------- 测试 --------------------

// 三个任务分别成功/设备缺失/失败，每个任务必须恰好产出一个对应终态
func TestExecute_PerTaskClassification(t *testing.T) {
	session := &fakeActuator{
		actionErrs: map[string]error{
			"BBB": actuator.ErrHardwareNotFound,
			"CCC": actuator.ErrNavigationFailed,
		},
	}
	exec := NewExecutor(&fakeFactory{session: session}, testOperators)

	tasks := singleTasks("POP ION", "RO100",
		model.MachineSingleInvoiceTask{Series: "AAA", Number: 1, TaskID: "t1", ActionType: "sign"},
		model.MachineSingleInvoiceTask{Series: "BBB", Number: 2, TaskID: "t2", ActionType: "sign"},
		model.MachineSingleInvoiceTask{Series: "CCC", Number: 3, TaskID: "t3", ActionType: "sign"},
	)

	results := exec.Execute(context.Background(), tasks)
	require.Len(t, results, 3)

	statuses := statusByTask(results)
	assert.Equal(t, model.TaskStatusCompleted, statuses["t1"])
	assert.Equal(t, model.TaskStatusUSBNotFound, statuses["t2"])
	assert.Equal(t, model.TaskStatusFailed, statuses["t3"])

	// 回报顺序与组内任务顺序一致
	assert.Equal(t, "t1", results[0].TaskID)
	assert.Equal(t, "t3", results[2].TaskID)

	// 会话用完必须释放
	assert.True(t, session.released)
}

// 任务panic只影响自身，收敛为FAILED，后续任务继续执行
func TestExecute_TaskPanicIsIsolated(t *testing.T) {
	session := &fakeActuator{panicOn: "BBB"}
	exec := NewExecutor(&fakeFactory{session: session}, testOperators)

	tasks := singleTasks("POP ION", "RO100",
		model.MachineSingleInvoiceTask{Series: "AAA", Number: 1, TaskID: "t1", ActionType: "sign"},
		model.MachineSingleInvoiceTask{Series: "BBB", Number: 2, TaskID: "t2", ActionType: "sign"},
		model.MachineSingleInvoiceTask{Series: "CCC", Number: 3, TaskID: "t3", ActionType: "sign"},
	)

	results := exec.Execute(context.Background(), tasks)
	require.Len(t, results, 3)

	statuses := statusByTask(results)
	assert.Equal(t, model.TaskStatusCompleted, statuses["t1"])
	assert.Equal(t, model.TaskStatusFailed, statuses["t2"])
	assert.Equal(t, model.TaskStatusCompleted, statuses["t3"])
}

// 登录阶段失败整组统一上报FAILED，包括设备/证书缺失类错误
func TestExecute_GroupLoginFailure(t *testing.T) {
	for _, loginErr := range []error{
		actuator.ErrCertificateNotFound,
		actuator.ErrHardwareNotFound,
		errors.New("portal timeout"),
	} {
		session := &fakeActuator{loginErr: loginErr}
		exec := NewExecutor(&fakeFactory{session: session}, testOperators)

		tasks := singleTasks("POP ION", "RO100",
			model.MachineSingleInvoiceTask{Series: "AAA", Number: 1, TaskID: "t1", ActionType: "sign"},
			model.MachineSingleInvoiceTask{Series: "BBB", Number: 2, TaskID: "t2", ActionType: "sign"},
		)

		results := exec.Execute(context.Background(), tasks)
		require.Len(t, results, 2)
		for _, u := range results {
			assert.Equal(t, model.TaskStatusFailed, u.Status)
		}
		assert.True(t, session.released)
	}
}

// 会话建立失败按组定级，不吞掉任务
func TestExecute_SessionOpenFailure(t *testing.T) {
	exec := NewExecutor(&fakeFactory{sessionErr: errors.New("sidecar unreachable")}, testOperators)

	tasks := singleTasks("POP ION", "RO100",
		model.MachineSingleInvoiceTask{Series: "AAA", Number: 1, TaskID: "t1", ActionType: "sign"},
	)

	results := exec.Execute(context.Background(), tasks)
	require.Len(t, results, 1)
	assert.Equal(t, model.TaskStatusFailed, results[0].Status)
}

// 未配置PIN的操作员整组FAILED，不尝试开会话
func TestExecute_UnknownOperator(t *testing.T) {
	factory := &fakeFactory{session: &fakeActuator{}}
	exec := NewExecutor(factory, testOperators)

	tasks := singleTasks("NECUNOSCUT", "RO100",
		model.MachineSingleInvoiceTask{Series: "AAA", Number: 1, TaskID: "t1", ActionType: "sign"},
	)

	results := exec.Execute(context.Background(), tasks)
	require.Len(t, results, 1)
	assert.Equal(t, model.TaskStatusFailed, results[0].Status)
	assert.Zero(t, factory.sessions)
}

// 批量任务组以供方身份执行，结果覆盖完整
func TestExecute_BulkGroup(t *testing.T) {
	session := &fakeActuator{
		actionErrs: map[string]error{"RO901": actuator.ErrNavigationFailed},
	}
	exec := NewExecutor(&fakeFactory{session: session}, testOperators)

	tasks := &model.MachineTasksResponse{
		SingleInvoiceTask: map[string]map[string][]model.MachineSingleInvoiceTask{},
		MultipleInvoicesTask: map[string]map[string][]model.MachineMultipleInvoicesTask{
			"POP ION": {
				"RO100": {
					{CounterpartyIDNO: "RO900", SignatureKind: "primire", TaskID: "m1", ActionType: "sign_all"},
					{CounterpartyIDNO: "RO901", SignatureKind: "primire", TaskID: "m2", ActionType: "sign_all"},
				},
			},
		},
	}

	results := exec.Execute(context.Background(), tasks)
	require.Len(t, results, 2)

	statuses := statusByTask(results)
	assert.Equal(t, model.TaskStatusCompleted, statuses["m1"])
	assert.Equal(t, model.TaskStatusFailed, statuses["m2"])
}

// 多个任务组互不影响，每组一个独立会话
func TestExecute_GroupsAreIsolated(t *testing.T) {
	factory := &fakeFactory{session: &fakeActuator{}}
	exec := NewExecutor(factory, map[string]string{"POP ION": "1234", "VASILE ANA": "5678"})

	tasks := &model.MachineTasksResponse{
		SingleInvoiceTask: map[string]map[string][]model.MachineSingleInvoiceTask{
			"POP ION": {
				"RO100": {{Series: "AAA", Number: 1, TaskID: "t1", ActionType: "sign"}},
				"RO200": {{Series: "BBB", Number: 2, TaskID: "t2", ActionType: "sign"}},
			},
			"VASILE ANA": {
				"RO100": {{Series: "CCC", Number: 3, TaskID: "t3", ActionType: "sign"}},
			},
		},
		MultipleInvoicesTask: map[string]map[string][]model.MachineMultipleInvoicesTask{},
	}

	results := exec.Execute(context.Background(), tasks)
	require.Len(t, results, 3)
	assert.Equal(t, 3, factory.sessions)
	for _, u := range results {
		assert.Equal(t, model.TaskStatusCompleted, u.Status)
	}
}
