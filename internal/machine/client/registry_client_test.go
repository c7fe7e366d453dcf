/**
 * registry客户端测试
 * @author: sun977
 * @date: 2025.11.23
 * @description: 基于httptest验证凭证头、任务响应解析和状态回报
 */
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"signhub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTasks_SendsCredentialAndDecodesGroups(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/machine/tasks", r.URL.Path)
		assert.Equal(t, "Bearer secret-credential", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"SingleInvoiceTask": map[string]interface{}{
				"POP ION": map[string]interface{}{
					"RO100": []map[string]interface{}{
						{"series": "AAA", "number": 1, "task_id": "t1", "action_type": "sign"},
					},
				},
			},
			"MultipleInvoicesTask": map[string]interface{}{},
		})
	}))
	defer server.Close()

	c := NewRegistryClient(server.URL, "secret-credential", 5*time.Second)
	tasks, err := c.GetTasks(context.Background())
	require.NoError(t, err)
	require.False(t, tasks.Empty())

	group := tasks.SingleInvoiceTask["POP ION"]["RO100"]
	require.Len(t, group, 1)
	assert.Equal(t, "t1", group[0].TaskID)
	assert.Equal(t, 1, group[0].Number)
}

func TestGetTasks_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"failed"}`))
	}))
	defer server.Close()

	c := NewRegistryClient(server.URL, "stale-credential", 5*time.Second)
	_, err := c.GetTasks(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestUpdateTaskStatuses_SendsBatch(t *testing.T) {
	var received []model.TaskStatusUpdate
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tasks/status", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	c := NewRegistryClient(server.URL, "secret-credential", 5*time.Second)
	updates := []model.TaskStatusUpdate{
		{TaskID: "t1", Status: model.TaskStatusCompleted},
		{TaskID: "t2", Status: model.TaskStatusUSBNotFound},
	}
	require.NoError(t, c.UpdateTaskStatuses(context.Background(), updates))
	require.Len(t, received, 2)
	assert.Equal(t, model.TaskStatusUSBNotFound, received[1].Status)
}

func TestUpdateTaskStatuses_EmptyBatchIsNoop(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	c := NewRegistryClient(server.URL, "secret-credential", 5*time.Second)
	require.NoError(t, c.UpdateTaskStatuses(context.Background(), nil))
	assert.False(t, called)
}
