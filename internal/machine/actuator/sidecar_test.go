/**
 * sidecar驱动测试
 * @author: sun977
 * @date: 2025.11.23
 * @description: 验证错误码到哨兵错误的映射、业务错误不重试、5xx有界重试
 */
package actuator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"signhub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFactory(baseURL string, maxAttempts int) *SidecarFactory {
	return NewSidecarFactory(&config.SidecarConfig{
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
		MaxAttempts: maxAttempts,
		RetryDelay:  time.Millisecond,
	})
}

func TestNewSession_EstablishesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/session", r.URL.Path)
		w.Write([]byte(`{"ok":true,"session_id":"s1"}`))
	}))
	defer server.Close()

	sess, err := testFactory(server.URL, 3).NewSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
}

func TestCall_MapsErrorCodesToSentinels(t *testing.T) {
	cases := []struct {
		code     string
		sentinel error
	}{
		{"HARDWARE_NOT_FOUND", ErrHardwareNotFound},
		{"CERT_NOT_FOUND", ErrCertificateNotFound},
		{"AUTH_FAILED", ErrAuthFailed},
		{"NAVIGATION_FAILED", ErrNavigationFailed},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.Write([]byte(`{"ok":false,"error_code":"` + tc.code + `","message":"boom"}`))
			}))
			defer server.Close()

			factory := testFactory(server.URL, 3)
			sess := &sidecarSession{factory: factory, sessionID: "s1"}

			err := sess.AuthenticateAndSelectCertificate(context.Background(), "POP ION")
			assert.ErrorIs(t, err, tc.sentinel)
			// 业务错误不能触发重试
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestCall_RetriesServerErrorsUpToLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	factory := testFactory(server.URL, 3)
	sess := &sidecarSession{factory: factory, sessionID: "s1"}

	err := sess.EnterCredential(context.Background(), "1234")
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCall_RecoversAfterTransientError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	factory := testFactory(server.URL, 3)
	sess := &sidecarSession{factory: factory, sessionID: "s1"}

	err := sess.SelectCompanyAndRole(context.Background(), "RO100", RoleBuyer)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPerformSingleAction_DismissesPopupWhenPresent(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/session/s1/popup/probe" {
			w.Write([]byte(`{"ok":true,"present":true}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	factory := testFactory(server.URL, 3)
	sess := &sidecarSession{factory: factory, sessionID: "s1"}

	require.NoError(t, sess.PerformSingleAction(context.Background(), "AAA", 1, "sign"))
	assert.Equal(t, []string{
		"/session/s1/sign/single",
		"/session/s1/popup/probe",
		"/session/s1/popup/dismiss",
	}, paths)
}

func TestRelease_IsIdempotent(t *testing.T) {
	var deletes int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			atomic.AddInt32(&deletes, 1)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	factory := testFactory(server.URL, 3)
	sess := &sidecarSession{factory: factory, sessionID: "s1"}

	sess.Release()
	sess.Release()
	assert.Equal(t, int32(1), atomic.LoadInt32(&deletes))
}
