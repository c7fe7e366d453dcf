// 自定义日志格式化器与分类日志辅助函数
package logger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// FormatTimestamp 格式化时间戳为统一的毫秒精度格式
// 返回格式："2006-01-02 15:04:05.000"
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05.000")
}

// NowFormatted 返回当前时间的格式化字符串
func NowFormatted() string {
	return FormatTimestamp(time.Now())
}

// LogType 日志类型枚举
type LogType string

const (
	// AccessLog 访问日志 - 记录HTTP请求和API调用
	AccessLog LogType = "access"
	// BusinessLog 业务日志 - 记录业务操作（注册、任务创建、状态上报等）
	BusinessLog LogType = "business"
	// ErrorLog 错误日志 - 记录系统错误和异常
	ErrorLog LogType = "error"
	// SystemLog 系统日志 - 记录系统运行状态
	SystemLog LogType = "system"
)

// LogAccessRequest 记录HTTP访问日志
// 用于记录所有HTTP请求的详细信息，包括响应时间、状态码等
func LogAccessRequest(c *gin.Context, startTime time.Time, requestID string, companyID string) {
	if LoggerInstance == nil {
		return
	}

	// 计算响应时间
	responseTime := time.Since(startTime).Milliseconds()

	fields := logrus.Fields{
		"type":          AccessLog,
		"method":        c.Request.Method,
		"path":          c.Request.URL.Path,
		"query":         c.Request.URL.RawQuery,
		"status_code":   c.Writer.Status(),
		"response_time": responseTime,
		"client_ip":     c.ClientIP(),
		"user_agent":    c.Request.UserAgent(),
		"company_id":    companyID,
		"request_id":    requestID,
		"response_size": c.Writer.Size(),
	}

	LoggerInstance.logger.WithFields(fields).Info("HTTP request processed")
}

// LogBusinessOperation 记录业务操作日志
// 用于记录租户的业务操作，如注册、凭证轮换、任务创建、状态更新等
func LogBusinessOperation(operation string, companyID, companyName, clientIP, requestID, result, message string, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	fields := logrus.Fields{
		"type":         BusinessLog,
		"operation":    operation,
		"company_id":   companyID,
		"company_name": companyName,
		"client_ip":    clientIP,
		"result":       result,
		"message":      message,
		"request_id":   requestID,
	}

	// 添加额外字段
	for k, v := range extraFields {
		fields[k] = v
	}

	// 根据结果选择日志级别
	if result == "success" {
		LoggerInstance.logger.WithFields(fields).Info(fmt.Sprintf("Business operation: %s", operation))
	} else {
		LoggerInstance.logger.WithFields(fields).Warn(fmt.Sprintf("Business operation failed: %s", operation))
	}
}

// LogBusinessError 记录业务/系统错误日志
func LogBusinessError(err error, requestID string, companyID string, clientIP, path, method string, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	if err == nil {
		return
	}

	fields := logrus.Fields{
		"type":       ErrorLog,
		"error":      err.Error(),
		"request_id": requestID,
		"company_id": companyID,
		"client_ip":  clientIP,
		"path":       path,
		"method":     method,
	}

	// 添加额外字段
	for k, v := range extraFields {
		fields[k] = v
	}

	LoggerInstance.logger.WithFields(fields).Errorf("System error occurred: %s", err.Error())
}

// LogSystemEvent 记录系统事件日志
// 用于记录系统启动、关闭、组件状态变化等系统级事件
func LogSystemEvent(component, event, message string, level logrus.Level, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	fields := logrus.Fields{
		"type":      SystemLog,
		"component": component,
		"event":     event,
		"message":   message,
	}

	// 添加额外字段
	for k, v := range extraFields {
		fields[k] = v
	}

	switch level {
	case logrus.DebugLevel:
		LoggerInstance.logger.WithFields(fields).Debug(message)
	case logrus.WarnLevel:
		LoggerInstance.logger.WithFields(fields).Warn(message)
	case logrus.ErrorLevel:
		LoggerInstance.logger.WithFields(fields).Error(message)
	default:
		LoggerInstance.logger.WithFields(fields).Info(message)
	}
}

// 日志级别别名，方便调用方不直接依赖logrus
const (
	DebugLevel = logrus.DebugLevel
	InfoLevel  = logrus.InfoLevel
	WarnLevel  = logrus.WarnLevel
	ErrorLevel = logrus.ErrorLevel
)
