/**
 * 轮询器:机器端主循环
 * @author: sun977
 * @date: 2025.11.22
 * @description: 先拉取后执行的轮询循环，任何一轮出错只记录日志并等待下一轮
 * @func:
 *   - Run 启动轮询循环，ctx取消后返回
 */
package poller

import (
	"context"
	"time"

	"signhub/internal/machine/client"
	"signhub/internal/machine/executor"
	"signhub/internal/pkg/logger"
)

// Poller 机器端轮询器
type Poller struct {
	client   client.RegistryClient
	executor *executor.Executor
	interval time.Duration
}

// NewPoller 创建轮询器实例
func NewPoller(registryClient client.RegistryClient, exec *executor.Executor, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		client:   registryClient,
		executor: exec,
		interval: interval,
	}
}

// Run 启动轮询循环
// 每轮: 拉取任务 -> 执行 -> 回报状态，任一步出错记录日志后等待下一轮
func (p *Poller) Run(ctx context.Context) {
	logger.LogSystemEvent("poller", "start", "机器端轮询启动", logger.InfoLevel, map[string]interface{}{
		"interval": p.interval.String(),
	})

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// 启动后立即执行一轮，不等首个tick
	p.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.LogSystemEvent("poller", "stop", "机器端轮询退出", logger.InfoLevel, nil)
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

// runOnce 执行一轮 拉取 -> 执行 -> 回报
func (p *Poller) runOnce(ctx context.Context) {
	tasks, err := p.client.GetTasks(ctx)
	if err != nil {
		logger.LogSystemEvent("poller", "fetch_failed", "拉取任务失败", logger.WarnLevel, map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if tasks.Empty() {
		logger.Debug("本轮无等待任务")
		return
	}

	results := p.executor.Execute(ctx, tasks)
	if len(results) == 0 {
		return
	}

	if err := p.client.UpdateTaskStatuses(ctx, results); err != nil {
		// 回报失败不重试，任务保持原状态，下一轮会重新拉到未完结任务
		logger.LogSystemEvent("poller", "report_failed", "任务状态回报失败", logger.WarnLevel, map[string]interface{}{
			"error":        err.Error(),
			"result_count": len(results),
		})
		return
	}

	logger.LogSystemEvent("poller", "round_done", "本轮任务处理完成", logger.InfoLevel, map[string]interface{}{
		"result_count": len(results),
	})
}
