/*
 * @author: sun977
 * @date: 2025.11.22
 * @description: 签章机器端主程序入口
 * @func: 加载配置、初始化日志、装配客户端与执行器、启动轮询循环、等待中断信号
 */

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"signhub/internal/config"
	"signhub/internal/machine/actuator"
	"signhub/internal/machine/client"
	"signhub/internal/machine/executor"
	"signhub/internal/machine/poller"
	"signhub/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件目录,为空时使用默认路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath, "")
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	if err := config.ValidateMachineConfig(cfg); err != nil {
		log.Fatalf("机器端配置校验失败: %v", err)
	}

	// 初始化日志
	if _, err := logger.InitLogger(&cfg.Log); err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}

	// 装配 registry客户端 -> sidecar工厂 -> 执行器 -> 轮询器
	registryClient := client.NewRegistryClient(cfg.Machine.ServerURL, cfg.Machine.Credential, cfg.Machine.Sidecar.Timeout)
	factory := actuator.NewSidecarFactory(&cfg.Machine.Sidecar)
	exec := executor.NewExecutor(factory, cfg.Machine.Operators)
	p := poller.NewPoller(registryClient, exec, cfg.Machine.PollInterval)

	// 中断信号触发优雅退出
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down machine...")
		cancel()
	}()

	p.Run(ctx)
}
