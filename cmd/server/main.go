package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/taoyao-code/frame-ingest/internal/app/bootstrap"
	cfgpkg "github.com/taoyao-code/frame-ingest/internal/config"
	"github.com/taoyao-code/frame-ingest/internal/logging"
)

func main() {
	flags := pflag.NewFlagSet("frame-ingest", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "config file (default: $INGEST_CONFIG or configs/example.yaml)")
	_ = flags.Parse(os.Args[1:])

	// 1) 加载配置
	cfg, err := cfgpkg.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	// 3) 启动并阻塞到收到退出信号
	if err := bootstrap.Run(cfg, zap.L()); err != nil {
		zap.L().Error("server exited with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
