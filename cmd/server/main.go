package main

import (
	"github.com/blues/quirklr/internal/chain"
	"github.com/blues/quirklr/internal/config"
	"github.com/blues/quirklr/internal/database"
	"github.com/blues/quirklr/internal/logger"
	"github.com/blues/quirklr/internal/logic"
	"github.com/blues/quirklr/internal/monitor"
	"github.com/blues/quirklr/internal/proofrail"
	"github.com/blues/quirklr/internal/router"
	"github.com/blues/quirklr/internal/scheduler"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	logger.Init(cfg.Log)
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化链客户端，未启用时项目创建跳过链上锚定
	var anchor logic.ChainAnchor
	var chainClient *chain.Client
	if cfg.Chain.Enabled {
		chainClient, err = chain.Init(cfg.Chain)
		if err != nil {
			logger.Fatal("Failed to initialize chain client: %v", err)
		}
		defer chainClient.Close()
		anchor = chainClient
	} else {
		logger.Warn("Chain anchoring disabled by config")
	}

	// 初始化凭证服务客户端
	proofClient := proofrail.NewClient(cfg.Proofrail)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(router.Deps{
		DB:     db,
		Anchor: anchor,
		Proof:  proofClient,
		Config: cfg,
	})

	// 启动余额对账任务
	if cfg.Scheduler.Enabled {
		manager, err := scheduler.Start(db, cfg)
		if err != nil {
			logger.Fatal("Failed to start scheduler: %v", err)
		}
		defer manager.Stop()
	}

	// 启动金库事件审计
	if cfg.Monitor.Enabled && chainClient != nil {
		vaultMonitor := monitor.NewVaultMonitor(chainClient, db, cfg)
		if err := vaultMonitor.Start(); err != nil {
			logger.Fatal("Failed to start vault monitor: %v", err)
		}
		defer vaultMonitor.Stop()
	}

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
