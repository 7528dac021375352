package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/linkmall/internal/app"
	"github.com/linkmall/internal/config"
	"github.com/linkmall/internal/logger"
	"github.com/linkmall/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset     = "\033[0m"
	ansiBold      = "\033[1m"
	ansiDim       = "\033[2m"
	ansiGreen     = "\033[32m"
	ansiBlue      = "\033[34m"
	ansiCyan      = "\033[36m"
	ansiBrightMag = "\033[95m"
)

func main() {
	printStartupBanner()

	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	checkJWTSecret(cfg, stdLog)
	setupDatabase(cfg, stdLog)
	seedDefaultAdmin(cfg, stdLog)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

// checkJWTSecret 生产模式弱密钥直接拒绝启动，其余模式仅告警
func checkJWTSecret(cfg *config.Config, stdLog *log.Logger) {
	if !isWeakSecret(cfg.JWT.SecretKey) {
		return
	}
	if cfg.Server.Mode == "release" {
		stdLog.Fatalf("JWT secret 过弱或仍为默认值，请在生产环境中配置强随机密钥")
	}
	stdLog.Printf("警告: JWT secret 过弱或仍为默认值，建议在生产环境中更换")
}

func setupDatabase(cfg *config.Config, stdLog *log.Logger) {
	pool := models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, pool); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}
}

// seedDefaultAdmin 生产模式必须显式给出密码，否则跳过初始化
func seedDefaultAdmin(cfg *config.Config, stdLog *log.Logger) {
	username := os.Getenv("LM_DEFAULT_ADMIN_USERNAME")
	password := os.Getenv("LM_DEFAULT_ADMIN_PASSWORD")
	if cfg.Server.Mode == "release" && password == "" {
		stdLog.Printf("警告: 未设置 LM_DEFAULT_ADMIN_PASSWORD，已跳过默认管理员初始化")
		return
	}
	if err := models.InitDefaultAdmin(username, password); err != nil {
		stdLog.Printf("警告: 初始化默认管理员失败: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiBrightMag + "╔══════════════════════════════════════════════════════════╗" + ansiReset)
	fmt.Println(ansiBrightMag + "║                   🚀 LinkMall API 启动中                  ║" + ansiReset)
	fmt.Println(ansiBrightMag + "╚══════════════════════════════════════════════════════════╝" + ansiReset)
	fmt.Println(ansiCyan + "██╗     ██╗███╗   ██╗██╗  ██╗███╗   ███╗ █████╗ ██╗     ██╗     " + ansiReset)
	fmt.Println(ansiCyan + "██║     ██║████╗  ██║██║ ██╔╝████╗ ████║██╔══██╗██║     ██║     " + ansiReset)
	fmt.Println(ansiCyan + "██║     ██║██╔██╗ ██║█████╔╝ ██╔████╔██║███████║██║     ██║     " + ansiReset)
	fmt.Println(ansiCyan + "██║     ██║██║╚██╗██║██╔═██╗ ██║╚██╔╝██║██╔══██║██║     ██║     " + ansiReset)
	fmt.Println(ansiCyan + "███████╗██║██║ ╚████║██║  ██╗██║ ╚═╝ ██║██║  ██║███████╗███████╗" + ansiReset)
	fmt.Println(ansiCyan + "╚══════╝╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝╚═╝     ╚═╝╚═╝  ╚═╝╚══════╝╚══════╝" + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "Open Source Repositories" + ansiReset)
	fmt.Println(ansiBlue + "• Root:    https://github.com/linkmall" + ansiReset)
	fmt.Println(ansiBlue + "• API:     https://github.com/linkmall/linkmall" + ansiReset)
	fmt.Println(ansiBlue + "• Admin:   https://github.com/linkmall/admin" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	for _, marker := range []string{"change-me", "change-in-production", "your-secret-key"} {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}
