package app

import (
	"errors"

	"github.com/linkmall/internal/config"
	"github.com/linkmall/internal/provider"
	"github.com/linkmall/internal/router"
	"github.com/linkmall/internal/worker"
)

func wantsAPI(mode string) bool    { return mode == ModeAll || mode == ModeAPI }
func wantsWorker(mode string) bool { return mode == ModeAll || mode == ModeWorker }

// BuildRunner 按运行模式组装 HTTP 与 Worker 服务
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)

	var services []Service
	if wantsAPI(mode) {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server.Host+":"+cfg.Server.Port, engine))
	}
	if wantsWorker(mode) {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, cfg.Worker, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start",
		"addr", opts.Config.Server.Host+":"+opts.Config.Server.Port,
		"mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
