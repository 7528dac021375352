package worker

import (
	"context"
	"errors"
	"time"

	"github.com/linkmall/internal/config"
	"github.com/linkmall/internal/logger"
	"github.com/linkmall/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer

	confirmInterval time.Duration
	tierInterval    time.Duration
}

// NewService 创建异步队列服务
// 队列关闭时退化为纯定时任务进程，确认扫描与等级重算照常运行
func NewService(cfg *config.QueueConfig, workerCfg config.WorkerConfig, consumer *Consumer) (*Service, error) {
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}

	confirmInterval := time.Duration(workerCfg.CommissionConfirmIntervalMinutes) * time.Minute
	if confirmInterval <= 0 {
		confirmInterval = time.Minute
	}
	tierInterval := time.Duration(workerCfg.TierRecalcIntervalHours) * time.Hour
	if tierInterval <= 0 {
		tierInterval = 24 * time.Hour
	}

	svc := &Service{
		name:            "worker",
		consumer:        consumer,
		confirmInterval: confirmInterval,
		tierInterval:    tierInterval,
	}
	if cfg != nil && cfg.Enabled {
		opt, serverCfg := queue.BuildServerConfig(cfg)
		svc.server = asynq.NewServer(opt, serverCfg)
		svc.mux = asynq.NewServeMux()
		consumer.Register(svc.mux)
	}
	return svc, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务，无 asynq 服务器时只跑定时任务并阻塞到 ctx 取消
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.consumer == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer.CommissionService != nil {
		go s.runCommissionConfirmLoop(ctx)
	}
	if s.consumer.PartnerService != nil {
		go s.runTierRecalcLoop(ctx)
	}
	if s.server == nil || s.mux == nil {
		<-ctx.Done()
		return nil
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runCommissionConfirmLoop 周期性确认退货期已过的待确认佣金
func (s *Service) runCommissionConfirmLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.CommissionService == nil {
		return
	}
	runOnce := func() {
		confirmed, err := s.consumer.CommissionService.ConfirmDueCommissions(time.Now())
		if err != nil {
			logger.Warnw("worker_commission_confirm_loop_failed", "error", err)
			return
		}
		if confirmed > 0 {
			logger.Infow("worker_commission_confirm_loop_done", "confirmed", confirmed)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.confirmInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// runTierRecalcLoop 周期性按累计佣金重算合伙人等级
func (s *Service) runTierRecalcLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.PartnerService == nil {
		return
	}
	runOnce := func() {
		updated, err := s.consumer.PartnerService.RecalcPartnerTiers()
		if err != nil {
			logger.Warnw("worker_tier_recalc_loop_failed", "error", err)
			return
		}
		logger.Infow("worker_tier_recalc_loop_done", "updated", updated)
	}

	ticker := time.NewTicker(s.tierInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
