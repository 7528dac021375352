package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/linkmall/internal/logger"
	"github.com/linkmall/internal/provider"
	"github.com/linkmall/internal/queue"
	"github.com/linkmall/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderCommission, c.handleOrderCommission)
	mux.HandleFunc(queue.TaskOrderCancelSweep, c.handleOrderCancelSweep)
	mux.HandleFunc(queue.TaskCommissionConfirm, c.handleCommissionConfirm)
	mux.HandleFunc(queue.TaskPartnerTierRecalc, c.handlePartnerTierRecalc)
}

func (c *Consumer) handleOrderCommission(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_commission_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderCommissionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_commission_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_commission_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.CommissionService == nil {
		logger.Warnw("worker_order_commission_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}
	created, err := c.CommissionService.ResolveOrderCommissions(payload.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_order_commission_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrPartnerNotFound):
			logger.Debugw("worker_order_commission_skip_partner_not_found", "order_id", payload.OrderID)
			return nil
		default:
			logger.Warnw("worker_order_commission_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	if created > 0 {
		logger.Infow("worker_order_commission_resolved", "order_id", payload.OrderID, "created", created)
	}
	return nil
}

func (c *Consumer) handleOrderCancelSweep(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_cancel_sweep_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderCancelSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_cancel_sweep_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_cancel_sweep_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.CommissionService == nil {
		logger.Warnw("worker_order_cancel_sweep_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}
	cancelled, err := c.CommissionService.CancelOrderCommissions(payload.OrderID, payload.Reason)
	if err != nil {
		logger.Warnw("worker_order_cancel_sweep_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if cancelled > 0 {
		logger.Infow("worker_order_cancel_sweep_done", "order_id", payload.OrderID, "cancelled", cancelled)
	}
	return nil
}

func (c *Consumer) handleCommissionConfirm(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_commission_confirm_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CommissionConfirmPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_commission_confirm_unmarshal_failed", "error", err)
		return err
	}
	if c.CommissionService == nil {
		logger.Warnw("worker_commission_confirm_skip_service_nil")
		return nil
	}
	before := time.Now()
	if payload.Before > 0 {
		before = time.Unix(payload.Before, 0)
	}
	confirmed, err := c.CommissionService.ConfirmDueCommissions(before)
	if err != nil {
		logger.Warnw("worker_commission_confirm_failed", "error", err)
		return err
	}
	if confirmed > 0 {
		logger.Infow("worker_commission_confirm_done", "confirmed", confirmed)
	}
	return nil
}

func (c *Consumer) handlePartnerTierRecalc(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_partner_tier_recalc_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PartnerTierRecalcPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_partner_tier_recalc_unmarshal_failed", "error", err)
		return err
	}
	if c.PartnerService == nil {
		logger.Warnw("worker_partner_tier_recalc_skip_service_nil", "partner_id", payload.PartnerID)
		return nil
	}
	if payload.PartnerID == 0 {
		updated, err := c.PartnerService.RecalcPartnerTiers()
		if err != nil {
			logger.Warnw("worker_partner_tier_recalc_all_failed", "error", err)
			return err
		}
		logger.Infow("worker_partner_tier_recalc_all_done", "updated", updated)
		return nil
	}
	if _, err := c.PartnerService.RecalcPartnerTier(payload.PartnerID); err != nil {
		if errors.Is(err, service.ErrPartnerNotFound) {
			logger.Debugw("worker_partner_tier_recalc_skip_not_found", "partner_id", payload.PartnerID)
			return nil
		}
		logger.Warnw("worker_partner_tier_recalc_failed", "partner_id", payload.PartnerID, "error", err)
		return err
	}
	return nil
}
