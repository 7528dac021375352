package queue

import (
	"encoding/json"

	"github.com/linkmall/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderCommission 订单佣金解析任务
	TaskOrderCommission = constants.TaskOrderCommission
	// TaskOrderCancelSweep 订单取消佣金回收任务
	TaskOrderCancelSweep = constants.TaskOrderCancelSweep
	// TaskCommissionConfirm 到期佣金确认任务
	TaskCommissionConfirm = constants.TaskCommissionConfirm
	// TaskPartnerTierRecalc 合伙人等级重算任务
	TaskPartnerTierRecalc = constants.TaskPartnerTierRecalc
)

// OrderCommissionPayload 订单佣金解析任务载荷
type OrderCommissionPayload struct {
	OrderID uint `json:"order_id"`
}

// OrderCancelSweepPayload 订单取消佣金回收任务载荷
type OrderCancelSweepPayload struct {
	OrderID uint   `json:"order_id"`
	Reason  string `json:"reason"`
}

// CommissionConfirmPayload 到期佣金确认任务载荷
type CommissionConfirmPayload struct {
	Before int64 `json:"before"`
}

// PartnerTierRecalcPayload 合伙人等级重算任务载荷
type PartnerTierRecalcPayload struct {
	PartnerID uint `json:"partner_id"`
}

// NewOrderCommissionTask 创建订单佣金解析任务
func NewOrderCommissionTask(payload OrderCommissionPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderCommission, body), nil
}

// NewOrderCancelSweepTask 创建订单取消佣金回收任务
func NewOrderCancelSweepTask(payload OrderCancelSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderCancelSweep, body), nil
}

// NewCommissionConfirmTask 创建到期佣金确认任务
func NewCommissionConfirmTask(payload CommissionConfirmPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCommissionConfirm, body), nil
}

// NewPartnerTierRecalcTask 创建合伙人等级重算任务
func NewPartnerTierRecalcTask(payload PartnerTierRecalcPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPartnerTierRecalc, body), nil
}
