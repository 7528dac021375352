package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page       int
	PageSize   int
	SellerID   uint
	CategoryID uint
	Search     string
	OnlyActive bool
	WithSeller bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	PartnerID     uint
	Status        string
	PaymentStatus string
	OrderNo       string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// PartnerListFilter 查询合伙人列表的过滤条件
type PartnerListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Code     string
	Tier     string
	Status   string
	Keyword  string
}

// CommissionListFilter 查询佣金列表的过滤条件
type CommissionListFilter struct {
	Page          int
	PageSize      int
	PartnerID     uint
	OrderID       uint
	SellerID      uint
	OrderNo       string
	Status        string
	Keyword       string
	ConfirmBefore *time.Time
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// PayoutBatchListFilter 查询结算批次列表的过滤条件
type PayoutBatchListFilter struct {
	Page      int
	PageSize  int
	PartnerID uint
	Status    string
}

// SellerListFilter 查询商家列表的过滤条件
type SellerListFilter struct {
	Page     int
	PageSize int
	Status   string
	Keyword  string
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page          int
	PageSize      int
	Keyword       string
	Status        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	LastLoginFrom *time.Time
	LastLoginTo   *time.Time
}

// UserLoginLogListFilter 查询用户登录日志列表的过滤条件
type UserLoginLogListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Email       string
	Status      string
	FailReason  string
	ClientIP    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AuthzAuditLogListFilter 查询权限审计日志列表的过滤条件
type AuthzAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	TargetAdminID   uint
	Action          string
	Role            string
	Object          string
	Method          string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// ApprovalLogListFilter 查询审批日志列表的过滤条件
type ApprovalLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	TargetType      string
	TargetID        uint
	Action          string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// PartnerStatsAggregate 合伙人统计汇总
type PartnerStatsAggregate struct {
	ClickCount          int64
	ConvertedOrderCount int64
}
