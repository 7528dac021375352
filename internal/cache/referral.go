package cache

import (
	"context"
	"fmt"
	"time"
)

// 与归因 Cookie 的 30 天窗口保持一致
const userReferralTTL = 30 * 24 * time.Hour

// UserReferral 登录时捕获的用户与推荐码关联，尽力而为，仅存缓存
type UserReferral struct {
	UserID       uint   `json:"user_id"`
	ReferralCode string `json:"referral_code"`
	MappedAt     int64  `json:"mapped_at"`
}

func userReferralKey(userID uint) string {
	return fmt.Sprintf("attribution:user:%d", userID)
}

// SetUserReferral 记录用户登录时的有效推荐码
func SetUserReferral(ctx context.Context, userID uint, code string) error {
	if userID == 0 || code == "" {
		return nil
	}
	return SetJSON(ctx, userReferralKey(userID), &UserReferral{
		UserID:       userID,
		ReferralCode: code,
		MappedAt:     time.Now().Unix(),
	}, userReferralTTL)
}

// GetUserReferral 读取用户登录时关联的推荐码，未命中时 hit 为 false
func GetUserReferral(ctx context.Context, userID uint) (string, bool, error) {
	if userID == 0 {
		return "", false, nil
	}
	var record UserReferral
	hit, err := GetJSON(ctx, userReferralKey(userID), &record)
	if err != nil || !hit {
		return "", hit, err
	}
	return record.ReferralCode, true, nil
}

// DelUserReferral 清除用户与推荐码的关联
func DelUserReferral(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, userReferralKey(userID))
}
