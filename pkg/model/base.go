package model

import "time"

// BaseModel 基础模型
// 使用自增整型主键：订单号要求单调递增，且对客户可见，UUID 不合适
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
