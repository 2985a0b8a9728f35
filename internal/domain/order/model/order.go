package model

import (
	"encoding/json"
	"fmt"

	baseModel "pawlina-api/pkg/model"
)

// Order 订单模型
// 行项目与地址均为下单时刻的快照，商品后续改价/改名不回溯已下订单
type Order struct {
	baseModel.BaseModel
	UserID            uint            `gorm:"index;not null" json:"user_id"`
	LinesJSON         json.RawMessage `gorm:"type:jsonb;column:lines_json" json:"lines"`
	AddressJSON       json.RawMessage `gorm:"type:jsonb;column:address_json" json:"address_snapshot"`
	DeliveryMethod    string          `gorm:"default:'collect'" json:"delivery_method"` // collect, deliver
	TotalCents        int64           `gorm:"not null" json:"total_cents"`
	PaymentStatus     string          `gorm:"default:'placed'" json:"payment_status"`       // placed, paid, cancelled
	FulfillmentStatus string          `gorm:"default:'awaiting'" json:"fulfillment_status"` // awaiting, preparing, dispatched, delivered
	DeliveryDate      string          `json:"delivery_date"`                                // 一经写入不可更改
	AdminNote         string          `json:"admin_note"`
	DedupKey          string          `gorm:"size:64;index:idx_orders_dedup" json:"-"`
}

const (
	PaymentPlaced    = "placed"
	PaymentPaid      = "paid"
	PaymentCancelled = "cancelled"

	DeliveryCollect = "collect"
	DeliveryDeliver = "deliver"

	FulfillmentAwaiting   = "awaiting"
	FulfillmentPreparing  = "preparing"
	FulfillmentDispatched = "dispatched"
	FulfillmentDelivered  = "delivered"
)

// ValidDeliveryMethod 配送方式是否合法
func ValidDeliveryMethod(m string) bool {
	return m == DeliveryCollect || m == DeliveryDeliver
}

var fulfillmentStatuses = map[string]bool{
	FulfillmentAwaiting:   true,
	FulfillmentPreparing:  true,
	FulfillmentDispatched: true,
	FulfillmentDelivered:  true,
}

// Line 订单行快照
type Line struct {
	ItemID     uint   `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Qty        int    `json:"qty"`
}

// AddressSnapshot 下单时刻的收货地址快照
// 只收录地址相关字段，不整行拷贝用户记录
type AddressSnapshot struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	Postcode     string `json:"postcode"`
	Country      string `json:"country"`
}

// Lines 解码行项目快照
func (o *Order) Lines() ([]Line, error) {
	var lines []Line
	if len(o.LinesJSON) == 0 {
		return lines, nil
	}
	if err := json.Unmarshal(o.LinesJSON, &lines); err != nil {
		return nil, fmt.Errorf("decode order lines: %w", err)
	}
	return lines, nil
}

// SetLines 编码行项目快照
func (o *Order) SetLines(lines []Line) error {
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode order lines: %w", err)
	}
	o.LinesJSON = raw
	return nil
}

// Address 解码地址快照
func (o *Order) Address() (AddressSnapshot, error) {
	var addr AddressSnapshot
	if len(o.AddressJSON) == 0 {
		return addr, nil
	}
	if err := json.Unmarshal(o.AddressJSON, &addr); err != nil {
		return addr, fmt.Errorf("decode address snapshot: %w", err)
	}
	return addr, nil
}

// SetAddress 编码地址快照
func (o *Order) SetAddress(addr AddressSnapshot) error {
	raw, err := json.Marshal(addr)
	if err != nil {
		return fmt.Errorf("encode address snapshot: %w", err)
	}
	o.AddressJSON = raw
	return nil
}

// FulfillmentPatch 后台订单字段更新，nil 表示不改该字段
type FulfillmentPatch struct {
	Status *string
	Date   *string
	Note   *string
}

const maxNoteLen = 1000

// ApplyFulfillment 应用后台更新并校验不变量
//   - 配送日期写一次后不可改成别的日期（相同日期重复提交为幂等空操作）
//   - 把状态改到 awaiting 以外之前，必须已有或同时提交日期
//   - 备注随时可改写
//
// 返回错误时订单保持原样
func (o *Order) ApplyFulfillment(p FulfillmentPatch) error {
	if p.Status != nil && !fulfillmentStatuses[*p.Status] {
		return fmt.Errorf("%w: unknown fulfillment status %q", ErrInvalidPayload, *p.Status)
	}

	date := o.DeliveryDate
	if p.Date != nil && *p.Date != "" {
		if date != "" && date != *p.Date {
			return ErrDateAlreadySet
		}
		date = *p.Date
	}

	if p.Status != nil && *p.Status != FulfillmentAwaiting && date == "" {
		return ErrMissingDate
	}

	o.DeliveryDate = date
	if p.Status != nil {
		o.FulfillmentStatus = *p.Status
	}
	if p.Note != nil {
		// 按字符截断，不能劈开多字节字符
		note := *p.Note
		if r := []rune(note); len(r) > maxNoteLen {
			note = string(r[:maxNoteLen])
		}
		o.AdminNote = note
	}
	return nil
}

// AdminOrder 后台列表行：订单 + 下单用户联系方式
type AdminOrder struct {
	Order
	UserEmail string `json:"user_email"`
	UserName  string `json:"user_name"`
}
