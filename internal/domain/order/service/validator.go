package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"pawlina-api/internal/domain/order/model"
)

// 购物车边界
const (
	maxCartLines  = 50
	minLineQty    = 1
	maxLineQty    = 99
	maxPriceCents = 100_000_000 // £1,000,000
	maxNameLen    = 160

	// minDeliveryTotalCents 配送订单最低消费（自提不限）
	minDeliveryTotalCents = 500
)

// RawLine 客户端提交的购物车行，未经任何信任
type RawLine struct {
	ID         int64  `json:"id"`
	Qty        int64  `json:"qty"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

// ValidateCart 清洗购物车：越界整单拒绝，行价格仅做夹取（网关路径根本不用它）
//   - 行数 1..50，商品ID为正整数，数量 1..99
//   - 行价格落在 [0, 1e8] 之外时归零
//   - 名称截断到 160 字符
//   - 总价越界则拒绝
func ValidateCart(items []RawLine, totalCents int64) ([]model.Line, int64, error) {
	if len(items) == 0 {
		return nil, 0, fmt.Errorf("%w: no items provided", model.ErrInvalidPayload)
	}
	if len(items) > maxCartLines {
		return nil, 0, fmt.Errorf("%w: too many lines (%d)", model.ErrInvalidPayload, len(items))
	}

	cleaned := make([]model.Line, 0, len(items))
	for _, item := range items {
		if item.ID <= 0 {
			return nil, 0, fmt.Errorf("%w: bad item id", model.ErrInvalidPayload)
		}
		if item.Qty < minLineQty || item.Qty > maxLineQty {
			return nil, 0, fmt.Errorf("%w: bad quantity", model.ErrInvalidPayload)
		}

		price := item.PriceCents
		if price < 0 || price > maxPriceCents {
			price = 0
		}

		// 按字符截断，不能劈开多字节字符
		name := item.Name
		if r := []rune(name); len(r) > maxNameLen {
			name = string(r[:maxNameLen])
		}

		cleaned = append(cleaned, model.Line{
			ItemID:     uint(item.ID),
			Name:       name,
			PriceCents: price,
			Qty:        int(item.Qty),
		})
	}

	if totalCents < 0 || totalCents > maxPriceCents {
		return nil, 0, fmt.Errorf("%w: bad total", model.ErrInvalidPayload)
	}

	return cleaned, totalCents, nil
}

// DedupKey 去重键：用户内 (总价, 配送方式, 规范化行序列) 的哈希
// 24小时窗口内相同键视为同一笔提交（手工路径与网关回调可能重复落单）
func DedupKey(totalCents int64, deliveryMethod string, lines []model.Line) (string, error) {
	raw, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("serialize lines for dedup key: %w", err)
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s", totalCents, deliveryMethod, raw)))
	return hex.EncodeToString(sum[:]), nil
}
