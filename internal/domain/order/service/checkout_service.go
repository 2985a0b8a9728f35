package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	catalogmodel "pawlina-api/internal/domain/catalog/model"
	"pawlina-api/internal/domain/order/gateway"
	"pawlina-api/internal/domain/order/model"
	"pawlina-api/internal/domain/order/repository"
	"pawlina-api/pkg/logger"
	"pawlina-api/pkg/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// eventSeenTTL 回调事件ID重放保护窗口，需覆盖网关的重投递周期
const eventSeenTTL = 48 * time.Hour

// CatalogLookup 商品目录只读查询能力（catalog 仓库实现）
type CatalogLookup interface {
	GetItemByID(ctx context.Context, id uint) (*catalogmodel.Item, error)
}

// RadiusChecker 配送范围校验能力（geo.Service 实现）
type RadiusChecker interface {
	WithinServiceRadius(ctx context.Context, postcode string) bool
}

// CheckoutService 结算编排：两阶段结算（先开会话，确认事件到达后才落订单）
type CheckoutService interface {
	// CreateSession 地址/范围检查 + 目录权威定价 + 创建外部支付会话
	// 此步不落任何订单行
	CreateSession(ctx context.Context, userID uint, items []RawLine, deliveryMethod string) (string, error)

	// HandleGatewayEvent 处理网关回调（至少一次投递）
	// 只有验签失败返回 ErrInvalidSignature；验签之后的内部失败一律
	// 记日志吞掉——调用方已经欠网关一个传输层确认，不能再报错
	HandleGatewayEvent(ctx context.Context, payload []byte, signature string) error
}

type checkoutService struct {
	repo       repository.OrderRepository
	accounts   AccountLookup
	catalog    CatalogLookup
	radius     RadiusChecker
	gateway    gateway.PaymentGateway
	rdb        *redis.Client
	queue      NotifyQueue
	adminEmail string
}

func NewCheckoutService(
	repo repository.OrderRepository,
	accounts AccountLookup,
	catalog CatalogLookup,
	radius RadiusChecker,
	gw gateway.PaymentGateway,
	rdb *redis.Client,
	queue NotifyQueue,
	adminEmail string,
) CheckoutService {
	return &checkoutService{
		repo:       repo,
		accounts:   accounts,
		catalog:    catalog,
		radius:     radius,
		gateway:    gw,
		rdb:        rdb,
		queue:      queue,
		adminEmail: adminEmail,
	}
}

func (s *checkoutService) CreateSession(ctx context.Context, userID uint, items []RawLine, deliveryMethod string) (string, error) {
	user, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load account %d: %w", userID, err)
	}

	// 1. 必须已保存邮编
	if user.Postcode == "" {
		return "", model.ErrMissingAddress
	}

	// 2. 配送半径门禁（解析失败 fail closed）
	if !s.radius.WithinServiceRadius(ctx, user.Postcode) {
		metrics.CheckoutSessions.WithLabelValues("out_of_area").Inc()
		return "", model.ErrOutOfServiceArea
	}

	if deliveryMethod == "" {
		deliveryMethod = model.DeliveryCollect
	}
	if !model.ValidDeliveryMethod(deliveryMethod) {
		return "", fmt.Errorf("%w: unknown delivery method %q", model.ErrInvalidPayload, deliveryMethod)
	}

	// 3. 形状校验；客户端价格在本路径整体作废
	lines, _, err := ValidateCart(items, 0)
	if err != nil {
		return "", err
	}

	// 4. 逐行向商品目录取权威单价/名称，同时生成会话元数据里的不可变快照
	gatewayLines := make([]gateway.LineItem, 0, len(lines))
	snapshot := make([]model.Line, 0, len(lines))
	var total int64

	for _, l := range lines {
		item, err := s.catalog.GetItemByID(ctx, l.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", fmt.Errorf("%w: item %d", model.ErrItemNotFound, l.ItemID)
			}
			return "", fmt.Errorf("catalog lookup for item %d: %w", l.ItemID, err)
		}

		gatewayLines = append(gatewayLines, gateway.LineItem{
			Name:            item.Name,
			UnitAmountCents: item.PriceCents,
			Qty:             int64(l.Qty),
		})
		snapshot = append(snapshot, model.Line{
			ItemID:     item.ID,
			Name:       item.Name,
			PriceCents: item.PriceCents,
			Qty:        l.Qty,
		})
		total += item.PriceCents * int64(l.Qty)
	}

	// 5. 最低消费按目录价总额判定
	if deliveryMethod == model.DeliveryDeliver && total < minDeliveryTotalCents {
		return "", fmt.Errorf("%w: delivery orders require a minimum total of £5.00", model.ErrInvalidPayload)
	}

	itemsJSON, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("serialize session snapshot: %w", err)
	}

	url, err := s.gateway.CreateSession(ctx, gatewayLines, map[string]string{
		"user_id":         strconv.FormatUint(uint64(userID), 10),
		"delivery_method": deliveryMethod,
		"items_json":      string(itemsJSON),
	})
	if err != nil {
		metrics.CheckoutSessions.WithLabelValues("gateway_error").Inc()
		return "", fmt.Errorf("payment session creation failed: %w", err)
	}

	metrics.CheckoutSessions.WithLabelValues("created").Inc()
	return url, nil
}

func (s *checkoutService) HandleGatewayEvent(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.gateway.VerifyEvent(payload, signature)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(metrics.WebhookOutcomeInvalidSignature).Inc()
		logger.Log.Warn("gateway event signature invalid, dropping", zap.Error(err))
		return model.ErrInvalidSignature
	}

	if ev.Type != gateway.EventCheckoutCompleted {
		metrics.WebhookEvents.WithLabelValues(metrics.WebhookOutcomeIgnored).Inc()
		return nil
	}

	// 事件ID重放保护；Redis 故障时放行，CreateOrReuse 仍会兜底去重
	if ev.ID != "" {
		ok, err := s.rdb.SetNX(ctx, "gateway:event:"+ev.ID, 1, eventSeenTTL).Result()
		if err != nil {
			logger.Log.Warn("event replay guard unavailable", zap.String("event_id", ev.ID), zap.Error(err))
		} else if !ok {
			metrics.WebhookEvents.WithLabelValues(metrics.WebhookOutcomeReplayed).Inc()
			return nil
		}
	}

	s.recordConfirmedOrder(ctx, ev)
	return nil
}

// recordConfirmedOrder 网关确认事件 → 订单落库
// 所有失败只记日志："支付成功但订单缺失"是已接受的风险（对账见 DESIGN.md）
func (s *checkoutService) recordConfirmedOrder(ctx context.Context, ev gateway.Event) {
	fail := func(msg string, fields ...zap.Field) {
		metrics.WebhookEvents.WithLabelValues(metrics.WebhookOutcomeError).Inc()
		logger.Log.Error(msg, append(fields, zap.String("event_id", ev.ID))...)
	}

	userID, err := strconv.ParseUint(ev.Metadata["user_id"], 10, 64)
	if err != nil || userID == 0 {
		fail("gateway event has invalid user_id metadata", zap.Error(err))
		return
	}

	var lines []model.Line
	if err := json.Unmarshal([]byte(ev.Metadata["items_json"]), &lines); err != nil {
		fail("gateway event has invalid items snapshot", zap.Error(err))
		return
	}

	deliveryMethod := ev.Metadata["delivery_method"]
	if !model.ValidDeliveryMethod(deliveryMethod) {
		deliveryMethod = model.DeliveryCollect
	}

	user, err := s.accounts.GetByID(ctx, uint(userID))
	if err != nil {
		fail("user not found during webhook processing", zap.Uint64("user_id", userID), zap.Error(err))
		return
	}

	// 金额以网关上报为准，快照里的单价仅用于展示
	total := ev.AmountTotal
	key, err := DedupKey(total, deliveryMethod, lines)
	if err != nil {
		fail("failed to compute dedup key", zap.Error(err))
		return
	}

	order := &model.Order{
		UserID:            uint(userID),
		DeliveryMethod:    deliveryMethod,
		TotalCents:        total,
		PaymentStatus:     model.PaymentPaid,
		FulfillmentStatus: model.FulfillmentAwaiting,
		DedupKey:          key,
	}
	if err := order.SetLines(lines); err != nil {
		fail("failed to encode order lines", zap.Error(err))
		return
	}
	if err := order.SetAddress(snapshotAddress(user)); err != nil {
		fail("failed to encode address snapshot", zap.Error(err))
		return
	}

	created, deduped, err := s.repo.CreateOrReuse(ctx, order, dedupWindow)
	if err != nil {
		fail("failed to record confirmed order", zap.Error(err))
		return
	}

	if deduped {
		metrics.OrdersDeduped.WithLabelValues("webhook").Inc()
	} else {
		metrics.OrdersCreated.WithLabelValues("webhook").Inc()
		enqueueOrderNotification(s.queue, s.adminEmail, created, true)
	}

	metrics.WebhookEvents.WithLabelValues(metrics.WebhookOutcomeProcessed).Inc()
	logger.Log.Info("webhook order recorded",
		zap.Uint("order_id", created.ID),
		zap.Bool("deduped", deduped),
		zap.String("event_id", ev.ID),
	)
}
