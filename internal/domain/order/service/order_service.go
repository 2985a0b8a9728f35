package service

import (
	"context"
	"fmt"
	"time"

	"pawlina-api/internal/domain/notify"
	"pawlina-api/internal/domain/order/model"
	"pawlina-api/internal/domain/order/repository"
	usermodel "pawlina-api/internal/domain/user/model"
	"pawlina-api/internal/pkg/worker"
	"pawlina-api/pkg/logger"
	"pawlina-api/pkg/metrics"

	"go.uber.org/zap"
)

// dedupWindow 重复提交识别窗口
// 24小时是启发式：同一用户24小时内两笔内容完全相同的真实订单会被误合并，已知取舍
const dedupWindow = 24 * time.Hour

// AccountLookup 账户只读查询能力（user 仓库实现）
type AccountLookup interface {
	GetByID(ctx context.Context, id uint) (*usermodel.User, error)
}

// NotifyQueue 通知入队能力（worker.Pool 实现）
type NotifyQueue interface {
	Enqueue(task worker.NotifyTask)
}

// OrderService 手工下单路径与用户订单查询
type OrderService interface {
	// PlaceDirect 手工/非网关下单：校验、去重、落库、尽力通知
	// 返回 (订单, 是否命中去重)
	PlaceDirect(ctx context.Context, userID uint, items []RawLine, totalCents int64, deliveryMethod string) (*model.Order, bool, error)
	ListForUser(ctx context.Context, userID uint) ([]model.Order, error)
}

type orderService struct {
	repo       repository.OrderRepository
	accounts   AccountLookup
	queue      NotifyQueue
	adminEmail string
}

func NewOrderService(repo repository.OrderRepository, accounts AccountLookup, queue NotifyQueue, adminEmail string) OrderService {
	return &orderService{
		repo:       repo,
		accounts:   accounts,
		queue:      queue,
		adminEmail: adminEmail,
	}
}

func (s *orderService) PlaceDirect(ctx context.Context, userID uint, items []RawLine, totalCents int64, deliveryMethod string) (*model.Order, bool, error) {
	user, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("load account %d: %w", userID, err)
	}

	if deliveryMethod == "" {
		deliveryMethod = model.DeliveryCollect
	}
	if !model.ValidDeliveryMethod(deliveryMethod) {
		return nil, false, fmt.Errorf("%w: unknown delivery method %q", model.ErrInvalidPayload, deliveryMethod)
	}

	// 1. 清洗购物车
	lines, total, err := ValidateCart(items, totalCents)
	if err != nil {
		return nil, false, err
	}

	// 2. 配送订单最低消费，必须在服务端卡住
	if deliveryMethod == model.DeliveryDeliver && total < minDeliveryTotalCents {
		return nil, false, fmt.Errorf("%w: delivery orders require a minimum total of £5.00", model.ErrInvalidPayload)
	}

	// 3. 组装订单（地址快照在此刻冻结）
	key, err := DedupKey(total, deliveryMethod, lines)
	if err != nil {
		return nil, false, err
	}

	order := &model.Order{
		UserID:            userID,
		DeliveryMethod:    deliveryMethod,
		TotalCents:        total,
		PaymentStatus:     model.PaymentPlaced,
		FulfillmentStatus: model.FulfillmentAwaiting,
		DedupKey:          key,
	}
	if err := order.SetLines(lines); err != nil {
		return nil, false, err
	}
	if err := order.SetAddress(snapshotAddress(user)); err != nil {
		return nil, false, err
	}

	// 4. 去重 + 落库，单一串行化入口
	created, deduped, err := s.repo.CreateOrReuse(ctx, order, dedupWindow)
	if err != nil {
		return nil, false, err
	}

	if deduped {
		metrics.OrdersDeduped.WithLabelValues("direct").Inc()
		return created, true, nil
	}
	metrics.OrdersCreated.WithLabelValues("direct").Inc()

	// 5. 尽力通知：失败只记日志，绝不影响已落库的订单
	enqueueOrderNotification(s.queue, s.adminEmail, created, false)

	return created, false, nil
}

func (s *orderService) ListForUser(ctx context.Context, userID uint) ([]model.Order, error) {
	return s.repo.ListForUser(ctx, userID)
}

func snapshotAddress(user *usermodel.User) model.AddressSnapshot {
	return model.AddressSnapshot{
		Name:         user.Name,
		Email:        user.Email,
		AddressLine1: user.AddressLine1,
		AddressLine2: user.AddressLine2,
		City:         user.City,
		Postcode:     user.Postcode,
		Country:      user.Country,
	}
}

func enqueueOrderNotification(queue NotifyQueue, adminEmail string, order *model.Order, paid bool) {
	if queue == nil || adminEmail == "" {
		return
	}
	msg, err := notify.OrderMessage(adminEmail, order, paid)
	if err != nil {
		logger.Log.Error("failed to render order notification",
			zap.Uint("order_id", order.ID), zap.Error(err))
		return
	}
	queue.Enqueue(worker.NotifyTask{OrderID: order.ID, Message: msg})
}
