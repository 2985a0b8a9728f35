package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pawlina-api/internal/domain/order/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 订单台账常量
const (
	// activeWindow 后台"进行中"分区的时间窗口
	activeWindow = 5 * 24 * time.Hour
	// archiveLimit 归档分区单次返回上限（展示限制，不是删除）
	archiveLimit = 200
)

// OrderRepository 订单台账
// 订单只增不删；所有写入都走这里，别的组件不直接碰 orders 表
type OrderRepository interface {
	// CreateOrReuse 两条创建路径共用的串行化入口：窗口内已有相同
	// (user_id, dedup_key) 的订单则复用，否则插入。返回是否命中去重。
	CreateOrReuse(ctx context.Context, order *model.Order, window time.Duration) (*model.Order, bool, error)
	GetByID(ctx context.Context, id uint) (*model.Order, error)
	ListForUser(ctx context.Context, userID uint) ([]model.Order, error)
	ListForAdmin(ctx context.Context) (active, archived []model.AdminOrder, err error)
	// UpdateFulfillment 行级锁内应用后台字段更新，串行化并发修改
	UpdateFulfillment(ctx context.Context, id uint, patch model.FulfillmentPatch) (*model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrReuse(ctx context.Context, order *model.Order, window time.Duration) (*model.Order, bool, error) {
	result, deduped, err := r.createOrReuseOnce(ctx, order, window)
	if err != nil && isSerializationFailure(err) {
		// 两笔相同提交并发时，败者收到 40001；重试一次即可命中胜者刚落库的行
		result, deduped, err = r.createOrReuseOnce(ctx, order, window)
	}
	return result, deduped, err
}

// isSerializationFailure 可串行化事务冲突 (SQLSTATE 40001)
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func (r *orderRepository) createOrReuseOnce(ctx context.Context, order *model.Order, window time.Duration) (*model.Order, bool, error) {
	var (
		result  *model.Order
		deduped bool
	)

	// 可串行化事务关闭"读到没有→插入"的竞态：两个相同提交并发时只有一个能落库
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cutoff := time.Now().Add(-window)

		var existing model.Order
		err := tx.
			Where("user_id = ? AND dedup_key = ? AND created_at >= ?",
				order.UserID, order.DedupKey, cutoff).
			Order("id DESC").
			First(&existing).Error
		if err == nil {
			result = &existing
			deduped = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}
		result = order
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, false, err
	}

	return result, deduped, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListForUser(ctx context.Context, userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ListForAdmin(ctx context.Context) ([]model.AdminOrder, []model.AdminOrder, error) {
	cutoff := time.Now().Add(-activeWindow)

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Table("orders").
			Select("orders.*, users.email AS user_email, users.name AS user_name").
			Joins("JOIN users ON users.id = orders.user_id").
			Order("orders.id DESC")
	}

	active := make([]model.AdminOrder, 0)
	if err := base().Where("orders.created_at >= ?", cutoff).Scan(&active).Error; err != nil {
		return nil, nil, err
	}

	archived := make([]model.AdminOrder, 0)
	if err := base().Where("orders.created_at < ?", cutoff).Limit(archiveLimit).Scan(&archived).Error; err != nil {
		return nil, nil, err
	}

	return active, archived, nil
}

func (r *orderRepository) UpdateFulfillment(ctx context.Context, id uint, patch model.FulfillmentPatch) (*model.Order, error) {
	var updated model.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		// FOR UPDATE：日期写一次的规则不能被两个并发更新绕过
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrOrderNotFound
			}
			return err
		}

		if err := order.ApplyFulfillment(patch); err != nil {
			return err
		}

		err = tx.Model(&model.Order{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"fulfillment_status": order.FulfillmentStatus,
				"delivery_date":      order.DeliveryDate,
				"admin_note":         order.AdminNote,
			}).Error
		if err != nil {
			return err
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}
