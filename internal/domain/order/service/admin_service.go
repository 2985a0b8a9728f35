package service

import (
	"context"

	"pawlina-api/internal/domain/order/model"
	"pawlina-api/internal/domain/order/repository"
)

// AdminOrderService 后台订单管理：活跃/归档列表 + 履约字段更新
type AdminOrderService interface {
	List(ctx context.Context) (active, archived []model.AdminOrder, err error)
	Update(ctx context.Context, orderID uint, patch model.FulfillmentPatch) (*model.Order, error)
}

type adminOrderService struct {
	repo repository.OrderRepository
}

func NewAdminOrderService(repo repository.OrderRepository) AdminOrderService {
	return &adminOrderService{repo: repo}
}

func (s *adminOrderService) List(ctx context.Context) ([]model.AdminOrder, []model.AdminOrder, error) {
	return s.repo.ListForAdmin(ctx)
}

func (s *adminOrderService) Update(ctx context.Context, orderID uint, patch model.FulfillmentPatch) (*model.Order, error) {
	return s.repo.UpdateFulfillment(ctx, orderID, patch)
}
