package order

import (
	"time"

	catalogrepo "pawlina-api/internal/domain/catalog/repository"
	"pawlina-api/internal/domain/geo"
	"pawlina-api/internal/domain/notify"
	"pawlina-api/internal/domain/order/gateway"
	"pawlina-api/internal/domain/order/handler"
	"pawlina-api/internal/domain/order/repository"
	"pawlina-api/internal/domain/order/service"
	userrepo "pawlina-api/internal/domain/user/repository"
	"pawlina-api/internal/pkg/config"
	"pawlina-api/internal/pkg/middleware"
	"pawlina-api/internal/pkg/registry"
	"pawlina-api/internal/pkg/worker"
	"pawlina-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OrderModule 订单模块：直接下单、支付会话、网关回调、后台管理
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	// 依赖 user 与 catalog
	return 20
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	cfg := config.GlobalConfig

	// 1. 仓库与外部依赖
	orderRepo := repository.NewOrderRepository(ctx.DB)
	users := userrepo.NewUserRepository(ctx.DB)
	catalog := catalogrepo.NewCatalogRepository(ctx.DB)

	geocoder := geo.WithCache(
		geo.NewPostcodesClient(cfg.Geo.LookupBaseURL),
		ctx.Redis,
		time.Duration(cfg.Geo.CacheTTLHours)*time.Hour,
	)
	radius := geo.NewService(geocoder, cfg.Geo.OriginPostcode, cfg.Geo.RadiusMiles)

	// 2. 通知工作池：未配 SMTP 时降级为日志输出
	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.SMTP.Host != "" {
		notifier = notify.NewMailer(cfg.SMTP)
	} else {
		logger.Log.Warn("smtp not configured, order notifications will only be logged")
	}
	pool := worker.NewPool(notifier, 2, 64)
	pool.Start()

	// 3. 服务
	orderService := service.NewOrderService(orderRepo, users, pool, cfg.SMTP.AdminEmail)
	adminService := service.NewAdminOrderService(orderRepo)

	orderHandler := handler.NewOrderHandler(orderService)
	adminHandler := handler.NewAdminOrderHandler(adminService)

	// 支付网关未配置时跳过结算路由，直接下单路径不受影响
	var checkoutHandler *handler.CheckoutHandler
	gw, err := gateway.NewStripeGateway(cfg.Stripe)
	if err != nil {
		logger.Log.Warn("payment gateway not configured, checkout routes disabled", zap.Error(err))
	} else {
		checkoutService := service.NewCheckoutService(
			orderRepo, users, catalog, radius, gw, ctx.Redis, pool, cfg.SMTP.AdminEmail,
		)
		checkoutHandler = handler.NewCheckoutHandler(checkoutService)
	}

	// 4. 路由注册
	setupRoutes(ctx.Router, orderHandler, checkoutHandler, adminHandler)

	return nil
}

func setupRoutes(r *gin.Engine, oh *handler.OrderHandler, ch *handler.CheckoutHandler, ah *handler.AdminOrderHandler) {
	api := r.Group("/api")

	orders := api.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	{
		orders.POST("", oh.Place)
		orders.GET("", oh.List)
	}

	if ch != nil {
		checkout := api.Group("/checkout")
		checkout.Use(middleware.AuthMiddleware())
		{
			checkout.POST("", ch.CreateSession)
		}
		// 回调由签名校验保护，不走登录态
		api.POST("/stripe/webhook", ch.Webhook)
	}

	admin := api.Group("/admin/orders")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("", ah.List)
		admin.PUT("/:id", ah.Update)
	}
}
