package user

import (
	"context"
	"time"

	"pawlina-api/internal/domain/geo"
	"pawlina-api/internal/domain/user/handler"
	"pawlina-api/internal/domain/user/repository"
	"pawlina-api/internal/domain/user/service"
	"pawlina-api/internal/pkg/config"
	"pawlina-api/internal/pkg/middleware"
	"pawlina-api/internal/pkg/registry"
	"pawlina-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserModule 用户模块
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// 用户模块优先级最高，其他模块依赖它
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	cfg := config.GlobalConfig

	// 1. 依赖注入
	userRepo := repository.NewUserRepository(ctx.DB)

	geocoder := geo.WithCache(
		geo.NewPostcodesClient(cfg.Geo.LookupBaseURL),
		ctx.Redis,
		time.Duration(cfg.Geo.CacheTTLHours)*time.Hour,
	)
	radius := geo.NewService(geocoder, cfg.Geo.OriginPostcode, cfg.Geo.RadiusMiles)

	userService := service.NewUserService(userRepo, radius)
	userHandler := handler.NewUserHandler(userService)

	// 2. 自动创建管理员
	if err := userService.EnsureAdmin(context.Background(), cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logger.Log.Error("failed to ensure admin account", zap.Error(err))
	}

	// 3. 路由注册
	setupRoutes(ctx.Router, userHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.UserHandler) {
	// 公开路由（更严的限流）
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	// 受保护的路由
	accountGroup := r.Group("/api/account")
	accountGroup.Use(middleware.AuthMiddleware())
	{
		accountGroup.GET("/me", h.Me)
		accountGroup.PUT("/me", h.UpdateMe)
	}
}
