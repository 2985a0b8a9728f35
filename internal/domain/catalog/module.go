package catalog

import (
	"pawlina-api/internal/domain/catalog/handler"
	"pawlina-api/internal/domain/catalog/repository"
	"pawlina-api/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CatalogModule 商品目录模块（只读）
type CatalogModule struct{}

func init() {
	registry.Register(&CatalogModule{})
}

func (m *CatalogModule) Name() string {
	return "catalog"
}

func (m *CatalogModule) Priority() int {
	return 10
}

func (m *CatalogModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewCatalogRepository(ctx.DB)
	h := handler.NewCatalogHandler(repo)

	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CatalogHandler) {
	api := r.Group("/api")
	{
		api.GET("/items", h.ListItems)
		api.GET("/items/:id", h.GetItem)
		api.GET("/categories", h.ListCategories)
	}
}
