package handler

import (
	"errors"
	"net/http"
	"strconv"

	"pawlina-api/internal/domain/catalog/repository"
	"pawlina-api/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CatalogHandler struct {
	repo repository.CatalogRepository
}

func NewCatalogHandler(repo repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{repo: repo}
}

// ListItems 商品列表
// @Summary 按分类/宠物种类/关键词筛选商品
// @Tags Catalog
// @Produce json
// @Param category query string false "Category slug"
// @Param species query string false "Species slug"
// @Param q query string false "Search text"
// @Router /api/items [get]
func (h *CatalogHandler) ListItems(c *gin.Context) {
	items, err := h.repo.ListItems(c.Request.Context(), repository.ItemFilter{
		CategorySlug: c.Query("category"),
		Species:      c.Query("species"),
		Search:       c.Query("q"),
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to list items")
		return
	}
	response.Success(c, items)
}

// GetItem 单个商品
// @Summary 商品详情
// @Tags Catalog
// @Produce json
// @Param id path int true "Item ID"
// @Router /api/items/{id} [get]
func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid item id")
		return
	}

	item, err := h.repo.GetItemByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrCatalogItemNotFound, "Item not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to load item")
		return
	}
	response.Success(c, item)
}

// ListCategories 分类列表
// @Summary 分类列表
// @Tags Catalog
// @Produce json
// @Router /api/categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	cats, err := h.repo.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to list categories")
		return
	}
	response.Success(c, cats)
}
