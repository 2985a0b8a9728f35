package repository

import (
	"context"
	"strings"

	"pawlina-api/internal/domain/catalog/model"

	"gorm.io/gorm"
)

// ItemFilter 商品列表查询条件
type ItemFilter struct {
	CategorySlug string
	Species      string
	Search       string
}

// CatalogRepository 商品目录只读查询
// 结算编排器通过 GetItemByID 取权威单价和名称
type CatalogRepository interface {
	GetItemByID(ctx context.Context, id uint) (*model.Item, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]model.Item, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetItemByID(ctx context.Context, id uint) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *catalogRepository) ListItems(ctx context.Context, filter ItemFilter) ([]model.Item, error) {
	q := r.db.WithContext(ctx).Model(&model.Item{})

	if filter.Species != "" {
		q = q.Where("LOWER(species) = ?", strings.ToLower(filter.Species))
	}
	if filter.CategorySlug != "" {
		var cat model.Category
		if err := r.db.WithContext(ctx).Where("slug = ?", filter.CategorySlug).First(&cat).Error; err != nil {
			// 未知分类返回空列表，而不是错误
			return []model.Item{}, nil
		}
		q = q.Where("category_id = ?", cat.ID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		if len(s) > 80 {
			s = s[:80]
		}
		q = q.Where("name ILIKE ?", "%"+s+"%")
	}

	var items []model.Item
	if err := q.Order("id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}
