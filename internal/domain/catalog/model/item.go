package model

import baseModel "pawlina-api/pkg/model"

// Item 商品模型
// 结算路径只信任这里的 PriceCents，客户端提交的价格一律丢弃
type Item struct {
	baseModel.BaseModel
	CategoryID   uint   `gorm:"index" json:"category_id"`
	Name         string `gorm:"not null" json:"name"`
	Description  string `json:"description"`
	Species      string `gorm:"index" json:"species"`
	PriceCents   int64  `gorm:"not null;default:0" json:"price_cents"`
	ImageURL     string `json:"image_url"`
	InStock      bool   `gorm:"default:true" json:"in_stock"`
	SpecialOffer bool   `gorm:"default:false" json:"special_offer"`
}

// Category 商品分类
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex" json:"name"`
	Slug string `gorm:"uniqueIndex" json:"slug"`
}
