package model

import baseModel "pawlina-api/pkg/model"

// User 用户模型
type User struct {
	baseModel.BaseModel
	Name         string `json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `json:"-"` // 密码哈希不返回给前端
	Role         string `gorm:"default:'user'" json:"role"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	Postcode     string `json:"postcode"`
	Country      string `json:"country"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
