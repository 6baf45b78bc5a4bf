package models

import (
	"time"

	"gorm.io/gorm"
)

// Review 商品评价表
type Review struct {
	ID        uint           `gorm:"primarykey" json:"id"`                           // 主键
	UserID    uint           `gorm:"not null;index" json:"user_id"`                  // 用户ID
	ProductID uint           `gorm:"not null;index" json:"product_id"`               // 商品ID
	Rating    int            `gorm:"not null" json:"rating"`                         // 评分（1-5 整数）
	Comment   string         `gorm:"type:varchar(2000)" json:"comment"`              // 评价内容
	Approved  bool           `gorm:"not null;default:false;index" json:"approved"`   // 是否已审核通过
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                     // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                 // 软删除时间

	// 关联
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`       // 评价用户
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 评价商品
}

// TableName 指定表名
func (Review) TableName() string {
	return "reviews"
}
