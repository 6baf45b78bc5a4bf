package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                      // 主键
	OrderNo         string         `gorm:"uniqueIndex;not null" json:"order_no"`                      // 订单编号
	UserID          uint           `gorm:"index;not null" json:"user_id"`                             // 用户ID
	Status          string         `gorm:"index;not null" json:"status"`                              // 订单状态
	Currency        string         `gorm:"not null" json:"currency"`                                  // 币种
	TotalAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 订单金额
	ShippingAddress JSON           `gorm:"type:json" json:"shipping_address"`                         // 收货地址快照
	PaymentInfo     JSON           `gorm:"type:json" json:"payment_info"`                             // 支付信息快照
	ClientIP        string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`               // 下单客户端IP
	CancelReason    string         `gorm:"type:varchar(200)" json:"cancel_reason,omitempty"`          // 取消原因
	ExpiresAt       *time.Time     `gorm:"index" json:"expires_at"`                                   // 待处理超时时间
	CanceledAt      *time.Time     `gorm:"index" json:"canceled_at"`                                  // 取消时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
	User  *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`   // 下单用户
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
