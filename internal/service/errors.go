package service

import "errors"

// 通用业务错误
var (
	ErrNotFound = errors.New("资源不存在")
)

// 认证相关错误
var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrInvalidPassword    = errors.New("密码错误")
	ErrWeakPassword       = errors.New("密码不符合安全策略")
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrInvalidEmail       = errors.New("邮箱格式不正确")
	ErrUserDisabled       = errors.New("账号已被禁用")
)

// 验证码相关错误
var (
	ErrCaptchaRequired      = errors.New("需要验证码")
	ErrCaptchaInvalid       = errors.New("验证码错误")
	ErrCaptchaConfigInvalid = errors.New("验证码配置不合法")
)

// 目录相关错误
var (
	ErrSlugExists          = errors.New("slug 已存在")
	ErrCategoryInUse       = errors.New("分类下仍有商品")
	ErrProductNotAvailable = errors.New("商品不可用")
)

// 购物车相关错误
var (
	ErrCartUnavailable     = errors.New("购物车存储不可用")
	ErrCartQuantityInvalid = errors.New("购物车数量不合法")
	ErrCartItemNotFound    = errors.New("购物车中没有该商品")
	ErrCartActionInvalid   = errors.New("未知的购物车操作")
	ErrCartConflict        = errors.New("购物车并发修改冲突")
	ErrCartLimitExceeded   = errors.New("购物车条目超出上限")
)

// 订单相关错误
var (
	ErrInvalidOrderItem    = errors.New("订单项不合法")
	ErrInsufficientStock   = errors.New("库存不足")
	ErrOrderNotFound       = errors.New("订单不存在")
	ErrOrderStatusInvalid  = errors.New("订单状态不合法")
	ErrOrderNotCancellable = errors.New("订单已无法取消")
)

// 评价相关错误
var (
	ErrReviewNotPurchased  = errors.New("未购买该商品")
	ErrReviewExists        = errors.New("已评价过该商品")
	ErrReviewRatingInvalid = errors.New("评分必须在 1 到 5 之间")
)

// 基础设施相关错误
var (
	ErrQueueUnavailable = errors.New("队列服务不可用")

	// ErrDashboardRangeInvalid 仪表盘查询区间不合法
	ErrDashboardRangeInvalid = errors.New("查询区间不合法")
)
