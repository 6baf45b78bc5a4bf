package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// 支持的语言常量
const (
	LocaleEN = "en-US"
	LocaleZH = "zh-CN"
	LocaleTW = "zh-TW"
)

var defaultLocale = LocaleEN

var messages = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":            "invalid request",
		"error.internal":               "internal server error",
		"error.not_found":              "resource not found",
		"error.unauthorized":           "unauthorized",
		"error.forbidden":              "permission denied",
		"error.user_disabled":          "account disabled",
		"error.token_invalid":          "invalid token",
		"error.token_revoked":          "token revoked",
		"error.auth_header_missing":    "authorization header missing",
		"error.auth_header_invalid":    "authorization header invalid",
		"error.jwt_secret_missing":     "jwt secret not configured",
		"error.rate_limit_unavailable": "rate limiter unavailable",
		"error.rate_limited":           "too many requests, retry in %d seconds",
		"error.invalid_credentials":    "invalid email or password",
		"error.email_exists":           "email already registered",
		"error.password_policy":        "password does not meet the policy",
		"error.password_invalid":       "incorrect password",
		"error.captcha_required":       "captcha required",
		"error.captcha_invalid":        "captcha invalid",
		"error.captcha_failed":         "captcha generation failed",

		"error.product_not_found":     "product not found",
		"error.product_not_available": "product not available",
		"error.product_slug_exists":   "product slug already exists",
		"error.category_not_found":    "category not found",
		"error.category_slug_exists":  "category slug already exists",
		"error.category_in_use":       "category still has products",

		"error.cart_quantity_invalid": "invalid quantity",
		"error.cart_item_not_found":   "item not in basket",
		"error.cart_action_invalid":   "unknown basket action",
		"error.cart_conflict":         "basket changed concurrently, please retry",
		"error.cart_unavailable":      "basket storage unavailable",
		"error.cart_fetch_failed":     "failed to load basket",
		"error.cart_update_failed":    "failed to update basket",

		"error.order_item_invalid":    "invalid order item",
		"error.stock_insufficient":    "insufficient stock",
		"error.order_not_found":       "order not found",
		"error.order_status_invalid":  "invalid order status",
		"error.order_not_cancellable": "order can no longer be cancelled",
		"error.order_create_failed":   "failed to create order",
		"error.order_fetch_failed":    "failed to load order",

		"error.review_not_purchased":  "you can only review purchased products",
		"error.review_exists":         "you have already reviewed this product",
		"error.review_rating_invalid": "rating must be between 1 and 5",
		"error.review_not_found":      "review not found",
		"error.review_update_failed":  "failed to update review",
		"error.review_fetch_failed":   "failed to load reviews",
		"error.review_delete_failed":  "failed to delete review",

		"error.slug_exists":         "slug already exists",
		"error.slug_used":           "slug already in use",
		"error.insufficient_stock":  "insufficient stock",
		"error.order_update_failed": "failed to update order",

		"error.product_fetch_failed":   "failed to load products",
		"error.product_create_failed":  "failed to create product",
		"error.product_update_failed":  "failed to update product",
		"error.product_delete_failed":  "failed to delete product",
		"error.category_fetch_failed":  "failed to load categories",
		"error.category_create_failed": "failed to create category",
		"error.category_update_failed": "failed to update category",
		"error.category_delete_failed": "failed to delete category",

		"error.register_failed":      "registration failed",
		"error.login_failed":         "login failed",
		"error.login_too_many":       "too many login attempts, please retry later",
		"error.email_invalid":        "invalid email address",
		"error.user_fetch_failed":    "failed to load user",
		"error.user_update_failed":   "failed to update user",
		"error.user_not_found":       "user not found",
		"error.user_status_invalid":  "invalid user status",
		"error.user_id_invalid":      "invalid user id",
		"error.user_id_type_invalid": "invalid user id type",
		"error.save_failed":          "save failed",

		"error.password_weak":            "password too weak",
		"error.password_old_invalid":     "current password is incorrect",
		"error.password_min_length":      "password must be at least %d characters",
		"error.password_require_upper":   "password must contain an uppercase letter",
		"error.password_require_lower":   "password must contain a lowercase letter",
		"error.password_require_number":  "password must contain a digit",
		"error.password_require_special": "password must contain a special character",

		"error.captcha_unavailable":     "captcha unavailable",
		"error.captcha_generate_failed": "captcha generation failed",
		"error.captcha_verify_failed":   "captcha verification failed",
		"error.captcha_config_invalid":  "captcha configuration invalid",

		"error.cart_limit_exceeded": "basket item limit exceeded",

		"error.admin_login_invalid":         "invalid username or password",
		"error.admin_id_invalid":            "invalid admin id",
		"error.admin_id_type_invalid":       "invalid admin id type",
		"error.admin_username_invalid":      "invalid admin username",
		"error.admin_username_exists":       "admin username already exists",
		"error.admin_create_failed":         "failed to create admin",
		"error.admin_update_failed":         "failed to update admin",
		"error.admin_delete_failed":         "failed to delete admin",
		"error.admin_delete_self_forbidden": "cannot delete your own account",
		"error.admin_delete_protected":      "cannot delete the protected admin",
		"error.admin_delete_last_forbidden": "cannot delete the last admin",
		"error.config_fetch_failed":         "failed to load configuration",
		"error.dashboard_fetch_failed":      "failed to load dashboard",
	},
	LocaleZH: {
		"error.bad_request":            "请求参数有误",
		"error.internal":               "服务器内部错误",
		"error.not_found":              "资源不存在",
		"error.unauthorized":           "未登录或登录已过期",
		"error.forbidden":              "没有操作权限",
		"error.user_disabled":          "账号已被禁用",
		"error.token_invalid":          "无效的 token",
		"error.token_revoked":          "token 已失效",
		"error.auth_header_missing":    "缺少认证头",
		"error.auth_header_invalid":    "认证头格式错误",
		"error.jwt_secret_missing":     "JWT 密钥未配置",
		"error.rate_limit_unavailable": "限流服务不可用",
		"error.rate_limited":           "请求过于频繁，请 %d 秒后重试",
		"error.invalid_credentials":    "邮箱或密码错误",
		"error.email_exists":           "邮箱已被注册",
		"error.password_policy":        "密码不符合安全策略",
		"error.password_invalid":       "密码错误",
		"error.captcha_required":       "需要验证码",
		"error.captcha_invalid":        "验证码错误",
		"error.captcha_failed":         "验证码生成失败",

		"error.product_not_found":     "商品不存在",
		"error.product_not_available": "商品已下架",
		"error.product_slug_exists":   "商品 slug 已存在",
		"error.category_not_found":    "分类不存在",
		"error.category_slug_exists":  "分类 slug 已存在",
		"error.category_in_use":       "分类下仍有商品",

		"error.cart_quantity_invalid": "数量不合法",
		"error.cart_item_not_found":   "购物车中没有该商品",
		"error.cart_action_invalid":   "未知的购物车操作",
		"error.cart_conflict":         "购物车已被并发修改，请重试",
		"error.cart_unavailable":      "购物车存储不可用",
		"error.cart_fetch_failed":     "获取购物车失败",
		"error.cart_update_failed":    "更新购物车失败",

		"error.order_item_invalid":    "订单项不合法",
		"error.stock_insufficient":    "库存不足",
		"error.order_not_found":       "订单不存在",
		"error.order_status_invalid":  "订单状态不合法",
		"error.order_not_cancellable": "订单已无法取消",
		"error.order_create_failed":   "创建订单失败",
		"error.order_fetch_failed":    "获取订单失败",

		"error.review_not_purchased":  "只能评价已购买的商品",
		"error.review_exists":         "已评价过该商品",
		"error.review_rating_invalid": "评分必须在 1 到 5 之间",
		"error.review_not_found":      "评价不存在",
		"error.review_update_failed":  "更新评价失败",
		"error.review_fetch_failed":   "获取评价失败",
		"error.review_delete_failed":  "删除评价失败",

		"error.slug_exists":         "slug 已存在",
		"error.slug_used":           "slug 已被占用",
		"error.insufficient_stock":  "库存不足",
		"error.order_update_failed": "更新订单失败",

		"error.product_fetch_failed":   "获取商品失败",
		"error.product_create_failed":  "创建商品失败",
		"error.product_update_failed":  "更新商品失败",
		"error.product_delete_failed":  "删除商品失败",
		"error.category_fetch_failed":  "获取分类失败",
		"error.category_create_failed": "创建分类失败",
		"error.category_update_failed": "更新分类失败",
		"error.category_delete_failed": "删除分类失败",

		"error.register_failed":      "注册失败",
		"error.login_failed":         "登录失败",
		"error.login_too_many":       "登录尝试过于频繁，请稍后再试",
		"error.email_invalid":        "邮箱格式不正确",
		"error.user_fetch_failed":    "获取用户失败",
		"error.user_update_failed":   "更新用户失败",
		"error.user_not_found":       "用户不存在",
		"error.user_status_invalid":  "用户状态不合法",
		"error.user_id_invalid":      "用户 ID 不合法",
		"error.user_id_type_invalid": "用户 ID 类型不合法",
		"error.save_failed":          "保存失败",

		"error.password_weak":            "密码强度不足",
		"error.password_old_invalid":     "原密码错误",
		"error.password_min_length":      "密码长度不能少于 %d 位",
		"error.password_require_upper":   "密码必须包含大写字母",
		"error.password_require_lower":   "密码必须包含小写字母",
		"error.password_require_number":  "密码必须包含数字",
		"error.password_require_special": "密码必须包含特殊字符",

		"error.captcha_unavailable":     "验证码服务不可用",
		"error.captcha_generate_failed": "验证码生成失败",
		"error.captcha_verify_failed":   "验证码校验失败",
		"error.captcha_config_invalid":  "验证码配置不合法",

		"error.cart_limit_exceeded": "购物车商品数量超出限制",

		"error.admin_login_invalid":         "用户名或密码错误",
		"error.admin_id_invalid":            "管理员 ID 不合法",
		"error.admin_id_type_invalid":       "管理员 ID 类型不合法",
		"error.admin_username_invalid":      "管理员用户名不合法",
		"error.admin_username_exists":       "管理员用户名已存在",
		"error.admin_create_failed":         "创建管理员失败",
		"error.admin_update_failed":         "更新管理员失败",
		"error.admin_delete_failed":         "删除管理员失败",
		"error.admin_delete_self_forbidden": "不能删除当前登录账号",
		"error.admin_delete_protected":      "不能删除受保护的管理员",
		"error.admin_delete_last_forbidden": "不能删除最后一个管理员",
		"error.config_fetch_failed":         "获取配置失败",
		"error.dashboard_fetch_failed":      "获取仪表盘数据失败",
	},
}

// T 按语言返回文案，缺失时回退到默认语言，再回退到 key 本身。
func T(locale, key string) string {
	if table, ok := messages[normalizeLocale(locale)]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[defaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 返回带参数的文案。
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

// ResolveLocale 解析请求语言：优先 query 参数 lang，其次 Accept-Language。
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return defaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return normalizeLocale(lang)
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		if normalized := normalizeLocale(tag); normalized != "" {
			return normalized
		}
	}
	return defaultLocale
}

func normalizeLocale(locale string) string {
	tag := strings.ToLower(strings.TrimSpace(locale))
	switch {
	case tag == "":
		return defaultLocale
	case strings.HasPrefix(tag, "zh-tw"), strings.HasPrefix(tag, "zh-hant"), strings.HasPrefix(tag, "zh-hk"):
		// 繁体暂未单独维护文案，回退简体
		return LocaleZH
	case strings.HasPrefix(tag, "zh"):
		return LocaleZH
	case strings.HasPrefix(tag, "en"):
		return LocaleEN
	default:
		return defaultLocale
	}
}
