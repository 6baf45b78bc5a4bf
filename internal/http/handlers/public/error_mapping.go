package public

import (
	"errors"

	"github.com/halomart/halomart/internal/http/response"
	"github.com/halomart/halomart/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrCartUnavailable, code: response.CodeInternal, key: "error.cart_unavailable"},
	{target: service.ErrCartQuantityInvalid, code: response.CodeBadRequest, key: "error.cart_quantity_invalid"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, key: "error.cart_item_not_found"},
	{target: service.ErrCartActionInvalid, code: response.CodeBadRequest, key: "error.cart_action_invalid"},
	{target: service.ErrCartConflict, code: response.CodeConflict, key: "error.cart_conflict"},
	{target: service.ErrCartLimitExceeded, code: response.CodeBadRequest, key: "error.cart_limit_exceeded"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
}

var userOrderCreateErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidOrderItem, code: response.CodeBadRequest, key: "error.order_item_invalid"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
	{target: service.ErrInsufficientStock, code: response.CodeBadRequest, key: "error.insufficient_stock"},
}

var userReviewErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.not_found"},
	{target: service.ErrReviewRatingInvalid, code: response.CodeBadRequest, key: "error.review_rating_invalid"},
	{target: service.ErrReviewNotPurchased, code: response.CodeForbidden, key: "error.review_not_purchased"},
	{target: service.ErrReviewExists, code: response.CodeConflict, key: "error.review_exists"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_update_failed")
}

func respondUserOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, userOrderCreateErrorRules, response.CodeInternal, "error.order_create_failed")
}

func respondUserReviewError(c *gin.Context, err error) {
	respondWithMappedError(c, err, userReviewErrorRules, response.CodeInternal, "error.review_update_failed")
}
