package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/halomart/halomart/internal/http/response"
	"github.com/halomart/halomart/internal/repository"
	"github.com/halomart/halomart/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminReviews 获取评价列表（含待审核）
func (h *Handler) GetAdminReviews(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ReviewListFilter{
		Page:     page,
		PageSize: pageSize,
	}
	if raw := strings.TrimSpace(c.Query("product_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.ProductID = uint(parsed)
		}
	}
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.UserID = uint(parsed)
		}
	}
	if raw := strings.TrimSpace(c.Query("approved")); raw != "" {
		approved, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		filter.Approved = &approved
	}

	reviews, total, err := h.ReviewService.AdminList(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.review_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, reviews, pagination)
}

// ApproveReviewRequest 审核评价请求
type ApproveReviewRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// ApproveAdminReview 审核评价，通过后参与商品均分统计
func (h *Handler) ApproveAdminReview(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ApproveReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	review, err := h.ReviewService.AdminSetApproved(id, *req.Approved)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.review_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.review_update_failed", err)
		return
	}

	response.Success(c, review)
}

// DeleteAdminReview 删除评价
func (h *Handler) DeleteAdminReview(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.ReviewService.AdminDelete(id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.review_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.review_delete_failed", err)
		return
	}

	response.Success(c, nil)
}
