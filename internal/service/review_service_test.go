package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/halomart/halomart/internal/constants"
	"github.com/halomart/halomart/internal/models"
	"github.com/halomart/halomart/internal/repository"
)

func setupReviewServiceTest(t *testing.T) *ReviewService {
	t.Helper()
	db := setupTestDB(t)
	return NewReviewService(
		repository.NewReviewRepository(db),
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
	)
}

// createTestPurchase 直接落一条订单与订单项，作为评价资格依据
func createTestPurchase(t *testing.T, userID, productID uint, status string) {
	t.Helper()
	order := models.Order{
		OrderNo:  fmt.Sprintf("HMTEST%d%d%s", userID, productID, status),
		UserID:   userID,
		Status:   status,
		Currency: "USD",
	}
	if err := models.DB.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	item := models.OrderItem{
		OrderID:   order.ID,
		ProductID: productID,
		Quantity:  1,
	}
	if err := models.DB.Create(&item).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}
}

func TestCreateReviewValidations(t *testing.T) {
	svc := setupReviewServiceTest(t)
	category := createTestCategory(t, "electronics")
	product := createTestProduct(t, category.ID, "smart-watch", 159.00, 5)

	if _, err := svc.Create(CreateReviewInput{UserID: 1, ProductID: product.ID, Rating: 0}); !errors.Is(err, ErrReviewRatingInvalid) {
		t.Fatalf("rating 0 want ErrReviewRatingInvalid, got=%v", err)
	}
	if _, err := svc.Create(CreateReviewInput{UserID: 1, ProductID: product.ID, Rating: 6}); !errors.Is(err, ErrReviewRatingInvalid) {
		t.Fatalf("rating 6 want ErrReviewRatingInvalid, got=%v", err)
	}
	if _, err := svc.Create(CreateReviewInput{UserID: 1, ProductID: product.ID + 100, Rating: 5}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing product want ErrNotFound, got=%v", err)
	}
	if _, err := svc.Create(CreateReviewInput{UserID: 1, ProductID: product.ID, Rating: 5}); !errors.Is(err, ErrReviewNotPurchased) {
		t.Fatalf("no purchase want ErrReviewNotPurchased, got=%v", err)
	}

	// 已取消的订单不构成购买资格
	createTestPurchase(t, 1, product.ID, constants.OrderStatusCancelled)
	if _, err := svc.Create(CreateReviewInput{UserID: 1, ProductID: product.ID, Rating: 5}); !errors.Is(err, ErrReviewNotPurchased) {
		t.Fatalf("cancelled order want ErrReviewNotPurchased, got=%v", err)
	}
}

func TestCreateReviewAfterPurchase(t *testing.T) {
	svc := setupReviewServiceTest(t)
	category := createTestCategory(t, "electronics")
	product := createTestProduct(t, category.ID, "smart-watch", 159.00, 5)
	createTestPurchase(t, 1, product.ID, constants.OrderStatusDelivered)

	review, err := svc.Create(CreateReviewInput{UserID: 1, ProductID: product.ID, Rating: 5, Comment: "很好用"})
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}
	if review.Approved {
		t.Fatalf("new review must be pending approval")
	}

	// 未审核评价不计入均分
	if got := reloadProduct(t, product.ID); got.AverageRating != 0 || got.ReviewCount != 0 {
		t.Fatalf("pending review must not affect stats, got=%v/%d", got.AverageRating, got.ReviewCount)
	}

	if _, err := svc.Create(CreateReviewInput{UserID: 1, ProductID: product.ID, Rating: 3}); !errors.Is(err, ErrReviewExists) {
		t.Fatalf("duplicate review want ErrReviewExists, got=%v", err)
	}
}

func TestAdminSetApprovedRecalculatesRating(t *testing.T) {
	svc := setupReviewServiceTest(t)
	category := createTestCategory(t, "electronics")
	product := createTestProduct(t, category.ID, "smart-watch", 159.00, 5)

	ratings := map[uint]int{1: 5, 2: 4, 3: 4}
	reviews := map[uint]*models.Review{}
	for userID, rating := range ratings {
		createTestPurchase(t, userID, product.ID, constants.OrderStatusDelivered)
		review, err := svc.Create(CreateReviewInput{UserID: userID, ProductID: product.ID, Rating: rating})
		if err != nil {
			t.Fatalf("create review for user %d failed: %v", userID, err)
		}
		reviews[userID] = review
	}

	if _, err := svc.AdminSetApproved(reviews[1].ID, true); err != nil {
		t.Fatalf("approve review failed: %v", err)
	}
	if got := reloadProduct(t, product.ID); got.AverageRating != 5 || got.ReviewCount != 1 {
		t.Fatalf("stats want 5/1, got=%v/%d", got.AverageRating, got.ReviewCount)
	}

	if _, err := svc.AdminSetApproved(reviews[2].ID, true); err != nil {
		t.Fatalf("approve second review failed: %v", err)
	}
	if got := reloadProduct(t, product.ID); got.AverageRating != 4.5 || got.ReviewCount != 2 {
		t.Fatalf("stats want 4.5/2, got=%v/%d", got.AverageRating, got.ReviewCount)
	}

	// (5+4+4)/3 = 4.333... 保留 2 位小数
	if _, err := svc.AdminSetApproved(reviews[3].ID, true); err != nil {
		t.Fatalf("approve third review failed: %v", err)
	}
	if got := reloadProduct(t, product.ID); got.AverageRating != 4.33 || got.ReviewCount != 3 {
		t.Fatalf("stats want 4.33/3, got=%v/%d", got.AverageRating, got.ReviewCount)
	}

	// 撤销审核后重算
	if _, err := svc.AdminSetApproved(reviews[1].ID, false); err != nil {
		t.Fatalf("unapprove review failed: %v", err)
	}
	if got := reloadProduct(t, product.ID); got.AverageRating != 4 || got.ReviewCount != 2 {
		t.Fatalf("stats want 4/2, got=%v/%d", got.AverageRating, got.ReviewCount)
	}

	if _, err := svc.AdminSetApproved(reviews[1].ID+100, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing review want ErrNotFound, got=%v", err)
	}
}

func TestUpdateOwnResetsApproval(t *testing.T) {
	svc := setupReviewServiceTest(t)
	category := createTestCategory(t, "electronics")
	product := createTestProduct(t, category.ID, "smart-watch", 159.00, 5)
	createTestPurchase(t, 1, product.ID, constants.OrderStatusDelivered)

	review, err := svc.Create(CreateReviewInput{UserID: 1, ProductID: product.ID, Rating: 5})
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}
	if _, err := svc.AdminSetApproved(review.ID, true); err != nil {
		t.Fatalf("approve review failed: %v", err)
	}

	updated, err := svc.UpdateOwn(1, review.ID, UpdateReviewInput{Rating: 3, Comment: "一般"})
	if err != nil {
		t.Fatalf("update review failed: %v", err)
	}
	if updated.Approved {
		t.Fatalf("updated review must go back to pending")
	}
	if got := reloadProduct(t, product.ID); got.AverageRating != 0 || got.ReviewCount != 0 {
		t.Fatalf("stats must drop updated review, got=%v/%d", got.AverageRating, got.ReviewCount)
	}

	if _, err := svc.UpdateOwn(2, review.ID, UpdateReviewInput{Rating: 4}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user's review want ErrNotFound, got=%v", err)
	}
	if _, err := svc.UpdateOwn(1, review.ID, UpdateReviewInput{Rating: 9}); !errors.Is(err, ErrReviewRatingInvalid) {
		t.Fatalf("bad rating want ErrReviewRatingInvalid, got=%v", err)
	}
}

func TestDeleteReviewRecalculatesRating(t *testing.T) {
	svc := setupReviewServiceTest(t)
	category := createTestCategory(t, "electronics")
	product := createTestProduct(t, category.ID, "smart-watch", 159.00, 5)

	createTestPurchase(t, 1, product.ID, constants.OrderStatusDelivered)
	createTestPurchase(t, 2, product.ID, constants.OrderStatusDelivered)
	first, err := svc.Create(CreateReviewInput{UserID: 1, ProductID: product.ID, Rating: 5})
	if err != nil {
		t.Fatalf("create first review failed: %v", err)
	}
	second, err := svc.Create(CreateReviewInput{UserID: 2, ProductID: product.ID, Rating: 2})
	if err != nil {
		t.Fatalf("create second review failed: %v", err)
	}
	if _, err := svc.AdminSetApproved(first.ID, true); err != nil {
		t.Fatalf("approve first failed: %v", err)
	}
	if _, err := svc.AdminSetApproved(second.ID, true); err != nil {
		t.Fatalf("approve second failed: %v", err)
	}

	if err := svc.DeleteOwn(2, second.ID); err != nil {
		t.Fatalf("delete own review failed: %v", err)
	}
	if got := reloadProduct(t, product.ID); got.AverageRating != 5 || got.ReviewCount != 1 {
		t.Fatalf("stats want 5/1 after delete, got=%v/%d", got.AverageRating, got.ReviewCount)
	}

	if err := svc.DeleteOwn(2, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user's review want ErrNotFound, got=%v", err)
	}
	if err := svc.AdminDelete(first.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if got := reloadProduct(t, product.ID); got.AverageRating != 0 || got.ReviewCount != 0 {
		t.Fatalf("stats want 0/0 after admin delete, got=%v/%d", got.AverageRating, got.ReviewCount)
	}
	if err := svc.AdminDelete(first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted review want ErrNotFound, got=%v", err)
	}
}

func TestListForProductOnlyApproved(t *testing.T) {
	svc := setupReviewServiceTest(t)
	category := createTestCategory(t, "electronics")
	product := createTestProduct(t, category.ID, "smart-watch", 159.00, 5)

	createTestPurchase(t, 1, product.ID, constants.OrderStatusDelivered)
	createTestPurchase(t, 2, product.ID, constants.OrderStatusDelivered)
	approved, err := svc.Create(CreateReviewInput{UserID: 1, ProductID: product.ID, Rating: 5})
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}
	if _, err := svc.Create(CreateReviewInput{UserID: 2, ProductID: product.ID, Rating: 1}); err != nil {
		t.Fatalf("create pending review failed: %v", err)
	}
	if _, err := svc.AdminSetApproved(approved.ID, true); err != nil {
		t.Fatalf("approve review failed: %v", err)
	}

	list, total, err := svc.ListForProduct(product.ID, 1, 10)
	if err != nil {
		t.Fatalf("list reviews failed: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != approved.ID {
		t.Fatalf("want only approved review, total=%d list=%v", total, list)
	}
}
