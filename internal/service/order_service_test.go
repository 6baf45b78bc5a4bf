package service

import (
	"errors"
	"testing"
	"time"

	"github.com/halomart/halomart/internal/config"
	"github.com/halomart/halomart/internal/constants"
	"github.com/halomart/halomart/internal/models"
	"github.com/halomart/halomart/internal/queue"
	"github.com/halomart/halomart/internal/repository"
)

func setupOrderServiceTest(t *testing.T) *OrderService {
	t.Helper()
	db := setupTestDB(t)
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	return NewOrderService(
		&config.Config{},
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		queueClient,
	)
}

func TestMergeCreateOrderItems(t *testing.T) {
	merged := mergeCreateOrderItems([]CreateOrderItemInput{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1, Variant: "red"},
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 1, Variant: "blue"},
	})
	if len(merged) != 3 {
		t.Fatalf("want 3 merged lines, got=%v", merged)
	}
	if merged[0].ProductID != 1 || merged[0].Quantity != 5 {
		t.Fatalf("want product 1 quantity 5, got=%+v", merged[0])
	}
	if merged[1].Variant != "red" || merged[2].Variant != "blue" {
		t.Fatalf("variant lines must stay separate, got=%v", merged)
	}
}

func TestCreateOrderDecrementsStock(t *testing.T) {
	svc := setupOrderServiceTest(t)
	category := createTestCategory(t, "electronics")
	earphones := createTestProduct(t, category.ID, "wireless-earphones", 99.99, 10)
	cable := createTestProduct(t, category.ID, "usb-c-cable", 12.90, 50)

	order, err := svc.Create(CreateOrderInput{
		UserID: 1,
		Items: []CreateOrderItemInput{
			{ProductID: earphones.ID, Quantity: 1},
			{ProductID: cable.ID, Quantity: 2},
			{ProductID: earphones.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("status want pending, got=%q", order.Status)
	}
	if order.OrderNo == "" {
		t.Fatalf("order no must be generated")
	}
	if order.ExpiresAt == nil || !order.ExpiresAt.After(time.Now()) {
		t.Fatalf("expires_at must be in the future, got=%v", order.ExpiresAt)
	}
	// 99.99*2 + 12.90*2 = 225.78
	if got := order.TotalAmount.String(); got != "225.78" {
		t.Fatalf("total want 225.78, got=%s", got)
	}
	if len(order.Items) != 2 {
		t.Fatalf("duplicate lines must merge, got=%v", order.Items)
	}

	if stock := reloadProduct(t, earphones.ID).Stock; stock != 8 {
		t.Fatalf("earphones stock want 8, got=%d", stock)
	}
	if stock := reloadProduct(t, cable.ID).Stock; stock != 48 {
		t.Fatalf("cable stock want 48, got=%d", stock)
	}
}

func TestCreateOrderInsufficientStockLeavesStockUntouched(t *testing.T) {
	svc := setupOrderServiceTest(t)
	category := createTestCategory(t, "electronics")
	plenty := createTestProduct(t, category.ID, "smart-watch", 159.00, 20)
	scarce := createTestProduct(t, category.ID, "laptop-sleeve", 24.00, 1)

	_, err := svc.Create(CreateOrderInput{
		UserID: 1,
		Items: []CreateOrderItemInput{
			{ProductID: plenty.ID, Quantity: 2},
			{ProductID: scarce.ID, Quantity: 3},
		},
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock, got=%v", err)
	}

	// 任意一项不足时整单失败，已校验项不得扣减
	if stock := reloadProduct(t, plenty.ID).Stock; stock != 20 {
		t.Fatalf("stock must stay untouched, got=%d", stock)
	}
	var count int64
	if err := models.DB.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("no order row must be written, got=%d", count)
	}
}

func TestCreateOrderRejectsInvalidItems(t *testing.T) {
	svc := setupOrderServiceTest(t)
	category := createTestCategory(t, "electronics")
	product := createTestProduct(t, category.ID, "smart-watch", 159.00, 5)

	if _, err := svc.Create(CreateOrderInput{UserID: 1}); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("empty items want ErrInvalidOrderItem, got=%v", err)
	}
	if _, err := svc.Create(CreateOrderInput{
		UserID: 1,
		Items:  []CreateOrderItemInput{{ProductID: product.ID, Quantity: 0}},
	}); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("zero quantity want ErrInvalidOrderItem, got=%v", err)
	}
	if _, err := svc.Create(CreateOrderInput{
		UserID: 1,
		Items:  []CreateOrderItemInput{{ProductID: product.ID + 100, Quantity: 1}},
	}); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("unknown product want ErrProductNotAvailable, got=%v", err)
	}

	product.IsActive = false
	if err := models.DB.Save(product).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}
	if _, err := svc.Create(CreateOrderInput{
		UserID: 1,
		Items:  []CreateOrderItemInput{{ProductID: product.ID, Quantity: 1}},
	}); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("inactive product want ErrProductNotAvailable, got=%v", err)
	}
}

func TestCancelForUserRestoresStock(t *testing.T) {
	svc := setupOrderServiceTest(t)
	category := createTestCategory(t, "electronics")
	product := createTestProduct(t, category.ID, "smart-watch", 159.00, 5)

	order, err := svc.Create(CreateOrderInput{
		UserID: 7,
		Items:  []CreateOrderItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if stock := reloadProduct(t, product.ID).Stock; stock != 3 {
		t.Fatalf("stock want 3 after order, got=%d", stock)
	}

	if err := svc.CancelForUser(7, order.ID); err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	if stock := reloadProduct(t, product.ID).Stock; stock != 5 {
		t.Fatalf("stock want 5 after cancel, got=%d", stock)
	}

	cancelled, err := svc.GetForUser(7, order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("status want cancelled, got=%q", cancelled.Status)
	}
	if cancelled.CancelReason != constants.CancelReasonUser {
		t.Fatalf("cancel reason want %q, got=%q", constants.CancelReasonUser, cancelled.CancelReason)
	}
	if cancelled.CanceledAt == nil {
		t.Fatalf("canceled_at must be set")
	}

	if err := svc.CancelForUser(7, order.ID); !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("second cancel want ErrOrderNotCancellable, got=%v", err)
	}
	if err := svc.CancelForUser(8, order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("other user's order want ErrOrderNotFound, got=%v", err)
	}
}

func TestCancelByTimeoutOnlyPending(t *testing.T) {
	svc := setupOrderServiceTest(t)
	category := createTestCategory(t, "electronics")
	product := createTestProduct(t, category.ID, "smart-watch", 159.00, 5)

	order, err := svc.Create(CreateOrderInput{
		UserID: 1,
		Items:  []CreateOrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := svc.AdminUpdateStatus(order.ID, constants.OrderStatusProcessing); err != nil {
		t.Fatalf("admin update status failed: %v", err)
	}
	if err := svc.CancelByTimeout(order.ID); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("non-pending order want ErrOrderStatusInvalid, got=%v", err)
	}
	if err := svc.CancelByTimeout(order.ID + 100); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("missing order want ErrOrderNotFound, got=%v", err)
	}
}

func TestAdminUpdateStatusStockReconciliation(t *testing.T) {
	svc := setupOrderServiceTest(t)
	category := createTestCategory(t, "electronics")
	product := createTestProduct(t, category.ID, "smart-watch", 159.00, 5)

	order, err := svc.Create(CreateOrderInput{
		UserID: 1,
		Items:  []CreateOrderItemInput{{ProductID: product.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := svc.AdminUpdateStatus(order.ID, "refunded"); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("unknown status want ErrOrderStatusInvalid, got=%v", err)
	}

	// 进入 cancelled 回补库存
	updated, err := svc.AdminUpdateStatus(order.ID, constants.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("cancel via admin failed: %v", err)
	}
	if updated.Status != constants.OrderStatusCancelled {
		t.Fatalf("status want cancelled, got=%q", updated.Status)
	}
	if updated.CancelReason != constants.CancelReasonAdmin {
		t.Fatalf("cancel reason want %q, got=%q", constants.CancelReasonAdmin, updated.CancelReason)
	}
	if stock := reloadProduct(t, product.ID).Stock; stock != 5 {
		t.Fatalf("stock want 5 after admin cancel, got=%d", stock)
	}

	// 离开 cancelled 重新占用库存并清空取消字段
	revived, err := svc.AdminUpdateStatus(order.ID, constants.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("revive order failed: %v", err)
	}
	if revived.Status != constants.OrderStatusProcessing {
		t.Fatalf("status want processing, got=%q", revived.Status)
	}
	if revived.CanceledAt != nil || revived.CancelReason != "" {
		t.Fatalf("cancel fields must be cleared, got=%v %q", revived.CanceledAt, revived.CancelReason)
	}
	if stock := reloadProduct(t, product.ID).Stock; stock != 2 {
		t.Fatalf("stock want 2 after revive, got=%d", stock)
	}

	// 库存不足时无法离开 cancelled
	if _, err := svc.AdminUpdateStatus(order.ID, constants.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel again failed: %v", err)
	}
	if err := models.DB.Model(&models.Product{}).Where("id = ?", product.ID).Update("stock", 1).Error; err != nil {
		t.Fatalf("shrink stock failed: %v", err)
	}
	if _, err := svc.AdminUpdateStatus(order.ID, constants.OrderStatusShipped); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("revive without stock want ErrInsufficientStock, got=%v", err)
	}
	if stock := reloadProduct(t, product.ID).Stock; stock != 1 {
		t.Fatalf("failed revive must not touch stock, got=%d", stock)
	}
}

func TestAdminUpdateStatusSameStatusNoop(t *testing.T) {
	svc := setupOrderServiceTest(t)
	category := createTestCategory(t, "electronics")
	product := createTestProduct(t, category.ID, "smart-watch", 159.00, 5)

	order, err := svc.Create(CreateOrderInput{
		UserID: 1,
		Items:  []CreateOrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	same, err := svc.AdminUpdateStatus(order.ID, constants.OrderStatusPending)
	if err != nil {
		t.Fatalf("same status update failed: %v", err)
	}
	if same.Status != constants.OrderStatusPending {
		t.Fatalf("status want pending, got=%q", same.Status)
	}
	if stock := reloadProduct(t, product.ID).Stock; stock != 4 {
		t.Fatalf("noop must not touch stock, got=%d", stock)
	}
}

func TestSweepExpiredCancelsPendingOrders(t *testing.T) {
	svc := setupOrderServiceTest(t)
	category := createTestCategory(t, "electronics")
	product := createTestProduct(t, category.ID, "smart-watch", 159.00, 10)

	expired, err := svc.Create(CreateOrderInput{
		UserID: 1,
		Items:  []CreateOrderItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create expired order failed: %v", err)
	}
	fresh, err := svc.Create(CreateOrderInput{
		UserID: 1,
		Items:  []CreateOrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create fresh order failed: %v", err)
	}

	past := time.Now().Add(-time.Hour)
	if err := models.DB.Model(&models.Order{}).Where("id = ?", expired.ID).Update("expires_at", past).Error; err != nil {
		t.Fatalf("backdate order failed: %v", err)
	}

	if err := svc.SweepExpired(time.Now()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	swept, err := svc.AdminGet(expired.ID)
	if err != nil {
		t.Fatalf("get swept order failed: %v", err)
	}
	if swept.Status != constants.OrderStatusCancelled {
		t.Fatalf("expired order want cancelled, got=%q", swept.Status)
	}
	if swept.CancelReason != constants.CancelReasonTimeout {
		t.Fatalf("cancel reason want %q, got=%q", constants.CancelReasonTimeout, swept.CancelReason)
	}

	kept, err := svc.AdminGet(fresh.ID)
	if err != nil {
		t.Fatalf("get fresh order failed: %v", err)
	}
	if kept.Status != constants.OrderStatusPending {
		t.Fatalf("fresh order must stay pending, got=%q", kept.Status)
	}

	// 已取消 2 件、在途 1 件
	if stock := reloadProduct(t, product.ID).Stock; stock != 9 {
		t.Fatalf("stock want 9 after sweep, got=%d", stock)
	}
}
