package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/halomart/halomart/internal/config"
	"github.com/halomart/halomart/internal/constants"
	"github.com/halomart/halomart/internal/logger"
	"github.com/halomart/halomart/internal/models"
	"github.com/halomart/halomart/internal/queue"
	"github.com/halomart/halomart/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单业务服务
type OrderService struct {
	cfg         *config.Config
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	queueClient *queue.Client
}

// NewOrderService 创建订单服务
func NewOrderService(cfg *config.Config, orderRepo repository.OrderRepository, productRepo repository.ProductRepository, queueClient *queue.Client) *OrderService {
	return &OrderService{
		cfg:         cfg,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		queueClient: queueClient,
	}
}

// CreateOrderItemInput 创建订单的单项输入
type CreateOrderItemInput struct {
	ProductID uint
	Quantity  int
	Variant   string
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID          uint
	Items           []CreateOrderItemInput
	ShippingAddress map[string]interface{}
	PaymentInfo     map[string]interface{}
	ClientIP        string
}

// mergeCreateOrderItems 合并重复商品行（同商品同规格数量累加）
func mergeCreateOrderItems(items []CreateOrderItemInput) []CreateOrderItemInput {
	type lineKey struct {
		productID uint
		variant   string
	}
	merged := make([]CreateOrderItemInput, 0, len(items))
	index := make(map[lineKey]int, len(items))
	for _, item := range items {
		key := lineKey{productID: item.ProductID, variant: item.Variant}
		if pos, ok := index[key]; ok {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[key] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// generateOrderNo 生成订单编号：HM + 时间戳 + 6 位随机数字
func generateOrderNo() string {
	return "HM" + time.Now().Format("20060102150405") + randNumeric(6)
}

func randNumeric(n int) string {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			digits[i] = '0'
			continue
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits)
}

type orderDraftLine struct {
	product  *models.Product
	quantity int
	variant  string
	total    decimal.Decimal
}

// buildOrderDraft 校验全部订单项并计算金额，任意一项非法则整单失败
func (s *OrderService) buildOrderDraft(items []CreateOrderItemInput) ([]orderDraftLine, decimal.Decimal, string, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, "", ErrInvalidOrderItem
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, decimal.Zero, "", ErrInvalidOrderItem
		}
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return nil, decimal.Zero, "", err
	}
	productMap := make(map[uint]*models.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	currency := ""
	total := decimal.Zero
	lines := make([]orderDraftLine, 0, len(items))
	for _, item := range items {
		product, ok := productMap[item.ProductID]
		if !ok || !product.IsActive {
			return nil, decimal.Zero, "", ErrProductNotAvailable
		}
		if product.Stock < item.Quantity {
			return nil, decimal.Zero, "", ErrInsufficientStock
		}
		if currency == "" {
			currency = product.Currency
		}
		lineTotal := product.PriceAmount.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		total = total.Add(lineTotal)
		lines = append(lines, orderDraftLine{
			product:  product,
			quantity: item.Quantity,
			variant:  item.Variant,
			total:    lineTotal,
		})
	}
	if currency == "" {
		currency = constants.DefaultCurrency
	}
	return lines, total.Round(2), currency, nil
}

// Create 创建订单：先整体校验，再在单事务内扣库存并落库
func (s *OrderService) Create(input CreateOrderInput) (*models.Order, error) {
	merged := mergeCreateOrderItems(input.Items)
	lines, total, currency, err := s.buildOrderDraft(merged)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expireMinutes := 30
	if s.cfg != nil && s.cfg.Order.PendingExpireMinutes > 0 {
		expireMinutes = s.cfg.Order.PendingExpireMinutes
	}
	expiresAt := now.Add(time.Duration(expireMinutes) * time.Minute)

	order := &models.Order{
		OrderNo:         generateOrderNo(),
		UserID:          input.UserID,
		Status:          constants.OrderStatusPending,
		Currency:        currency,
		TotalAmount:     models.NewMoneyFromDecimal(total),
		ShippingAddress: models.JSON(input.ShippingAddress),
		PaymentInfo:     models.JSON(input.PaymentInfo),
		ClientIP:        input.ClientIP,
		ExpiresAt:       &expiresAt,
	}

	orderItems := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		orderItems = append(orderItems, models.OrderItem{
			ProductID:   line.product.ID,
			ProductName: line.product.Name,
			Variant:     line.variant,
			UnitPrice:   line.product.PriceAmount,
			Quantity:    line.quantity,
			TotalPrice:  models.NewMoneyFromDecimal(line.total),
		})
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		for _, line := range lines {
			affected, decErr := productRepo.DecrementStock(line.product.ID, line.quantity)
			if decErr != nil {
				return decErr
			}
			if affected == 0 {
				return ErrInsufficientStock
			}
		}
		return s.orderRepo.WithTx(tx).Create(order, orderItems)
	})
	if err != nil {
		return nil, err
	}
	order.Items = orderItems

	// 超时取消任务入队失败不阻断下单，由对账兜底
	if enqueueErr := s.queueClient.EnqueueOrderTimeoutCancel(
		queue.OrderTimeoutCancelPayload{OrderID: order.ID},
		time.Until(expiresAt),
	); enqueueErr != nil {
		logger.Warnw("order_timeout_cancel_enqueue_failed", "order_id", order.ID, "error", enqueueErr)
	}

	return order, nil
}

// GetForUser 获取用户订单详情
func (s *OrderService) GetForUser(userID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListForUser 用户订单列表
func (s *OrderService) ListForUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(filter)
}

// AdminList 管理端订单列表
func (s *OrderService) AdminList(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// AdminGet 管理端订单详情
func (s *OrderService) AdminGet(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// cancelTx 在事务内取消订单并回补库存
func (s *OrderService) cancelTx(order *models.Order, reason string) error {
	now := time.Now()
	return models.DB.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		for _, item := range order.Items {
			if err := productRepo.RestoreStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return s.orderRepo.WithTx(tx).UpdateStatus(order.ID, constants.OrderStatusCancelled, map[string]interface{}{
			"canceled_at":   now,
			"cancel_reason": reason,
		})
	})
}

// CancelForUser 用户取消订单（仅 pending 可取消）
func (s *OrderService) CancelForUser(userID, orderID uint) error {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPending {
		return ErrOrderNotCancellable
	}
	return s.cancelTx(order, constants.CancelReasonUser)
}

// CancelByTimeout 超时取消（worker 调用），非 pending 订单跳过
func (s *OrderService) CancelByTimeout(orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPending {
		return ErrOrderStatusInvalid
	}
	return s.cancelTx(order, constants.CancelReasonTimeout)
}

// AdminUpdateStatus 管理端更新订单状态（平铺赋值，取值限定在状态全集内）
// 进入 cancelled 回补库存；离开 cancelled 重新扣减库存，不足则失败。
func (s *OrderService) AdminUpdateStatus(orderID uint, status string) (*models.Order, error) {
	if !constants.IsValidOrderStatus(status) {
		return nil, ErrOrderStatusInvalid
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status == status {
		return order, nil
	}

	if status == constants.OrderStatusCancelled {
		if err := s.cancelTx(order, constants.CancelReasonAdmin); err != nil {
			return nil, err
		}
		return s.orderRepo.GetByID(orderID)
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if order.Status == constants.OrderStatusCancelled {
			// 从取消恢复时需要重新占用库存
			productRepo := s.productRepo.WithTx(tx)
			for _, item := range order.Items {
				affected, decErr := productRepo.DecrementStock(item.ProductID, item.Quantity)
				if decErr != nil {
					return decErr
				}
				if affected == 0 {
					return ErrInsufficientStock
				}
			}
		}
		updates := map[string]interface{}{}
		if order.Status == constants.OrderStatusCancelled {
			updates["canceled_at"] = nil
			updates["cancel_reason"] = ""
		}
		return s.orderRepo.WithTx(tx).UpdateStatus(order.ID, status, updates)
	})
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(orderID)
}

// SweepExpired 兜底扫描过期未处理订单并取消，入队丢失时保证最终一致
func (s *OrderService) SweepExpired(now time.Time) error {
	ids, err := s.orderRepo.ListExpiredPendingIDs(now, 100)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.CancelByTimeout(id); err != nil {
			if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrOrderStatusInvalid) {
				continue
			}
			logger.Warnw("order_expired_sweep_cancel_failed", "order_id", id, "error", err)
		}
	}
	return nil
}

// FormatAmount 格式化金额展示
func FormatAmount(amount models.Money, currency string) string {
	return fmt.Sprintf("%s %s", amount.String(), currency)
}
