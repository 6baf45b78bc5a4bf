package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/halomart/halomart/internal/cache"
	"github.com/halomart/halomart/internal/config"
	"github.com/halomart/halomart/internal/constants"
	"github.com/halomart/halomart/internal/logger"
	"github.com/halomart/halomart/internal/models"
	"github.com/halomart/halomart/internal/repository"

	"github.com/redis/go-redis/v9"
)

// basketMaxRetries WATCH 乐观重试次数上限
const basketMaxRetries = 5

// BasketItem 购物车存储行（Redis JSON 数组元素）
type BasketItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// BasketEntry 购物车行与商品快照
type BasketEntry struct {
	ProductID uint
	Quantity  int
	Product   *models.Product
}

// BasketService 购物车服务
// 购物车整体以 JSON 数组形式存储在 cart:<userID> 键下，
// 读改写通过 WATCH 保证并发下不丢失更新。
type BasketService struct {
	cfg         *config.Config
	productRepo repository.ProductRepository
}

// NewBasketService 创建购物车服务
func NewBasketService(cfg *config.Config, productRepo repository.ProductRepository) *BasketService {
	return &BasketService{cfg: cfg, productRepo: productRepo}
}

func basketKey(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}

func (s *BasketService) ttl() time.Duration {
	if s.cfg == nil || s.cfg.Cart.TTLHours <= 0 {
		return 0
	}
	return time.Duration(s.cfg.Cart.TTLHours) * time.Hour
}

func (s *BasketService) maxLines() int {
	if s.cfg == nil || s.cfg.Cart.MaxLines <= 0 {
		return 100
	}
	return s.cfg.Cart.MaxLines
}

func (s *BasketService) maxPerLine() int {
	if s.cfg == nil || s.cfg.Cart.MaxPerLine <= 0 {
		return 999
	}
	return s.cfg.Cart.MaxPerLine
}

// decodeBasket 解析购物车载荷，损坏的数据按空购物车处理
func decodeBasket(raw string) []BasketItem {
	if raw == "" {
		return []BasketItem{}
	}
	var items []BasketItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.Warnw("basket_payload_corrupt", "error", err)
		return []BasketItem{}
	}
	return normalizeBasket(items)
}

// normalizeBasket 合并重复行并剔除非法数量
func normalizeBasket(items []BasketItem) []BasketItem {
	result := make([]BasketItem, 0, len(items))
	index := make(map[uint]int, len(items))
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			continue
		}
		if pos, ok := index[item.ProductID]; ok {
			result[pos].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(result)
		result = append(result, item)
	}
	return result
}

// mergeBasketItem 合并新增行：已有行累加数量，否则追加
func mergeBasketItem(items []BasketItem, productID uint, quantity int) []BasketItem {
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += quantity
			return items
		}
	}
	return append(items, BasketItem{ProductID: productID, Quantity: quantity})
}

// applyBasketAction 应用行级操作：increment / decrement / remove
// decrement 低于 1 时移除该行
func applyBasketAction(items []BasketItem, productID uint, action string) ([]BasketItem, error) {
	pos := -1
	for i := range items {
		if items[i].ProductID == productID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, ErrCartItemNotFound
	}

	switch action {
	case constants.CartActionIncrement:
		items[pos].Quantity++
	case constants.CartActionDecrement:
		items[pos].Quantity--
		if items[pos].Quantity < 1 {
			items = append(items[:pos], items[pos+1:]...)
		}
	case constants.CartActionRemove:
		items = append(items[:pos], items[pos+1:]...)
	default:
		return nil, ErrCartActionInvalid
	}
	return items, nil
}

// mutate 在 WATCH 保护下执行读改写，空结果删除整个键
func (s *BasketService) mutate(ctx context.Context, userID uint, fn func(items []BasketItem) ([]BasketItem, error)) ([]BasketItem, error) {
	client := cache.Client()
	if client == nil {
		return nil, ErrCartUnavailable
	}
	key := cache.BuildKey(basketKey(userID))

	var result []BasketItem
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		items := decodeBasket(raw)

		next, fnErr := fn(items)
		if fnErr != nil {
			return fnErr
		}
		next = normalizeBasket(next)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(next) == 0 {
				pipe.Del(ctx, key)
				return nil
			}
			payload, marshalErr := json.Marshal(next)
			if marshalErr != nil {
				return marshalErr
			}
			pipe.Set(ctx, key, payload, s.ttl())
			return nil
		})
		if err != nil {
			return err
		}
		result = next
		return nil
	}

	for attempt := 0; attempt < basketMaxRetries; attempt++ {
		err := client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, ErrCartConflict
}

// Add 将商品加入购物车，已有行累加数量
func (s *BasketService) Add(ctx context.Context, userID, productID uint, quantity int) ([]BasketItem, error) {
	if quantity <= 0 || quantity > s.maxPerLine() {
		return nil, ErrCartQuantityInvalid
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotAvailable
	}

	return s.mutate(ctx, userID, func(items []BasketItem) ([]BasketItem, error) {
		next := mergeBasketItem(items, productID, quantity)
		if len(next) > s.maxLines() {
			return nil, ErrCartLimitExceeded
		}
		for i := range next {
			if next[i].ProductID == productID && next[i].Quantity > s.maxPerLine() {
				return nil, ErrCartQuantityInvalid
			}
		}
		return next, nil
	})
}

// UpdateItem 对购物车行应用操作
func (s *BasketService) UpdateItem(ctx context.Context, userID, productID uint, action string) ([]BasketItem, error) {
	return s.mutate(ctx, userID, func(items []BasketItem) ([]BasketItem, error) {
		return applyBasketAction(items, productID, action)
	})
}

// Get 获取购物车，附带商品快照；已下架或删除的商品行被过滤
func (s *BasketService) Get(ctx context.Context, userID uint) ([]BasketEntry, error) {
	client := cache.Client()
	if client == nil {
		return nil, ErrCartUnavailable
	}

	raw, err := client.Get(ctx, cache.BuildKey(basketKey(userID))).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	items := decodeBasket(raw)
	if len(items) == 0 {
		return []BasketEntry{}, nil
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	productMap := make(map[uint]*models.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	entries := make([]BasketEntry, 0, len(items))
	for _, item := range items {
		product, ok := productMap[item.ProductID]
		if !ok || !product.IsActive {
			continue
		}
		entries = append(entries, BasketEntry{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Product:   product,
		})
	}
	return entries, nil
}

// Clear 清空购物车
func (s *BasketService) Clear(ctx context.Context, userID uint) error {
	client := cache.Client()
	if client == nil {
		return ErrCartUnavailable
	}
	return client.Del(ctx, cache.BuildKey(basketKey(userID))).Err()
}
