package service

import (
	"errors"
	"testing"

	"github.com/halomart/halomart/internal/constants"
)

func TestDecodeBasket(t *testing.T) {
	if items := decodeBasket(""); len(items) != 0 {
		t.Fatalf("empty payload want empty basket, got=%v", items)
	}
	if items := decodeBasket("not-json{"); len(items) != 0 {
		t.Fatalf("corrupt payload want empty basket, got=%v", items)
	}

	items := decodeBasket(`[{"product_id":1,"quantity":2},{"product_id":1,"quantity":3},{"product_id":2,"quantity":0}]`)
	if len(items) != 1 {
		t.Fatalf("want 1 merged line, got=%v", items)
	}
	if items[0].ProductID != 1 || items[0].Quantity != 5 {
		t.Fatalf("want product 1 quantity 5, got=%+v", items[0])
	}
}

func TestNormalizeBasket(t *testing.T) {
	items := normalizeBasket([]BasketItem{
		{ProductID: 0, Quantity: 3},
		{ProductID: 7, Quantity: 2},
		{ProductID: 9, Quantity: -1},
		{ProductID: 7, Quantity: 4},
		{ProductID: 8, Quantity: 1},
	})
	if len(items) != 2 {
		t.Fatalf("want 2 lines, got=%v", items)
	}
	if items[0].ProductID != 7 || items[0].Quantity != 6 {
		t.Fatalf("line 0 want product 7 quantity 6, got=%+v", items[0])
	}
	if items[1].ProductID != 8 || items[1].Quantity != 1 {
		t.Fatalf("line 1 want product 8 quantity 1, got=%+v", items[1])
	}
}

func TestMergeBasketItem(t *testing.T) {
	items := mergeBasketItem(nil, 3, 2)
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("append new line failed, got=%v", items)
	}

	items = mergeBasketItem(items, 3, 5)
	if len(items) != 1 || items[0].Quantity != 7 {
		t.Fatalf("accumulate existing line failed, got=%v", items)
	}

	items = mergeBasketItem(items, 4, 1)
	if len(items) != 2 || items[1].ProductID != 4 {
		t.Fatalf("append second line failed, got=%v", items)
	}
}

func TestApplyBasketActionIncrement(t *testing.T) {
	items, err := applyBasketAction([]BasketItem{{ProductID: 1, Quantity: 1}}, 1, constants.CartActionIncrement)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if items[0].Quantity != 2 {
		t.Fatalf("want quantity 2, got=%d", items[0].Quantity)
	}
}

func TestApplyBasketActionDecrementRemovesLine(t *testing.T) {
	items, err := applyBasketAction([]BasketItem{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 1},
	}, 1, constants.CartActionDecrement)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if items[0].Quantity != 2 {
		t.Fatalf("want quantity 2, got=%d", items[0].Quantity)
	}

	// 数量减到 1 以下时整行移除
	items, err = applyBasketAction(items, 2, constants.CartActionDecrement)
	if err != nil {
		t.Fatalf("decrement to zero failed: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != 1 {
		t.Fatalf("want product 2 removed, got=%v", items)
	}
}

func TestApplyBasketActionRemove(t *testing.T) {
	items, err := applyBasketAction([]BasketItem{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 9},
	}, 1, constants.CartActionRemove)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != 2 {
		t.Fatalf("want only product 2 left, got=%v", items)
	}
}

func TestApplyBasketActionErrors(t *testing.T) {
	if _, err := applyBasketAction([]BasketItem{{ProductID: 1, Quantity: 1}}, 99, constants.CartActionIncrement); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("missing product want ErrCartItemNotFound, got=%v", err)
	}
	if _, err := applyBasketAction([]BasketItem{{ProductID: 1, Quantity: 1}}, 1, "reset"); !errors.Is(err, ErrCartActionInvalid) {
		t.Fatalf("unknown action want ErrCartActionInvalid, got=%v", err)
	}
}

func TestBasketKey(t *testing.T) {
	if got := basketKey(42); got != "cart:42" {
		t.Fatalf("basket key want cart:42, got=%q", got)
	}
}
