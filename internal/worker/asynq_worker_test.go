package worker

import (
	"context"
	"testing"

	"github.com/halomart/halomart/internal/provider"
	"github.com/halomart/halomart/internal/queue"

	"github.com/hibiken/asynq"
)

func TestHandleOrderTimeoutCancelInvalidPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})

	task := asynq.NewTask(queue.TaskOrderTimeoutCancel, []byte("not-json"))
	if err := consumer.handleOrderTimeoutCancel(context.Background(), task); err == nil {
		t.Fatalf("expected error for invalid payload")
	}
}

func TestHandleOrderTimeoutCancelZeroOrderID(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})

	task, err := queue.NewOrderTimeoutCancelTask(queue.OrderTimeoutCancelPayload{OrderID: 0})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderTimeoutCancel(context.Background(), task); err != nil {
		t.Fatalf("zero order id should be skipped, got %v", err)
	}
}

func TestHandleOrderTimeoutCancelNilOrderService(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})

	task, err := queue.NewOrderTimeoutCancelTask(queue.OrderTimeoutCancelPayload{OrderID: 42})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderTimeoutCancel(context.Background(), task); err != nil {
		t.Fatalf("missing order service should be skipped, got %v", err)
	}
}
