package worker

import (
	"context"
	"testing"
	"time"

	"github.com/linkmall/internal/config"
	"github.com/linkmall/internal/provider"
)

func TestNewServiceQueueDisabledKeepsSchedulers(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	svc, err := NewService(&config.QueueConfig{Enabled: false}, config.WorkerConfig{}, consumer)
	if err != nil {
		t.Fatalf("queue-less worker should still build, got %v", err)
	}
	if svc.server != nil || svc.mux != nil {
		t.Fatalf("disabled queue must not create an asynq server")
	}

	// 无 asynq 服务器时 Start 阻塞在 ctx 上，取消后干净退出。
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("scheduler-only start should exit clean, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler-only worker did not stop on context cancel")
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}

func TestNewServiceRejectsNilConsumer(t *testing.T) {
	if _, err := NewService(&config.QueueConfig{Enabled: false}, config.WorkerConfig{}, nil); err == nil {
		t.Fatalf("nil consumer must be rejected")
	}
}
