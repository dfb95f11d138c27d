package notify

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestFunc(t *testing.T) {
	var got int64
	n := Func(func(_ context.Context, v int64) error { got = v; return nil })
	if err := n.Publish(context.Background(), 7); err != nil || got != 7 {
		t.Errorf("Publish = %v, got %d", err, got)
	}
	if err := (Noop{}).Publish(context.Background(), 1); err != nil {
		t.Error(err)
	}
}

// Requires a running redis at REDIS_ADDR.
func TestRedisNotifier_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	n := NewRedisNotifier(client, "endpoint:test:"+t.Name())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got := make(chan int64, 1)
	go n.Subscribe(ctx, func(v int64) { got <- v })

	deadline := time.After(4 * time.Second)
	for {
		if err := n.Publish(ctx, 42); err != nil {
			t.Fatal(err)
		}
		select {
		case v := <-got:
			if v != 42 {
				t.Errorf("received %d", v)
			}
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("no notification received")
		}
	}
}
