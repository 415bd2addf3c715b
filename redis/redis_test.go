package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/scribe/component"
	"github.com/kbukum/scribe/logger"
)

type item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New(Config{Addr: mr.Addr()}, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestTypedStore(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)
	store := NewTypedStore[item](c, "test")

	if _, ok, err := store.Load(ctx, "a"); err != nil || ok {
		t.Fatalf("Load missing = ok %v, err %v; want false, nil", ok, err)
	}

	if err := store.Save(ctx, "a", item{Name: "x", Count: 2}, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !mr.Exists("test:a") {
		t.Error("expected key test:a in redis")
	}
	if ttl := mr.TTL("test:a"); ttl != 0 {
		t.Errorf("TTL = %v, want none", ttl)
	}

	got, ok, err := store.Load(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("Load = ok %v, err %v", ok, err)
	}
	if got != (item{Name: "x", Count: 2}) {
		t.Errorf("Load = %+v", got)
	}

	existed, err := store.Delete(ctx, "a")
	if err != nil || !existed {
		t.Fatalf("Delete = %v, %v; want true, nil", existed, err)
	}
	existed, err = store.Delete(ctx, "a")
	if err != nil || existed {
		t.Errorf("second Delete = %v, %v; want false, nil", existed, err)
	}
}

func TestTypedStore_TTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)
	store := NewTypedStore[item](c, "")

	if err := store.Save(ctx, "k", item{Name: "y"}, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := store.Load(ctx, "k"); ok {
		t.Error("value should have expired")
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	comp := NewComponent(Config{Addr: mr.Addr()}, logger.Nop())

	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("Health before Start = %s, want unhealthy", h.Status)
	}
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("Health = %s (%s), want healthy", h.Status, h.Message)
	}
	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
