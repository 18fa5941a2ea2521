package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/yeisme/drivevault/pkg/internal/storage/kv"
)

func newMemoryStore(t *testing.T) kv.KVStore {
	t.Helper()

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestMemoryKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	if err := store.Set(ctx, "sess:abc", []byte("payload"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, "sess:abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("got %q, want %q", got, "payload")
	}

	// 取回的是副本，调用方改写不应影响存储值
	got[0] = 'X'
	again, _ := store.Get(ctx, "sess:abc")
	if string(again) != "payload" {
		t.Fatalf("stored value mutated: %q", again)
	}

	if err := store.Delete(ctx, "sess:abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := store.Exists(ctx, "sess:abc"); ok {
		t.Fatal("key still exists after delete")
	}
}

func TestMemoryKVTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	if err := store.Set(ctx, "sess:short", []byte("v"), 20*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "sess:long", []byte("v"), time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}

	if ok, _ := store.Exists(ctx, "sess:short"); !ok {
		t.Fatal("key expired before its TTL")
	}

	time.Sleep(40 * time.Millisecond)

	if _, err := store.Get(ctx, "sess:short"); err == nil {
		t.Fatal("expired key still readable")
	}
	if ok, _ := store.Exists(ctx, "sess:long"); !ok {
		t.Fatal("unexpired key reported missing")
	}

	keys, err := store.Keys(ctx, "")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	for _, k := range keys {
		if k == "sess:short" {
			t.Fatal("expired key listed")
		}
	}
}
