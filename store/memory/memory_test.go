package memory

import (
	"context"
	"testing"
	"time"
)

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	m := New()

	if _, ok, err := m.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("empty store must miss: ok=%v err=%v", ok, err)
	}
	if err := m.Put(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if b, ok, err := m.Get(ctx, "k"); err != nil || !ok || string(b) != "v" {
		t.Fatalf("Get: ok=%v err=%v b=%q", ok, err, b)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatalf("deleted key must miss")
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
}

func TestLeaseExpiry(t *testing.T) {
	ctx := context.Background()
	m := New()

	if err := m.Put(ctx, "k", []byte("v"), 10*time.Second); err != nil {
		t.Fatalf("Put: %v", err)
	}
	m.Advance(9 * time.Second)
	if _, ok, _ := m.Get(ctx, "k"); !ok {
		t.Fatalf("entry expired early")
	}
	m.Advance(2 * time.Second)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatalf("entry must expire after its lease")
	}
	if ok, _ := m.Exists(ctx, "k"); ok {
		t.Fatalf("Exists must not report expired entries")
	}
}

func TestCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	m := New()

	created, err := m.CreateIfAbsent(ctx, "k", []byte("a"), time.Minute)
	if err != nil || !created {
		t.Fatalf("first create: created=%v err=%v", created, err)
	}
	created, err = m.CreateIfAbsent(ctx, "k", []byte("b"), time.Minute)
	if err != nil || created {
		t.Fatalf("second create must fail: created=%v err=%v", created, err)
	}
	if b, _, _ := m.Get(ctx, "k"); string(b) != "a" {
		t.Fatalf("existing value must be unchanged, got %q", b)
	}

	// expired entry counts as absent
	m.Advance(2 * time.Minute)
	created, err = m.CreateIfAbsent(ctx, "k", []byte("c"), time.Minute)
	if err != nil || !created {
		t.Fatalf("create over expired: created=%v err=%v", created, err)
	}
}

func TestRangeScanOrderedAndScoped(t *testing.T) {
	ctx := context.Background()
	m := New()

	for _, k := range []string{"a/2", "b/1", "a/1", "a/3"} {
		if err := m.Put(ctx, k, []byte(k), time.Minute); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}

	kvs, err := m.RangeScan(ctx, "a/")
	if err != nil {
		t.Fatalf("RangeScan: %v", err)
	}
	want := []string{"a/1", "a/2", "a/3"}
	if len(kvs) != len(want) {
		t.Fatalf("RangeScan returned %d entries, want %d", len(kvs), len(want))
	}
	for i, kv := range kvs {
		if kv.Key != want[i] {
			t.Fatalf("RangeScan[%d] = %q, want %q (ascending order)", i, kv.Key, want[i])
		}
	}
}

func TestRangeScanSkipsExpired(t *testing.T) {
	ctx := context.Background()
	m := New()

	if err := m.Put(ctx, "a/1", []byte("x"), time.Second); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := m.Put(ctx, "a/2", []byte("y"), time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}
	m.Advance(2 * time.Second)

	kvs, err := m.RangeScan(ctx, "a/")
	if err != nil {
		t.Fatalf("RangeScan: %v", err)
	}
	if len(kvs) != 1 || kvs[0].Key != "a/2" {
		t.Fatalf("expired entries must be skipped, got %v", kvs)
	}
}

func TestDeletePrefix(t *testing.T) {
	ctx := context.Background()
	m := New()

	for _, k := range []string{"a/1", "a/2", "b/1"} {
		if err := m.Put(ctx, k, []byte(k), time.Minute); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}

	n, err := m.DeletePrefix(ctx, "a/")
	if err != nil || n != 2 {
		t.Fatalf("DeletePrefix = %d err=%v, want 2", n, err)
	}
	if kvs, _ := m.RangeScan(ctx, "a/"); len(kvs) != 0 {
		t.Fatalf("prefix must be empty after delete, got %v", kvs)
	}
	if ok, _ := m.Exists(ctx, "b/1"); !ok {
		t.Fatalf("sibling prefix must survive")
	}
}
