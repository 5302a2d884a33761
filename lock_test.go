package leasecache

import (
	"context"
	"testing"
	"time"

	"github.com/unkn0wn-root/leasecache/store/memory"
)

func TestKVLockMutualExclusion(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	l := NewKVLock(mem)

	acquired, err := l.TryAcquire(ctx, "k_Lock", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("first acquire: acquired=%v err=%v", acquired, err)
	}
	acquired, err = l.TryAcquire(ctx, "k_Lock", time.Minute)
	if err != nil || acquired {
		t.Fatalf("second acquire must fail while held: acquired=%v err=%v", acquired, err)
	}

	if err := l.Release(ctx, "k_Lock"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	acquired, err = l.TryAcquire(ctx, "k_Lock", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("acquire after release: acquired=%v err=%v", acquired, err)
	}
}

func TestKVLockSelfExpires(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	l := NewKVLock(mem)

	if acquired, err := l.TryAcquire(ctx, "k_Lock", 2*time.Second); err != nil || !acquired {
		t.Fatalf("acquire: acquired=%v err=%v", acquired, err)
	}

	// holder crashes; the lease bounds the lockout
	mem.Advance(3 * time.Second)

	acquired, err := l.TryAcquire(ctx, "k_Lock", time.Second)
	if err != nil || !acquired {
		t.Fatalf("acquire after lease expiry: acquired=%v err=%v", acquired, err)
	}
}

func TestKVLockReleaseAbsentIsNoError(t *testing.T) {
	l := NewKVLock(memory.New())
	if err := l.Release(context.Background(), "never_held_Lock"); err != nil {
		t.Fatalf("releasing an absent marker: %v", err)
	}
}
