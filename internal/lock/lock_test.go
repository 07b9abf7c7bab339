package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLocalLockerExclusive(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "gallery:projects:1")
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			if err := unlock(ctx); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", maxSeen)
	}
}

func TestLocalLockerKeysIndependent(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	unlockA, err := l.Lock(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	defer unlockA(ctx)

	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx2, "b")
	if err != nil {
		t.Fatalf("lock b while a held: %v", err)
	}
	unlockB(ctx)
}

func TestLocalLockerContextDone(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(waitCtx, "k"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}

	if err := unlock(ctx); err != nil {
		t.Fatal(err)
	}
	if err := unlock(ctx); !errors.Is(err, ErrNotHeld) {
		t.Fatalf("double unlock = %v, want ErrNotHeld", err)
	}

	again, err := l.Lock(ctx, "k")
	if err != nil {
		t.Fatalf("relock: %v", err)
	}
	again(ctx)
}

func TestLocalLockerDropsIdleSlots(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	for _, key := range []string{"gallery:posts:1", "gallery:posts:2"} {
		unlock, err := l.Lock(ctx, key)
		if err != nil {
			t.Fatal(err)
		}
		if err := unlock(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(l.slots); n != 0 {
		t.Fatalf("slots after unlock = %d, want 0", n)
	}

	unlock, err := l.Lock(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(waitCtx, "k"); err == nil {
		t.Fatal("second lock succeeded while held")
	}
	if got := l.slots["k"].refs; got != 1 {
		t.Fatalf("refs after cancelled wait = %d, want 1", got)
	}
	unlock(ctx)
	if n := len(l.slots); n != 0 {
		t.Fatalf("slots after cancelled wait and unlock = %d, want 0", n)
	}
}
