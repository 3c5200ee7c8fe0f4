package redis

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/goclosing/internal/domain"
)

func TestDeclarationLockerAcquireAndRelease(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	locker := NewDeclarationLocker(client, time.Minute, 50*time.Millisecond, zerolog.Nop())
	day := domain.NewBusinessDay(2026, time.March, 14)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "school-1", day)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	if !mr.Exists("lock:closure:school-1:2026-03-14") {
		t.Fatalf("expected lock key to exist")
	}

	if _, err := locker.Acquire(ctx, "school-1", day); err == nil {
		t.Fatalf("expected second acquire to fail while held")
	}

	other, err := locker.Acquire(ctx, "school-1", domain.NewBusinessDay(2026, time.March, 15))
	if err != nil {
		t.Fatalf("expected other day to be independent: %v", err)
	}
	other()

	release()

	if mr.Exists("lock:closure:school-1:2026-03-14") {
		t.Fatalf("expected lock key to be released")
	}

	again, err := locker.Acquire(ctx, "school-1", day)
	if err != nil {
		t.Fatalf("expected acquire after release to succeed: %v", err)
	}
	again()
}

func TestDeclarationLockerWaitsForHolder(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	locker := NewDeclarationLocker(client, time.Minute, time.Second, zerolog.Nop())
	day := domain.NewBusinessDay(2026, time.March, 14)

	release, err := locker.Acquire(context.Background(), "school-1", day)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		release()
	}()

	second, err := locker.Acquire(context.Background(), "school-1", day)
	if err != nil {
		t.Fatalf("expected waiter to obtain lock after release: %v", err)
	}
	second()
}

func TestDeclarationLockerReleaseAfterExpiry(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	locker := NewDeclarationLocker(client, time.Second, 50*time.Millisecond, zerolog.Nop())

	release, err := locker.Acquire(context.Background(), "school-1", domain.NewBusinessDay(2026, time.March, 14))
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	// Must not panic or block when the lock already expired.
	release()
}
