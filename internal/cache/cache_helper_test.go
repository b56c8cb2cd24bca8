package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedReport struct {
	Total int    `json:"total"`
	Label string `json:"label"`
}

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheManager(client), mr
}

func TestCacheHelper_GetSet(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	var got cachedReport
	if err := cm.Report.Get(ctx, "admin", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Fatalf("expected ErrCacheNotFound, got %v", err)
	}

	if err := cm.Report.Set(ctx, "admin", cachedReport{Total: 3, Label: "x"}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !mr.Exists("report:admin") {
		t.Fatalf("expected key report:admin to exist")
	}

	if err := cm.Report.Get(ctx, "admin", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Total != 3 || got.Label != "x" {
		t.Errorf("Get() = %+v", got)
	}

	mr.FastForward(2 * time.Minute)
	if err := cm.Report.Get(ctx, "admin", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected expiry, got %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	cm, _ := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedReport{Total: calls}, nil
	}

	for i := 0; i < 3; i++ {
		var got cachedReport
		if err := cm.Report.CacheOrExecute(ctx, "leaderboard", &got, time.Minute, fetch); err != nil {
			t.Fatalf("CacheOrExecute() error = %v", err)
		}
		if got.Total != 1 {
			t.Errorf("iteration %d: got total %d, want 1", i, got.Total)
		}
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}

	wantErr := errors.New("boom")
	var got cachedReport
	err := cm.Report.CacheOrExecute(ctx, "broken", &got, time.Minute, func() (interface{}, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected fetch error to propagate, got %v", err)
	}
}

func TestCacheManager_InvalidateReports(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	for _, key := range []string{"admin", "leaderboard", "user:1"} {
		if err := cm.Report.Set(ctx, key, cachedReport{}, time.Minute); err != nil {
			t.Fatalf("Set(%s) error = %v", key, err)
		}
	}
	if err := cm.User.Set(ctx, "id:1", cachedReport{}, time.Minute); err != nil {
		t.Fatalf("Set user error = %v", err)
	}

	cm.InvalidateReports(ctx)

	for _, key := range []string{"report:admin", "report:leaderboard", "report:user:1"} {
		if mr.Exists(key) {
			t.Errorf("expected %s to be invalidated", key)
		}
	}
	if !mr.Exists("user:id:1") {
		t.Errorf("user cache must survive report invalidation")
	}
}

func TestCacheManager_WithoutRedis(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	if err := cm.HealthCheck(ctx); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("HealthCheck() = %v, want ErrCacheNotAvailable", err)
	}

	calls := 0
	for i := 0; i < 2; i++ {
		var got cachedReport
		err := cm.Report.CacheOrExecute(ctx, "k", &got, time.Minute, func() (interface{}, error) {
			calls++
			return cachedReport{Total: 7}, nil
		})
		if err != nil || got.Total != 7 {
			t.Fatalf("CacheOrExecute() = %+v, %v", got, err)
		}
	}
	if calls != 2 {
		t.Errorf("without redis every call must fetch, got %d calls", calls)
	}

	cm.InvalidateReports(ctx)
}
