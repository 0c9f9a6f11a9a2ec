package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = %v, %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("%PDF-1.7"), time.Hour); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "%PDF-1.7" {
		t.Errorf("Get(k) = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("old")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}

	if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl should never expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want silent miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Errorf("Clear() = %d, %v; want 3", n, err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := ArtifactKeyOpts{Family: "correlations", Format: "pdf", Highlight: "Spec-S5"}

	key := k.ArtifactKey("abc", base)
	if !strings.HasPrefix(key, "artifact:") {
		t.Errorf("ArtifactKey = %q", key)
	}
	if key != k.ArtifactKey("abc", base) {
		t.Error("ArtifactKey should be deterministic")
	}

	variants := []struct {
		name  string
		input string
		opts  ArtifactKeyOpts
	}{
		{"input", "abd", base},
		{"family", "abc", ArtifactKeyOpts{Family: "timeline", Format: "pdf", Highlight: "Spec-S5"}},
		{"format", "abc", ArtifactKeyOpts{Family: "correlations", Format: "png", Highlight: "Spec-S5"}},
		{"highlight", "abc", ArtifactKeyOpts{Family: "correlations", Format: "pdf", Highlight: "DESI"}},
	}
	for _, v := range variants {
		if k.ArtifactKey(v.input, v.opts) == key {
			t.Errorf("changing %s did not change the key", v.name)
		}
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prod:")
	key := scoped.ArtifactKey("abc", ArtifactKeyOpts{})
	if key != "prod:"+NewDefaultKeyer().ArtifactKey("abc", ArtifactKeyOpts{}) {
		t.Errorf("ScopedKeyer key = %q", key)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*FileCache); !ok {
		t.Errorf("default backend = %T, want *FileCache", c)
	}

	c, err = Open(ctx, Config{Backend: BackendNone})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(NullCache); !ok {
		t.Errorf("none backend = %T, want NullCache", c)
	}

	if _, err := Open(ctx, Config{Backend: "memcached"}); err == nil {
		t.Error("unknown backend should fail")
	}
	if _, err := Open(ctx, Config{Backend: BackendRedis, URL: "http://nope"}); err == nil {
		t.Error("bad redis URL should fail")
	}
	if _, err := Open(ctx, Config{Backend: BackendFile}); err == nil {
		t.Error("file backend without a directory should fail")
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()

	c, err := NewRedisCache("redis://127.0.0.1:1/0?max_retries=-1")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	_, hit, err := c.Get(context.Background(), "k")
	if hit || !errors.Is(err, ErrNetwork) {
		t.Errorf("Get = %v, %v; want ErrNetwork", hit, err)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("Retryable(ErrNetwork) = %v", err)
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("message not preserved: %s", err)
	}
	if IsRetryable(ErrNetwork) {
		t.Error("unwrapped error should not be retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()

	ctx := context.Background()
	permanent := errors.New("permanent")

	tests := []struct {
		name      string
		failUntil int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"success", 0, nil, 1, nil},
		{"permanent", 99, permanent, 1, permanent},
		{"recovers", 2, Retryable(ErrNetwork), 2, nil},
		{"exhausted", 99, Retryable(ErrNetwork), 3, ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls < tt.failUntil {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil || tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrNetwork) })
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
