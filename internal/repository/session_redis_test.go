package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newMiniRedisSessions(t *testing.T) (*SessionRedis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionRedis(client), mr
}

func TestSessionRedis_RoundTrip(t *testing.T) {
	store, _ := newMiniRedisSessions(t)
	c := context.Background()

	if err := store.Set(c, "sid-1", "token", "tok", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := store.Get(c, "sid-1", "token")
	if err != nil || !ok || got != "tok" {
		t.Fatalf("Get() = (%q, %v, %v)", got, ok, err)
	}
	if err := store.Delete(c, "sid-1", "token"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := store.Get(c, "sid-1", "token"); ok {
		t.Fatalf("Get() after Delete must report missing")
	}
}

func TestSessionRedis_ShortLivedValueKeepsToken(t *testing.T) {
	store, mr := newMiniRedisSessions(t)
	c := context.Background()

	if err := store.Set(c, "sid-1", "token", "tok", 24*time.Hour); err != nil {
		t.Fatalf("Set(token) error = %v", err)
	}
	if err := store.Set(c, "sid-1", "flash", `{"message":"hi"}`, 65*time.Second); err != nil {
		t.Fatalf("Set(flash) error = %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok, err := store.Get(c, "sid-1", "flash"); err != nil || ok {
		t.Fatalf("flash should have expired, ok=%v err=%v", ok, err)
	}
	got, ok, err := store.Get(c, "sid-1", "token")
	if err != nil || !ok || got != "tok" {
		t.Fatalf("token must outlive the flash, Get() = (%q, %v, %v)", got, ok, err)
	}
	if ttl := mr.TTL(valueKey("sid-1", "token")); ttl < 23*time.Hour {
		t.Fatalf("token TTL shrank to %v", ttl)
	}
}

func TestSessionRedis_DefaultTTL(t *testing.T) {
	store, mr := newMiniRedisSessions(t)
	if err := store.Set(context.Background(), "sid-1", "token", "tok", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if ttl := mr.TTL(valueKey("sid-1", "token")); ttl != DefaultSessionTTL {
		t.Fatalf("TTL = %v, want %v", ttl, DefaultSessionTTL)
	}
}

func TestSessionRedis_DestroyOnlyTouchesOwnSession(t *testing.T) {
	store, _ := newMiniRedisSessions(t)
	c := context.Background()

	for _, key := range []string{"token", "flash"} {
		if err := store.Set(c, "sid-1", key, "v", time.Hour); err != nil {
			t.Fatalf("Set(%s) error = %v", key, err)
		}
	}
	if err := store.Set(c, "sid-2", "token", "other", time.Hour); err != nil {
		t.Fatalf("Set(sid-2) error = %v", err)
	}

	if err := store.Destroy(c, "sid-1"); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	for _, key := range []string{"token", "flash"} {
		if _, ok, _ := store.Get(c, "sid-1", key); ok {
			t.Fatalf("%s survived Destroy", key)
		}
	}
	if got, ok, _ := store.Get(c, "sid-2", "token"); !ok || got != "other" {
		t.Fatalf("other session lost its token")
	}
}

func TestSessionRedis_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error = %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	if _, err := ConnectRedis(context.Background(), addr, "", 0); err == nil {
		t.Fatalf("ConnectRedis() against a closed server must fail")
	}
}
