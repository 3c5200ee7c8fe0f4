package main

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	redisRepo "github.com/iho/goclosing/internal/adapter/repository/redis"
	"github.com/iho/goclosing/internal/infrastructure/config"
	"github.com/iho/goclosing/internal/infrastructure/eventpublisher"
)

func TestTokenVerifier(t *testing.T) {
	verifier, err := tokenVerifier(&config.Config{AuthEnabled: false})
	if err != nil || verifier != nil {
		t.Fatalf("expected no verifier when auth is disabled, got %v %v", verifier, err)
	}

	if _, err := tokenVerifier(&config.Config{AuthEnabled: true}); err == nil {
		t.Fatalf("expected error when auth is enabled without a secret")
	}

	verifier, err = tokenVerifier(&config.Config{AuthEnabled: true, JWTSecret: "secret"})
	if err != nil || verifier == nil {
		t.Fatalf("expected verifier, got %v %v", verifier, err)
	}
}

func TestNewPublisher(t *testing.T) {
	cfg := &config.Config{EventChannel: "closure.events"}

	if _, ok := newPublisher(cfg, nil, zerolog.Nop()).(*eventpublisher.LogPublisher); !ok {
		t.Fatalf("expected log publisher without redis")
	}

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	if _, ok := newPublisher(cfg, client, zerolog.Nop()).(*redisRepo.EventPublisher); !ok {
		t.Fatalf("expected redis publisher with a client")
	}
}
