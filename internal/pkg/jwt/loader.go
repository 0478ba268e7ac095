// internal/pkg/jwt/loader.go
package jwt

import (
	"fmt"
	"time"
)

type Config struct {
	Secret        string
	Leeway        time.Duration
	AdminSubject  string
	AdminTokenTTL time.Duration
}

type Manager struct {
	Generator *Generator
	Verifier  *Verifier
}

func LoadAndBuild(cfg Config) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("identity JWT secret is not configured")
	}

	secret := []byte(cfg.Secret)
	ttl := cfg.AdminTokenTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	gen := NewGenerator(secret, cfg.AdminSubject, ttl)
	ver := NewVerifier(secret, cfg.Leeway)

	return &Manager{
		Generator: gen,
		Verifier:  ver,
	}, nil
}
