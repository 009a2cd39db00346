package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func baseEnv() map[string]string {
	return map[string]string{
		"JWT_SECRET":         "access-secret",
		"JWT_REFRESH_SECRET": "refresh-secret",
	}
}

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(baseEnv()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8000" || cfg.Env != "development" || cfg.IsProduction() {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Auth.AccessTTL != time.Hour || cfg.Auth.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("unexpected token lifetimes: %+v", cfg.Auth)
	}
	if cfg.Auth.BcryptCost != 10 || cfg.Auth.OpenRegistration {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if cfg.Throttle.MaxAttempts != 10 || cfg.Throttle.Window != 15*time.Minute {
		t.Fatalf("unexpected throttle defaults: %+v", cfg.Throttle)
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	env := baseEnv()
	env["ENV"] = "Production"
	env["CORS_ORIGIN"] = "https://a.example.org,https://b.example.org"
	env["ACCESS_TOKEN_TTL"] = "15m"
	env["OPEN_REGISTRATION"] = "true"

	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production")
	}
	if len(cfg.HTTP.CORSOrigins) != 2 || cfg.HTTP.CORSOrigins[1] != "https://b.example.org" {
		t.Fatalf("unexpected origins: %v", cfg.HTTP.CORSOrigins)
	}
	if cfg.Auth.AccessTTL != 15*time.Minute || !cfg.Auth.OpenRegistration {
		t.Fatalf("unexpected auth config: %+v", cfg.Auth)
	}
}

func TestLoadWith_FailsFast(t *testing.T) {
	cases := map[string]map[string]string{
		"missing access secret":  {"JWT_REFRESH_SECRET": "r"},
		"missing refresh secret": {"JWT_SECRET": "a"},
		"identical secrets":      {"JWT_SECRET": "same", "JWT_REFRESH_SECRET": "same"},
		"bad bcrypt cost":        {"JWT_SECRET": "a", "JWT_REFRESH_SECRET": "r", "BCRYPT_COST": "99"},
		"zero ttl":               {"JWT_SECRET": "a", "JWT_REFRESH_SECRET": "r", "ACCESS_TOKEN_TTL": "0s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadWith(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"JWT_SECRET", "JWT_REFRESH_SECRET", "lifetimes", "BCRYPT_COST"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err)
		}
	}
}
