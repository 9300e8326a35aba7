package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestDecodeDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		t.Fatalf("decode defaults failed: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("default driver want sqlite got %s", cfg.Database.Driver)
	}
	if len(cfg.Reputation.Levels) != len(DefaultLevels()) {
		t.Fatalf("default levels want %d got %d", len(DefaultLevels()), len(cfg.Reputation.Levels))
	}
	if cfg.Reputation.Levels[1].MinExp != 100 || cfg.Reputation.Levels[1].Name != "Member" {
		t.Fatalf("unexpected second level: %+v", cfg.Reputation.Levels[1])
	}
	if cfg.Reputation.Awards["email_verified"] != 50 {
		t.Fatalf("email_verified award want 50 got %d", cfg.Reputation.Awards["email_verified"])
	}
	if cfg.Reputation.SystemApprover != "system" {
		t.Fatalf("system approver want system got %s", cfg.Reputation.SystemApprover)
	}
}

func TestDecodeAwardOverrideKeepsDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	yaml := `
reputation:
  awards:
    post_created: 15
  levels:
    - min_exp: 0
      name: Rookie
    - min_exp: 50
      name: Pro
`
	if err := v.ReadConfig(strings.NewReader(yaml)); err != nil {
		t.Fatalf("read yaml failed: %v", err)
	}
	cfg, err := decode(v)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cfg.Reputation.Awards["post_created"] != 15 {
		t.Fatalf("post_created override want 15 got %d", cfg.Reputation.Awards["post_created"])
	}
	if cfg.Reputation.Awards["comment_created"] != 5 {
		t.Fatalf("comment_created default want 5 got %d", cfg.Reputation.Awards["comment_created"])
	}
	if len(cfg.Reputation.Levels) != 2 || cfg.Reputation.Levels[1].Name != "Pro" {
		t.Fatalf("levels override not applied: %+v", cfg.Reputation.Levels)
	}
}
