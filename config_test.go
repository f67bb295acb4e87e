package main

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		answerWindow:      10 * time.Second,
		bind:              "0.0.0.0",
		countdownInterval: time.Second,
		countdownTicks:    5,
		port:              8080,
		questions:         "questions.json",
		roundPause:        3 * time.Second,
	}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig().validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	for name, mutate := range map[string]func(*Config){
		"port too low":        func(c *Config) { c.port = 0 },
		"port too high":       func(c *Config) { c.port = 65536 },
		"cert without key":    func(c *Config) { c.tlsCert = "cert.pem" },
		"key without cert":    func(c *Config) { c.tlsKey = "key.pem" },
		"zero ticks":          func(c *Config) { c.countdownTicks = 0 },
		"zero interval":       func(c *Config) { c.countdownInterval = 0 },
		"zero answer window":  func(c *Config) { c.answerWindow = 0 },
		"negative pause":      func(c *Config) { c.roundPause = -time.Second },
		"empty question path": func(c *Config) { c.questions = "" },
	} {
		cfg := validConfig()
		mutate(cfg)
		if err := cfg.validate(); err == nil {
			t.Fatalf("%s: expected a validation error", name)
		}
	}
}

func TestConfigScheme(t *testing.T) {
	cfg := validConfig()
	if cfg.scheme() != "http" {
		t.Fatalf("expected http without TLS, got %s", cfg.scheme())
	}

	cfg.tlsCert = "cert.pem"
	cfg.tlsKey = "key.pem"
	if cfg.scheme() != "https" {
		t.Fatalf("expected https with TLS, got %s", cfg.scheme())
	}
}

func TestConfigJoinURL(t *testing.T) {
	cfg := validConfig()
	if got := cfg.joinURL(); got != "http://0.0.0.0:8080/mobile" {
		t.Fatalf("unexpected join url: %s", got)
	}

	cfg.publicURL = "https://trivia.example.com/"
	if got := cfg.joinURL(); got != "https://trivia.example.com/mobile" {
		t.Fatalf("public url should override the bind address, got %s", got)
	}

	cfg.prefix = "/games"
	if got := cfg.joinURL(); got != "https://trivia.example.com/games/mobile" {
		t.Fatalf("prefix should be included, got %s", got)
	}
}

func TestCmdRejectsBadFlags(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)
	cmd.SetArgs([]string{"--port", "0", "--questions", "questions.json"})
	cmd.SetOut(&strings.Builder{})
	cmd.SetErr(&strings.Builder{})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an out-of-range port to fail validation")
	}
}
