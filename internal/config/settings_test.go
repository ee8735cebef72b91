package config

import (
	"testing"
	"time"
)

func TestProbeTimeout(t *testing.T) {
	var cfg Config
	if got := ProbeTimeout(cfg); got != time.Second {
		t.Fatalf("ProbeTimeout default = %s, want 1s", got)
	}

	cfg.Probe.TimeoutMs = 250
	if got := ProbeTimeout(cfg); got != 250*time.Millisecond {
		t.Fatalf("ProbeTimeout = %s, want 250ms", got)
	}
}

func TestResolveTimeout(t *testing.T) {
	var cfg Config
	if got := ResolveTimeout(cfg); got != 2*time.Second {
		t.Fatalf("ResolveTimeout default = %s, want 2s", got)
	}

	cfg.Resolve.TimeoutMs = 500
	if got := ResolveTimeout(cfg); got != 500*time.Millisecond {
		t.Fatalf("ResolveTimeout = %s, want 500ms", got)
	}
}

func TestSetConfigSnapshot(t *testing.T) {
	orig := GetConfig()
	t.Cleanup(func() { SetConfig(orig) })

	var cfg Config
	cfg.Capture.BatchSize = 100
	SetConfig(cfg)

	if got := GetConfig().Capture.BatchSize; got != 100 {
		t.Fatalf("batch size after SetConfig = %d, want 100", got)
	}
}
