package config

import (
	_ "embed"
	"encoding/json"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

type Config struct {
	Capture struct {
		Interface string `json:"interface"`
		BatchSize uint32 `json:"batch_size"`
	} `json:"capture"`

	Probe struct {
		Retries   uint32 `json:"retries"`
		TimeoutMs uint32 `json:"timeout_ms"`
		Workers   uint32 `json:"workers"`
	} `json:"probe"`

	Resolve struct {
		TimeoutMs uint32 `json:"timeout_ms"`
	} `json:"resolve"`

	Report struct {
		ColorProfile string `json:"color_profile"`
	} `json:"report"`

	Filters struct {
		SenderAllow []string `json:"sender_allow"`
		SenderDeny  []string `json:"sender_deny"`
		TargetAllow []string `json:"target_allow"`
		TargetDeny  []string `json:"target_deny"`
	} `json:"filters"`
}

const settingsFilePath = "data/settings.json"

var (
	//go:embed default_settings.json
	defaultConfig []byte

	configValue atomic.Value
)

func init() {
	configValue.Store(Config{})
}

// ReadSettings loads data/settings.json, creating it from the embedded
// defaults on first run.
func ReadSettings() {
	data, err := os.ReadFile(settingsFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Settings file not found, creating with default configuration")

			if err := os.MkdirAll("data", os.ModePerm); err != nil {
				log.Error("Error creating directory for settings file:", err)
				return
			}

			if err := os.WriteFile(settingsFilePath, defaultConfig, os.ModePerm); err != nil {
				log.Error("Error writing default settings file:", err)
				return
			}

			data = defaultConfig
		} else {
			log.Error("Error reading settings file:", err)
			return
		}
	}

	var newConfig Config
	if err := json.Unmarshal(data, &newConfig); err != nil {
		log.Error("Error unmarshalling settings file:", err)
		return
	}

	configValue.Store(newConfig)
	log.Debug("Settings file loaded successfully")
}

func GetConfig() Config {
	return configValue.Load().(Config)
}

// SetConfig replaces the current configuration snapshot. Mostly useful for
// tests and flag overrides in main.
func SetConfig(newConfig Config) {
	configValue.Store(newConfig)
}

// ProbeTimeout returns the per-attempt probe timeout, defaulting to one
// second when unset.
func ProbeTimeout(cfg Config) time.Duration {
	if cfg.Probe.TimeoutMs == 0 {
		return time.Second
	}
	return time.Duration(cfg.Probe.TimeoutMs) * time.Millisecond
}

// ResolveTimeout returns the reverse lookup timeout, defaulting to two
// seconds when unset.
func ResolveTimeout(cfg Config) time.Duration {
	if cfg.Resolve.TimeoutMs == 0 {
		return 2 * time.Second
	}
	return time.Duration(cfg.Resolve.TimeoutMs) * time.Millisecond
}
