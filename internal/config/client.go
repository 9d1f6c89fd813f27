// AngelaMos | 2026
// client.go

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// ClientConfig configures the terminal client.
type ClientConfig struct {
	APIURL    string        `koanf:"api_url"`
	StatePath string        `koanf:"state_path"`
	Timeout   time.Duration `koanf:"timeout"`
	LogLevel  string        `koanf:"log_level"`
}

var clientEnvKeyMap = map[string]string{
	"DEBT_API_URL":      "api_url",
	"DEBTCTL_STATE":     "state_path",
	"DEBTCTL_TIMEOUT":   "timeout",
	"DEBTCTL_LOG_LEVEL": "log_level",
}

func LoadClient() (*ClientConfig, error) {
	k := koanf.New(".")

	home, err := os.UserConfigDir()
	if err != nil {
		home = "."
	}

	defaults := map[string]any{
		"api_url":    "http://localhost:8080/v1",
		"state_path": filepath.Join(home, "debtctl", "state.db"),
		"timeout":    "0s",
		"log_level":  "info",
	}
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	replacer := func(s string) string {
		return clientEnvKeyMap[s]
	}
	if err := k.Load(env.Provider("", ".", replacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	out := &ClientConfig{}
	if err := k.Unmarshal("", out); err != nil {
		return nil, fmt.Errorf("unmarshal client config: %w", err)
	}

	if out.APIURL == "" {
		return nil, fmt.Errorf("DEBT_API_URL is required")
	}

	return out, nil
}
