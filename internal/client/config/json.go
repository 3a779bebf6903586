package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/unicampus-app/unicampus/internal/flagx"
	"github.com/unicampus-app/unicampus/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify timeouts either as strings like "15s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	BaseURL        string         `json:"base_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	RefreshTimeout timex.Duration `json:"refresh_timeout"`
	StorePath      string         `json:"store_path"`
	LogLevel       string         `json:"log_level"`
}

// parseJson overlays Config with values from the JSON file given via the
// -c/-config flags. If no file is specified, nothing happens. Read or
// unmarshal errors panic; the intended order is defaults -> parseJson ->
// parseFlags, where later stages override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.RefreshTimeout.Duration != 0 {
		cfg.RefreshTimeout = time.Duration(jc.RefreshTimeout.Duration)
	}
	if jc.StorePath != "" {
		cfg.StorePath = jc.StorePath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
