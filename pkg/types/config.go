// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// NavigateMode selects what happens with the results location once a
// conversion succeeds.
type NavigateMode string

const (
	NavigatePrint   NavigateMode = "print"
	NavigateBrowser NavigateMode = "browser"
	NavigateFetch   NavigateMode = "fetch"
)

// HTTPConfig holds the settings for requests to the conversion backend.
type HTTPConfig struct {
	// Endpoint is the backend base URL (e.g. "http://127.0.0.1:5000").
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint" validate:"required,url"`

	// Timeout bounds each request. Zero leaves it to the transport.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// Token is an optional bearer token. It is loaded from the secrets
	// directory and never read from the config file.
	Token string `json:"-" yaml:"-" mapstructure:"-"`
}

// Config is the full runtime configuration of the CLI.
type Config struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// ProgressInterval is the cadence of the cosmetic progress ticks.
	ProgressInterval time.Duration `json:"progress_interval" yaml:"progress_interval" mapstructure:"progress_interval" validate:"gt=0"`

	// Navigate selects the results navigator: print, browser, or fetch.
	Navigate NavigateMode `json:"navigate" yaml:"navigate" mapstructure:"navigate" validate:"oneof=print browser fetch"`

	// ResultsDir is where the fetch navigator and the results command
	// write conversion output.
	ResultsDir string `json:"results_dir" yaml:"results_dir" mapstructure:"results_dir" validate:"required"`

	// WatchSettle is how long a file in the drop directory must stay
	// unmodified before it counts as dropped.
	WatchSettle time.Duration `json:"watch_settle" yaml:"watch_settle" mapstructure:"watch_settle" validate:"gt=0"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level" validate:"oneof=debug info warn error"`
}

// DefaultConfig returns the configuration used when no file, environment
// variable, or flag overrides a value.
func DefaultConfig() Config {
	return Config{
		HTTPConfig: HTTPConfig{
			Endpoint:  "http://127.0.0.1:5000",
			UserAgent: "cobol-lens/0.1",
		},
		ProgressInterval: 100 * time.Millisecond,
		Navigate:         NavigatePrint,
		ResultsDir:       "results",
		WatchSettle:      500 * time.Millisecond,
		LogLevel:         "info",
	}
}

var validate = validator.New()

// Validate reports the first invalid field, if any.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
