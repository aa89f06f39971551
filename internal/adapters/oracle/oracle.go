// Package oracle contains ContentOracle implementations.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/questline/internal/ports/secondary"
)

// Providers accepted by New.
const (
	ProviderGemini  = "gemini"
	ProviderFixture = "fixture"
)

// ErrOracleDisabled is returned when no model credentials are configured.
var ErrOracleDisabled = errors.New("content oracle disabled: no API key configured")

// Config configures the content oracle.
type Config struct {
	Provider  string
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	StepCount int
}

// New selects the oracle implementation for cfg.
// A Gemini provider without an API key yields a DisabledOracle.
func New(cfg Config, logger logrus.FieldLogger) (secondary.ContentOracle, error) {
	switch cfg.Provider {
	case ProviderFixture:
		return NewFixtureOracle(cfg.StepCount), nil
	case ProviderGemini, "":
		if cfg.APIKey == "" {
			logger.Warn("no Gemini API key configured; roadmap generation is disabled")
			return DisabledOracle{}, nil
		}
		return NewGeminiOracle(cfg, &http.Client{Timeout: cfg.Timeout}), nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}

// DisabledOracle fails every request. It keeps the rest of the service
// usable when generation is not configured.
type DisabledOracle struct{}

func (DisabledOracle) GenerateSteps(ctx context.Context, profile secondary.ProfileSnapshot, domain string) ([]secondary.StepDraft, error) {
	return nil, ErrOracleDisabled
}
