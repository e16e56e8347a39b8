package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/gtmquest/gtm-advisor/agent/contract"
	openrouterx "github.com/gtmquest/gtm-advisor/pkg/openrouter"
)

// Path selects which conversational surface a model serves.
type Path string

const (
	PathAdvisor Path = "advisor" // tool-calling report builder
	PathVoice   Path = "voice"   // short-reply voice bridge
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"google/gemini-2.0-flash-001"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	AdvisorModel       string  `envconfig:"ADVISOR_MODEL" split_words:"true"`
	VoiceModel         string  `envconfig:"VOICE_MODEL" split_words:"true"`
	AdvisorTemperature float64 `envconfig:"ADVISOR_TEMPERATURE" split_words:"true" default:"-1"`
	VoiceTemperature   float64 `envconfig:"VOICE_TEMPERATURE" split_words:"true" default:"-1"`
}

// Configured reports whether a credential is present. A missing key
// degrades the paths that need a model instead of failing startup.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func (c Config) Validate() error {
	if !c.Configured() {
		return fmt.Errorf("%w: model api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the client configuration for one path, applying
// per-path model and temperature overrides.
func (c Config) OpenRouterFor(path Path) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch path {
	case PathAdvisor:
		if v := strings.TrimSpace(c.AdvisorModel); v != "" {
			modelName = v
		}
		if c.AdvisorTemperature >= 0 {
			temp = c.AdvisorTemperature
		}
	case PathVoice:
		if v := strings.TrimSpace(c.VoiceModel); v != "" {
			modelName = v
		}
		if c.VoiceTemperature >= 0 {
			temp = c.VoiceTemperature
		}
	}

	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: c.MaxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
