package openai

import "strings"

type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderDeepSeek Provider = "deepseek"
)

type providerDefaults struct {
	BaseURL string
	Model   string
}

var defaults = map[Provider]providerDefaults{
	ProviderOpenAI:   {BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
	ProviderDeepSeek: {BaseURL: "https://api.deepseek.com", Model: "deepseek-chat"},
}

const DefaultTemperature = 0.7

// ParseProvider accepts a provider name case-insensitively. ok is false for
// anything other than openai or deepseek.
func ParseProvider(raw string) (Provider, bool) {
	p := Provider(strings.ToLower(strings.TrimSpace(raw)))
	if p == "" {
		return ProviderOpenAI, true
	}
	_, ok := defaults[p]
	return p, ok
}

func DefaultBaseURL(p Provider) string { return defaults[p].BaseURL }

func DefaultModel(p Provider) string { return defaults[p].Model }

// EnvPrefix is the environment variable prefix for p, e.g. "DEEPSEEK_".
func EnvPrefix(p Provider) string { return strings.ToUpper(string(p)) + "_" }
