package app

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yungbote/hotflow/internal/platform/apierr"
	"github.com/yungbote/hotflow/internal/platform/envutil"
	"github.com/yungbote/hotflow/internal/platform/openai"
	"github.com/yungbote/hotflow/internal/platform/taobao"
)

// Viper keys. Keys that match an environment variable are read through
// AutomaticEnv; the llm_* keys only come from flags.
const (
	KeyDatabaseURL    = "HOTFLOW_DATABASE_URL"
	KeyKeywords       = "HOTFLOW_KEYWORDS"
	KeyPlatforms      = "HOTFLOW_PLATFORMS"
	KeyCopyProvider   = "HOTFLOW_COPY_PROVIDER"
	KeyLogMode        = "LOG_MODE"
	KeyVerbose        = "verbose"
	KeyLLMBaseURL     = "llm_base_url"
	KeyLLMModel       = "llm_model"
	KeyLLMTemperature = "llm_temperature"
)

var DefaultKeywords = []string{"抽纸", "洗衣液", "猫粮", "狗粮", "猫砂"}

type Settings struct {
	DatabaseURL string
	Keywords    []string
	// Platforms is empty when the catalog defaults apply.
	Platforms []string
	LogMode   string
	Verbose   bool
	Taobao    taobao.Config
	LLM       openai.Config

	llmErr error
}

// LoadSettings reads .env (if present), the environment and any flags bound
// on v. Only presence-independent problems are reported here; credentials are
// checked by the Require* methods so commands that don't need them still run.
func LoadSettings(v *viper.Viper) (*Settings, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if v == nil {
		v = viper.New()
	}
	v.AutomaticEnv()
	v.SetDefault(KeyLogMode, "development")
	v.SetDefault(KeyCopyProvider, string(openai.ProviderOpenAI))

	s := &Settings{
		DatabaseURL: strings.TrimSpace(v.GetString(KeyDatabaseURL)),
		Keywords:    envutil.SplitList(v.GetString(KeyKeywords)),
		Platforms:   envutil.SplitList(v.GetString(KeyPlatforms)),
		LogMode:     strings.TrimSpace(v.GetString(KeyLogMode)),
		Verbose:     v.GetBool(KeyVerbose),
		Taobao: taobao.Config{
			AppKey:    v.GetString("TB_APP_KEY"),
			AppSecret: v.GetString("TB_APP_SECRET"),
			AdzoneID:  v.GetString("TB_ADZONE_ID"),
			Endpoint:  v.GetString("TB_ENDPOINT"),
			Timeout:   envutil.Seconds("TB_TIMEOUT_SECONDS", 10*time.Second),
		},
	}
	if len(s.Keywords) == 0 {
		s.Keywords = append([]string(nil), DefaultKeywords...)
	}
	s.LLM, s.llmErr = loadLLM(v)
	return s, nil
}

func loadLLM(v *viper.Viper) (openai.Config, error) {
	raw := v.GetString(KeyCopyProvider)
	cfg := openai.Config{
		Provider: openai.Provider(strings.ToLower(strings.TrimSpace(raw))),
		Timeout:  envutil.Seconds("LLM_TIMEOUT_SECONDS", 120*time.Second),
	}
	provider, ok := openai.ParseProvider(raw)
	if !ok {
		return cfg, apierr.Config("unknown_provider", "%s must be openai or deepseek, got %q", KeyCopyProvider, raw)
	}
	cfg.Provider = provider
	prefix := openai.EnvPrefix(provider)

	cfg.APIKey = v.GetString(prefix + "API_KEY")
	cfg.Model = firstNonEmpty(v.GetString(KeyLLMModel), v.GetString(prefix+"MODEL"))
	cfg.BaseURL = firstNonEmpty(v.GetString(KeyLLMBaseURL), v.GetString(prefix+"BASE_URL"))

	name, rawTemp := "--openai-temperature", strings.TrimSpace(v.GetString(KeyLLMTemperature))
	if rawTemp == "" {
		name, rawTemp = prefix+"TEMPERATURE", strings.TrimSpace(v.GetString(prefix+"TEMPERATURE"))
	}
	if rawTemp != "" {
		t, err := strconv.ParseFloat(rawTemp, 64)
		if err != nil {
			return cfg, apierr.Config("invalid_env", "%s must be a number, got %q", name, rawTemp)
		}
		cfg.Temperature = &t
	}
	return cfg, nil
}

func (s *Settings) RequireDatabase() error {
	if s.DatabaseURL == "" {
		return apierr.Config("missing_env", "%s is required (or pass --database-url)", KeyDatabaseURL)
	}
	return nil
}

func (s *Settings) RequireTaobao() error {
	switch {
	case strings.TrimSpace(s.Taobao.AppKey) == "":
		return apierr.Config("missing_env", "TB_APP_KEY is required")
	case strings.TrimSpace(s.Taobao.AppSecret) == "":
		return apierr.Config("missing_env", "TB_APP_SECRET is required")
	case strings.TrimSpace(s.Taobao.AdzoneID) == "":
		return apierr.Config("missing_env", "TB_ADZONE_ID is required")
	}
	return nil
}

func (s *Settings) RequireLLM() error {
	if s.llmErr != nil {
		return s.llmErr
	}
	if strings.TrimSpace(s.LLM.APIKey) == "" {
		return apierr.Config("missing_env", "%sAPI_KEY is required", openai.EnvPrefix(s.LLM.Provider))
	}
	return nil
}

// loadDotEnv loads HOTFLOW_ENV_FILE, or ./.env. Variables already set win.
func loadDotEnv() error {
	path := envutil.String("HOTFLOW_ENV_FILE", ".env")
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return apierr.Config("invalid_env_file", "load %s: %v", path, err)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
