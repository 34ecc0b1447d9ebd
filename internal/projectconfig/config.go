// Package projectconfig provides the ProjectConfig struct and loader for
// .rolecoach.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mentorinc/rolecoach/internal/utils"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".rolecoach.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultJudgeEngine      = "openai"
	DefaultJudgeModel       = "gpt-3.5-turbo"
	DefaultJudgeTemperature = 0.3

	DefaultScenario = "relationship-manager"

	DefaultServerPort = 3000

	DefaultQuotaAllotment = 2
	DefaultQuotaDBPath    = ".rolecoach/quota.db"

	DefaultSessionsDir = ".rolecoach/sessions"
)

// JudgeConfig selects and tunes the judge model.
type JudgeConfig struct {
	Engine      string   `yaml:"engine,omitempty"`
	Model       string   `yaml:"model,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	BaseURL     string   `yaml:"base_url,omitempty"`

	// APIKey is never read from the file.
	APIKey string `yaml:"-"`
}

// ScoringConfig holds scoring defaults.
type ScoringConfig struct {
	DefaultScenario string `yaml:"default_scenario,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// QuotaConfig holds simulation quota settings.
type QuotaConfig struct {
	Allotment int    `yaml:"allotment,omitempty"`
	DBPath    string `yaml:"db_path,omitempty"`
}

// SessionsConfig holds local session storage settings.
type SessionsConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .rolecoach.yaml.
type ProjectConfig struct {
	Judge    JudgeConfig    `yaml:"judge,omitempty"`
	Scoring  ScoringConfig  `yaml:"scoring,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`
	Quota    QuotaConfig    `yaml:"quota,omitempty"`
	Sessions SessionsConfig `yaml:"sessions,omitempty"`

	// Dir is the directory relative paths resolve against: the directory
	// holding the config file, or the start directory when none was found.
	Dir string `yaml:"-"`
}

// envOverrides maps environment variables onto config fields. Unset
// variables leave the pointer nil so the file and default values survive.
type envOverrides struct {
	APIKey          *string  `env:"OPENAI_API_KEY"`
	Engine          *string  `env:"ROLECOACH_JUDGE_ENGINE"`
	Model           *string  `env:"ROLECOACH_JUDGE_MODEL"`
	Temperature     *float64 `env:"ROLECOACH_JUDGE_TEMPERATURE"`
	BaseURL         *string  `env:"ROLECOACH_JUDGE_BASE_URL"`
	DefaultScenario *string  `env:"ROLECOACH_DEFAULT_SCENARIO"`
	Port            *int     `env:"ROLECOACH_PORT"`
	AllowedOrigins  []string `env:"ROLECOACH_ALLOWED_ORIGINS"`
	Allotment       *int     `env:"ROLECOACH_QUOTA_ALLOTMENT"`
	DBPath          *string  `env:"ROLECOACH_QUOTA_DB"`
	SessionsDir     *string  `env:"ROLECOACH_SESSIONS_DIR"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Judge: JudgeConfig{
			Engine:      DefaultJudgeEngine,
			Model:       DefaultJudgeModel,
			Temperature: utils.Ptr(DefaultJudgeTemperature),
		},
		Scoring: ScoringConfig{
			DefaultScenario: DefaultScenario,
		},
		Server: ServerConfig{
			Port: DefaultServerPort,
		},
		Quota: QuotaConfig{
			Allotment: DefaultQuotaAllotment,
			DBPath:    DefaultQuotaDBPath,
		},
		Sessions: SessionsConfig{
			Dir: DefaultSessionsDir,
		},
	}
}

// Load finds .rolecoach.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Environment overrides are not applied; see ApplyEnv.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", startDir, err)
	}
	cfg.Dir = absStart

	path, data, err := findConfigFile(absStart)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.Dir = filepath.Dir(path)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays environment variable values onto cfg.
func ApplyEnv(cfg *ProjectConfig) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.APIKey != nil {
		cfg.Judge.APIKey = *o.APIKey
	}
	if o.Engine != nil && *o.Engine != "" {
		cfg.Judge.Engine = *o.Engine
	}
	if o.Model != nil && *o.Model != "" {
		cfg.Judge.Model = *o.Model
	}
	if o.Temperature != nil {
		cfg.Judge.Temperature = o.Temperature
	}
	if o.BaseURL != nil {
		cfg.Judge.BaseURL = *o.BaseURL
	}
	if o.DefaultScenario != nil && *o.DefaultScenario != "" {
		cfg.Scoring.DefaultScenario = *o.DefaultScenario
	}
	if o.Port != nil && *o.Port != 0 {
		cfg.Server.Port = *o.Port
	}
	if len(o.AllowedOrigins) > 0 {
		cfg.Server.AllowedOrigins = o.AllowedOrigins
	}
	if o.Allotment != nil {
		cfg.Quota.Allotment = *o.Allotment
	}
	if o.DBPath != nil && *o.DBPath != "" {
		cfg.Quota.DBPath = *o.DBPath
	}
	if o.SessionsDir != nil && *o.SessionsDir != "" {
		cfg.Sessions.Dir = *o.SessionsDir
	}
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	return nil
}

func (c *ProjectConfig) validate() error {
	if c.Quota.Allotment < 1 {
		return fmt.Errorf("quota.allotment must be at least 1, got %d", c.Quota.Allotment)
	}
	return nil
}

// QuotaDBPath returns the quota database path resolved against cfg.Dir.
func (c *ProjectConfig) QuotaDBPath() string {
	return utils.ResolvePath(c.Quota.DBPath, c.Dir)
}

// SessionsDir returns the sessions directory resolved against cfg.Dir.
func (c *ProjectConfig) SessionsDir() string {
	return utils.ResolvePath(c.Sessions.Dir, c.Dir)
}

// JudgeTemperature returns the configured temperature, or the default.
func (c *ProjectConfig) JudgeTemperature() float64 {
	if c.Judge.Temperature == nil {
		return DefaultJudgeTemperature
	}
	return *c.Judge.Temperature
}

// findConfigFile walks up from dir looking for .rolecoach.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found. Real I/O
// errors are propagated.
func findConfigFile(dir string) (string, []byte, error) {
	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Judge
	if src.Judge.Engine != "" {
		dst.Judge.Engine = src.Judge.Engine
	}
	if src.Judge.Model != "" {
		dst.Judge.Model = src.Judge.Model
	}
	if src.Judge.Temperature != nil {
		dst.Judge.Temperature = src.Judge.Temperature
	}
	if src.Judge.BaseURL != "" {
		dst.Judge.BaseURL = src.Judge.BaseURL
	}

	// Scoring
	if src.Scoring.DefaultScenario != "" {
		dst.Scoring.DefaultScenario = src.Scoring.DefaultScenario
	}

	// Server
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}

	// Quota
	if src.Quota.Allotment != 0 {
		dst.Quota.Allotment = src.Quota.Allotment
	}
	if src.Quota.DBPath != "" {
		dst.Quota.DBPath = src.Quota.DBPath
	}

	// Sessions
	if src.Sessions.Dir != "" {
		dst.Sessions.Dir = src.Sessions.Dir
	}
}
