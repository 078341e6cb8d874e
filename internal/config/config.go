package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rocketscienceinc/tictactoe-console/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-console/internal/entity"
)

const (
	RegistryMemory = "memory"
	RegistryRedis  = "redis"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type Config struct {
	LogLevel string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Seed     int64    `yaml:"seed" env:"SEED" env-default:"0"`
	Match    Match    `yaml:"match"`
	Players  Players  `yaml:"players"`
	Registry Registry `yaml:"registry"`
	Redis    Redis    `yaml:"redis"`
}

type Match struct {
	Mode    string  `yaml:"mode" env:"MATCH_MODE" env-default:"normal"`
	Starter string  `yaml:"starter" env:"MATCH_STARTER" env-default:"random"`
	WinGoal WinGoal `yaml:"win-goal"`
}

// WinGoal is the number of round wins that ends a match, per difficulty mode.
type WinGoal struct {
	Easy   int `yaml:"easy" env:"WIN_GOAL_EASY" env-default:"2"`
	Normal int `yaml:"normal" env:"WIN_GOAL_NORMAL" env-default:"3"`
}

type Players struct {
	Human         Human    `yaml:"human"`
	ComputerNames []string `yaml:"computer-names" env-default:"R2D2,Hal,Chappie,Sonny,Wall-E"`
	Markers       []string `yaml:"markers" env-default:"X,O,#,@,&,*,+"`
	Avatars       []string `yaml:"avatars" env-default:"(o_o),(^_^),(>_<),(-_-),(O_O),(x_x)"`
}

type Human struct {
	Name   string `yaml:"name" env:"PLAYER_NAME" env-default:"Player"`
	Marker string `yaml:"marker" env:"PLAYER_MARKER" env-default:"X"`
	Avatar string `yaml:"avatar" env:"PLAYER_AVATAR" env-default:"(o_o)"`
}

type Registry struct {
	Backend string `yaml:"backend" env:"REGISTRY_BACKEND" env-default:"memory"`
	// SessionTTL bounds how long redis claims outlive a session that was never cleaned up.
	SessionTTL time.Duration `yaml:"session-ttl" env:"REGISTRY_SESSION_TTL" env-default:"12h"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// Load reads the file, applies env overrides and validates the result.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	switch that.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("%w: unknown log level %q", apperror.ErrConfiguration, that.LogLevel)
	}

	if _, err := entity.ParseDifficulty(that.Match.Mode); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrConfiguration, err)
	}

	switch that.Match.Starter {
	case entity.StarterFirst, entity.StarterSecond, entity.StarterRandom:
	default:
		return fmt.Errorf("%w: unknown starter %q", apperror.ErrConfiguration, that.Match.Starter)
	}

	if that.Match.WinGoal.Easy <= 0 || that.Match.WinGoal.Normal <= 0 {
		return fmt.Errorf("%w: win goals must be positive", apperror.ErrConfiguration)
	}

	if len(that.Players.Markers) < 2 || len(that.Players.Avatars) < 2 {
		return fmt.Errorf("%w: at least two markers and two avatars are needed", apperror.ErrConfiguration)
	}

	if strings.TrimSpace(that.Players.Human.Marker) == "" {
		return fmt.Errorf("%w: human marker must not be empty", apperror.ErrConfiguration)
	}

	switch that.Registry.Backend {
	case RegistryMemory:
	case RegistryRedis:
		if that.Registry.SessionTTL <= 0 {
			return fmt.Errorf("%w: registry session ttl must be positive", apperror.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown registry backend %q", apperror.ErrConfiguration, that.Registry.Backend)
	}

	return nil
}

// WinGoalFor returns the configured goal of the mode.
func (that *Match) WinGoalFor(mode entity.Difficulty) int {
	if mode == entity.EasyDifficulty {
		return that.WinGoal.Easy
	}

	return that.WinGoal.Normal
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
