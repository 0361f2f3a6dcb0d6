package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/skyrun/internal/core/fault"
)

// Config holds every tunable of a streaming session.
type Config struct {
	Seed         string             `yaml:"seed" validate:"required"`
	Logging      LoggingConfig      `yaml:"logging"`
	Streaming    StreamingConfig    `yaml:"streaming"`
	Difficulty   DifficultyConfig   `yaml:"difficulty"`
	Spawning     SpawningConfig     `yaml:"spawning"`
	Pickups      PickupsConfig      `yaml:"pickups"`
	Housekeeping HousekeepingConfig `yaml:"housekeeping"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn error"`
	Encoding string `yaml:"encoding" validate:"oneof=json console"`
}

type StreamingConfig struct {
	ChunkLength  float64 `yaml:"chunk_length" validate:"gt=0"`
	VisibleCount int     `yaml:"visible_count" validate:"gte=1"`
	// CleanupBehindDistance of zero means two chunk lengths.
	CleanupBehindDistance float64 `yaml:"cleanup_behind_distance" validate:"gte=0"`
}

type DifficultyConfig struct {
	TierDistance       float64 `yaml:"tier_distance" validate:"gt=0"`
	MaxTier            int     `yaml:"max_tier" validate:"gte=1"`
	HealthMultiplier   float64 `yaml:"health_multiplier" validate:"gt=0"`
	DamageMultiplier   float64 `yaml:"damage_multiplier" validate:"gt=0"`
	FireRateMultiplier float64 `yaml:"fire_rate_multiplier" validate:"gt=0"`
	// MovementEpsilon filters float jitter out of the travelled distance.
	MovementEpsilon float64 `yaml:"movement_epsilon" validate:"gte=0"`
}

type SpawningConfig struct {
	MaxActiveEnemies    int           `yaml:"max_active_enemies" validate:"gte=1"`
	SpawnChancePerChunk float64       `yaml:"spawn_chance_per_chunk" validate:"gte=0,lte=1"`
	MaxPerChunk         int           `yaml:"max_per_chunk" validate:"gte=1"`
	Cooldown            time.Duration `yaml:"cooldown" validate:"gte=0"`
	CleanupDistance     float64       `yaml:"cleanup_distance" validate:"gt=0"`
	LateralHalfWidth    float64       `yaml:"lateral_half_width" validate:"gte=0"`
	AltitudeMin         float64       `yaml:"altitude_min"`
	AltitudeMax         float64       `yaml:"altitude_max" validate:"gtefield=AltitudeMin"`
	TierGating          bool          `yaml:"tier_gating"`
	// Prewarm maps prototype ids to the number of instances built at startup.
	Prewarm map[string]int `yaml:"prewarm" validate:"dive,gte=0"`
}

type PickupsConfig struct {
	SpawnChance      float64 `yaml:"spawn_chance" validate:"gte=0,lte=1"`
	MinDistance      float64 `yaml:"min_distance" validate:"gte=0"`
	MaxDistance      float64 `yaml:"max_distance" validate:"gtefield=MinDistance"`
	MaxAttempts      int     `yaml:"max_attempts" validate:"gte=1"`
	LateralHalfWidth float64 `yaml:"lateral_half_width" validate:"gte=0"`
	AltitudeMin      float64 `yaml:"altitude_min"`
	AltitudeMax      float64 `yaml:"altitude_max" validate:"gtefield=AltitudeMin"`
}

type HousekeepingConfig struct {
	Interval time.Duration `yaml:"interval" validate:"gt=0"`
}

// Default returns a playable configuration.
func Default() *Config {
	return &Config{
		Seed: "skyrun",
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Streaming: StreamingConfig{
			ChunkLength:  200,
			VisibleCount: 5,
		},
		Difficulty: DifficultyConfig{
			TierDistance:       500,
			MaxTier:            5,
			HealthMultiplier:   1.25,
			DamageMultiplier:   1.2,
			FireRateMultiplier: 1.15,
			MovementEpsilon:    0.001,
		},
		Spawning: SpawningConfig{
			MaxActiveEnemies:    10,
			SpawnChancePerChunk: 0.6,
			MaxPerChunk:         2,
			Cooldown:            2 * time.Second,
			CleanupDistance:     300,
			LateralHalfWidth:    60,
			AltitudeMin:         20,
			AltitudeMax:         80,
			TierGating:          true,
		},
		Pickups: PickupsConfig{
			SpawnChance:      0.35,
			MinDistance:      150,
			MaxDistance:      800,
			MaxAttempts:      10,
			LateralHalfWidth: 50,
			AltitudeMin:      10,
			AltitudeMax:      60,
		},
		Housekeeping: HousekeepingConfig{
			Interval: 500 * time.Millisecond,
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Configuration("config.Load", err, "open %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads YAML from r on top of the defaults.
func Decode(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fault.Configuration("config.Decode", err, "decode yaml")
	}
	return c, nil
}

// ApplyEnv loads the optional env files and applies SKYRUN_* overrides.
// Missing env files are not an error.
func (c *Config) ApplyEnv(envFiles ...string) error {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fault.Configuration("config.ApplyEnv", err, "load %s", path)
		}
	}

	var errs error
	if v, ok := os.LookupEnv("SKYRUN_SEED"); ok {
		c.Seed = v
	}
	if v, ok := os.LookupEnv("SKYRUN_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv("SKYRUN_LOG_ENCODING"); ok {
		c.Logging.Encoding = v
	}
	errs = errors.Join(errs, intEnv("SKYRUN_MAX_ACTIVE_ENEMIES", &c.Spawning.MaxActiveEnemies))
	errs = errors.Join(errs, floatEnv("SKYRUN_SPAWN_CHANCE", &c.Spawning.SpawnChancePerChunk))
	errs = errors.Join(errs, floatEnv("SKYRUN_TIER_DISTANCE", &c.Difficulty.TierDistance))
	errs = errors.Join(errs, intEnv("SKYRUN_MAX_TIER", &c.Difficulty.MaxTier))
	errs = errors.Join(errs, floatEnv("SKYRUN_PICKUP_CHANCE", &c.Pickups.SpawnChance))
	if errs != nil {
		return fault.Configuration("config.ApplyEnv", errs, "invalid override")
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and cross-field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return fault.Configuration("config.Validate", err, "%s failed %q", fe.Namespace(), fe.Tag())
		}
		return fault.Configuration("config.Validate", err, "invalid configuration")
	}
	return nil
}

// CleanupBehind returns the effective chunk retirement distance.
func (s StreamingConfig) CleanupBehind() float64 {
	if s.CleanupBehindDistance > 0 {
		return s.CleanupBehindDistance
	}
	return 2 * s.ChunkLength
}

func intEnv(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s=%q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func floatEnv(key string, dst *float64) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s=%q: %w", key, v, err)
	}
	*dst = f
	return nil
}
