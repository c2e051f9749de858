package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the gameplay tuning constants for the grapple engine.
// All distances are world units, all durations seconds.
type Config struct {
	// OriginTolerance bounds how far a claimed fire origin may sit from the
	// actor's actual body position before the request is treated as spoofed.
	OriginTolerance float64 `yaml:"origin_tolerance"`
	// SweepRadius is the radius of the volumetric target cast.
	SweepRadius float64 `yaml:"sweep_radius"`
	// MaxRange bounds the target cast and the swing rope length.
	MaxRange float64 `yaml:"max_range"`
	// BreakSlack is added to MaxRange to form the forced-detach distance.
	BreakSlack float64 `yaml:"break_slack"`

	SwingMinLength float64 `yaml:"swing_min_length"`
	SwingMaxLength float64 `yaml:"swing_max_length"`

	ReelBaseSpeed     float64 `yaml:"reel_base_speed"`
	ReelAccelRate     float64 `yaml:"reel_accel_rate"`
	ReelMaxMultiplier float64 `yaml:"reel_max_multiplier"`

	ZipSpeed        float64 `yaml:"zip_speed"`
	ZipStopDistance float64 `yaml:"zip_stop_distance"`
	ZipMaxForce     float64 `yaml:"zip_max_force"`

	BaseImpulse   float64 `yaml:"base_impulse"`
	UpwardBias    float64 `yaml:"upward_bias"`
	IntentEpsilon float64 `yaml:"intent_epsilon"`

	CooldownSeconds float64 `yaml:"cooldown_seconds"`
	TickRate        float64 `yaml:"tick_rate"`

	// ExclusionTag marks surfaces that reject grapple targets.
	ExclusionTag string `yaml:"exclusion_tag"`
}

// Default returns the shipped tuning values.
func Default() Config {
	return Config{
		OriginTolerance:   25,
		SweepRadius:       2,
		MaxRange:          250,
		BreakSlack:        50,
		SwingMinLength:    5,
		SwingMaxLength:    250,
		ReelBaseSpeed:     20,
		ReelAccelRate:     5,
		ReelMaxMultiplier: 3,
		ZipSpeed:          70,
		ZipStopDistance:   8,
		ZipMaxForce:       100000,
		BaseImpulse:       30,
		UpwardBias:        0.5,
		IntentEpsilon:     0.05,
		CooldownSeconds:   0.8,
		TickRate:          60,
		ExclusionTag:      "nograpple",
	}
}

// Load reads a YAML tuning file over the defaults. Fields absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("tuning: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("tuning: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("tuning: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.MaxRange <= 0 {
		return fmt.Errorf("max_range must be positive, got %v", c.MaxRange)
	}
	if c.SweepRadius <= 0 {
		return fmt.Errorf("sweep_radius must be positive, got %v", c.SweepRadius)
	}
	if c.SwingMinLength < 0 || c.SwingMinLength > c.SwingMaxLength {
		return fmt.Errorf("swing length bounds invalid: [%v, %v]", c.SwingMinLength, c.SwingMaxLength)
	}
	if c.ReelMaxMultiplier < 1 {
		return fmt.Errorf("reel_max_multiplier must be >= 1, got %v", c.ReelMaxMultiplier)
	}
	if c.ZipSpeed <= 0 || c.ZipStopDistance <= 0 {
		return fmt.Errorf("zip parameters must be positive: speed=%v stop=%v", c.ZipSpeed, c.ZipStopDistance)
	}
	if c.CooldownSeconds < 0 {
		return fmt.Errorf("cooldown_seconds must be >= 0, got %v", c.CooldownSeconds)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %v", c.TickRate)
	}
	return nil
}
