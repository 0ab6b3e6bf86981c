// Package config loads composition settings from YAML.
package config

import (
	"os"

	"github.com/pedromxavier/EEL816/composer"
	"github.com/pedromxavier/EEL816/music"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Composer ComposerConfig `yaml:"composer"`
	Training TrainingConfig `yaml:"training"`
	Render   RenderConfig   `yaml:"render"`
}

// ComposerConfig holds the composer options and the length of the piece.
type ComposerConfig struct {
	Time      string  `yaml:"time"`
	Tempo     float64 `yaml:"tempo"`
	Reference float64 `yaml:"reference"`
	Pitches   int     `yaml:"pitches"`
	Bars      int     `yaml:"bars"`
	// Seed of the random source; zero picks one from the clock
	Seed int64 `yaml:"seed"`
	// Presets trains the built-in rhythm, progression and pitch material
	Presets bool `yaml:"presets"`
}

// TrainingConfig names corpus phrases to reinforce the models with.
type TrainingConfig struct {
	Corpus  string   `yaml:"corpus"`
	Phrases []string `yaml:"phrases"`
	Weight  int      `yaml:"weight"`
}

// RenderConfig holds output settings.
type RenderConfig struct {
	// Output file; the extension picks the format (.wav, .mid, .json)
	Output     string  `yaml:"output"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"`
	// Play sends the piece to a MIDI device
	Play   bool `yaml:"play"`
	Device int  `yaml:"device"`
}

// Default returns the default configuration.
func Default() *Config {
	opts := composer.DefaultOptions()
	return &Config{
		Composer: ComposerConfig{
			Time:      opts.Time.String(),
			Tempo:     opts.Tempo,
			Reference: opts.Reference,
			Pitches:   opts.Pitches,
			Bars:      8,
			Presets:   true,
		},
		Training: TrainingConfig{
			Weight: 100,
		},
		Render: RenderConfig{
			SampleRate: 44100,
			Volume:     0.5,
			Device:     -1,
		},
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Options converts the composer section into composer options.
func (c *Config) Options() (opts composer.Options, err error) {
	ts, err := music.ParseTimeSignature(c.Composer.Time)
	if err != nil {
		return
	}
	opts = composer.Options{
		Time:      ts,
		Tempo:     c.Composer.Tempo,
		Reference: c.Composer.Reference,
		Pitches:   c.Composer.Pitches,
	}
	err = opts.Validate()
	return
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := c.Options(); err != nil {
		return err
	}
	if c.Composer.Bars <= 0 {
		return errors.Errorf("composer.bars must be positive, got %d", c.Composer.Bars)
	}
	if len(c.Training.Phrases) > 0 && c.Training.Corpus == "" {
		return errors.New("training.phrases needs training.corpus")
	}
	if c.Training.Weight <= 0 {
		return errors.Errorf("training.weight must be positive, got %d", c.Training.Weight)
	}
	if c.Render.SampleRate <= 0 {
		return errors.Errorf("render.sample_rate must be positive, got %d", c.Render.SampleRate)
	}
	if c.Render.Volume <= 0 || c.Render.Volume > 1 {
		return errors.Errorf("render.volume must be in (0, 1], got %v", c.Render.Volume)
	}
	return nil
}
