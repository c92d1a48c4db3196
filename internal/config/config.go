// Package config holds the runtime knobs of a training run, loaded from YAML
// and overridden from the command line.
package config

import (
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	DataDir      string  `yaml:"data_dir"`
	Synthetic    bool    `yaml:"synthetic"`
	Samples      int     `yaml:"samples"` // 0 loads every sample
	Hidden       []int   `yaml:"hidden"`
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
	LearningRate float64 `yaml:"learning_rate"`
	Seed         int64   `yaml:"seed"`
	Shuffle      bool    `yaml:"shuffle"`
}

// Overrides captures CLI supplied values. Zero values leave the loaded
// config untouched.
type Overrides struct {
	DataDir      string
	Synthetic    bool
	Samples      int
	Hidden       []int
	Epochs       int
	BatchSize    int
	LearningRate float64
	Seed         int64
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DataDir:      "./data",
		Hidden:       []int{128},
		Epochs:       5,
		BatchSize:    64,
		LearningRate: 0.1,
		Seed:         42,
		Shuffle:      true,
	}
}

// Load reads and validates a Config from a YAML file. Keys absent from the
// file keep their Default values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML from r on top of Default. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.Synthetic {
		c.Synthetic = true
	}
	if o.Samples > 0 {
		c.Samples = o.Samples
	}
	if len(o.Hidden) > 0 {
		c.Hidden = o.Hidden
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if !c.Synthetic && c.DataDir == "" {
		return errors.New("data_dir must be set unless synthetic is true")
	}
	if c.Epochs <= 0 {
		return errors.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return errors.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.LearningRate <= 0 || math.IsInf(c.LearningRate, 0) || math.IsNaN(c.LearningRate) {
		return errors.Errorf("learning_rate must be a positive number (got %v)", c.LearningRate)
	}
	if c.Samples < 0 {
		return errors.Errorf("samples must be >= 0 (got %d)", c.Samples)
	}
	for i, h := range c.Hidden {
		if h <= 0 {
			return errors.Errorf("hidden[%d] must be > 0 (got %d)", i, h)
		}
	}
	return nil
}

// Layers returns the full MLP layer sizes for the given input width and
// class count.
func (c *Config) Layers(inFeatures, numClasses int) []int {
	sizes := make([]int, 0, len(c.Hidden)+2)
	sizes = append(sizes, inFeatures)
	sizes = append(sizes, c.Hidden...)
	return append(sizes, numClasses)
}
