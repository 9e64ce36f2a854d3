package treemorph

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/gekko3d/treemorph/treert/rt/dataset"
)

var ErrInvalidConfig = errors.New("invalid config")

// ConfigError names the offending field. It unwraps to ErrInvalidConfig.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s = %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// Config fixes particle density and tree shape for the lifetime of a Tree.
type Config struct {
	FoliageCount  int     `json:"foliageCount"`
	OrnamentCount int     `json:"ornamentCount"`
	GiftCount     int     `json:"giftCount"`
	TreeHeight    float32 `json:"treeHeight"`
	TreeRadius    float32 `json:"treeRadius"`
	ChaosRadius   float32 `json:"chaosRadius"`

	// Seed for the dataset random source; 0 seeds from the clock.
	Seed int64 `json:"seed"`
	// Workers for headless foliage evaluation; 0 picks from the CPU count.
	Workers int `json:"workers"`

	WindowWidth  int  `json:"windowWidth"`
	WindowHeight int  `json:"windowHeight"`
	Debug        bool `json:"debug"`
}

func DefaultConfig() Config {
	return Config{
		FoliageCount:  15000,
		OrnamentCount: 400,
		GiftCount:     50,
		TreeHeight:    12,
		TreeRadius:    4.5,
		ChaosRadius:   15,
		WindowWidth:   1280,
		WindowHeight:  720,
	}
}

// Validate reports every invalid field. Nothing is clamped.
func (c Config) Validate() error {
	var errs []error
	positiveInt := func(field string, v int) {
		if v <= 0 {
			errs = append(errs, &ConfigError{Field: field, Value: v, Reason: "must be positive"})
		}
	}
	positiveFloat := func(field string, v float32) {
		if !(v > 0) {
			errs = append(errs, &ConfigError{Field: field, Value: v, Reason: "must be positive"})
		}
	}

	positiveInt("foliageCount", c.FoliageCount)
	positiveInt("ornamentCount", c.OrnamentCount)
	positiveInt("giftCount", c.GiftCount)
	positiveFloat("treeHeight", c.TreeHeight)
	positiveFloat("treeRadius", c.TreeRadius)
	positiveFloat("chaosRadius", c.ChaosRadius)
	positiveInt("windowWidth", c.WindowWidth)
	positiveInt("windowHeight", c.WindowHeight)
	if c.Workers < 0 {
		errs = append(errs, &ConfigError{Field: "workers", Value: c.Workers, Reason: "must not be negative"})
	}
	return errors.Join(errs...)
}

func (c Config) Params() dataset.Params {
	return dataset.Params{
		TreeHeight:  c.TreeHeight,
		TreeRadius:  c.TreeRadius,
		ChaosRadius: c.ChaosRadius,
	}
}

// LoadConfig overlays the JSON file at path onto DefaultConfig and validates
// the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// BindFlags registers a flag per field, defaulting to the current values.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.FoliageCount, "foliage", c.FoliageCount, "number of foliage particles")
	fs.IntVar(&c.OrnamentCount, "ornaments", c.OrnamentCount, "number of sphere ornaments")
	fs.IntVar(&c.GiftCount, "gifts", c.GiftCount, "number of gift boxes")
	fs.Var((*float32Value)(&c.TreeHeight), "tree-height", "tree cone height")
	fs.Var((*float32Value)(&c.TreeRadius), "tree-radius", "tree cone base radius")
	fs.Var((*float32Value)(&c.ChaosRadius), "chaos-radius", "radius of the scattered sphere")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "random seed, 0 for time based")
	fs.IntVar(&c.Workers, "workers", c.Workers, "foliage evaluation workers, 0 for auto")
	fs.IntVar(&c.WindowWidth, "width", c.WindowWidth, "window width")
	fs.IntVar(&c.WindowHeight, "height", c.WindowHeight, "window height")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "debug logging and profiler overlay")
}

type float32Value float32

func (f *float32Value) String() string {
	if f == nil {
		return "0"
	}
	return strconv.FormatFloat(float64(*f), 'g', -1, 32)
}

func (f *float32Value) Set(s string) error {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return err
	}
	*f = float32Value(v)
	return nil
}
