package types

import "time"

// Config represents the layout of the .mathsteps.yaml configuration file.
type Config struct {
	Name           string                `yaml:"name"`
	MaxSolveSteps  int                   `yaml:"maxSolveSteps"`
	MaxSearchDepth int                   `yaml:"maxSearchDepth"`
	Cache          CacheConfig           `yaml:"cache"`
	RulesFile      string                `yaml:"rulesFile,omitempty"`
	Pools          map[string]PoolConfig `yaml:"pools,omitempty"`
}

// CacheConfig bounds the parse cache. A negative size turns it off.
type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

type PoolConfig struct {
	Disabled bool `yaml:"disabled"`
}

// DefaultConfig is used when no configuration file is present.
func DefaultConfig() Config {
	return Config{
		Name:           "mathsteps",
		MaxSolveSteps:  20,
		MaxSearchDepth: 50,
		Cache: CacheConfig{
			Size: 256,
			TTL:  10 * time.Minute,
		},
		Pools: map[string]PoolConfig{},
	}
}

// WithDefaults fills the zero fields of c from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.MaxSolveSteps <= 0 {
		c.MaxSolveSteps = d.MaxSolveSteps
	}
	if c.MaxSearchDepth <= 0 {
		c.MaxSearchDepth = d.MaxSearchDepth
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = d.Cache.Size
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = d.Cache.TTL
	}
	if c.Pools == nil {
		c.Pools = d.Pools
	}
	return c
}

// Result is the outcome of one problem: the simplification of an
// expression or the solution of an equation.
type Result struct {
	Input     string       `json:"input"`
	Kind      string       `json:"kind"`
	Final     string       `json:"final,omitempty"`
	Result    string       `json:"result,omitempty"`
	Solutions []string     `json:"solutions,omitempty"`
	Steps     []StepRecord `json:"steps,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// Problem kinds.
const (
	KindSimplify = "simplify"
	KindSolve    = "solve"
)

type StepRecord struct {
	ID         string `json:"id"`
	ChangeType string `json:"changeType"`
	From       string `json:"from"`
	To         string `json:"to"`
}
