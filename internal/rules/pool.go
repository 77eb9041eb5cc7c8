package rules

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Pool names.
const (
	PoolSimplify = "simplify"
	PoolLinear   = "linear"
	PoolFunction = "function"
	PoolCross    = "cross"
	PoolBalance  = "balance"
)

var ErrUnknownPool = errors.New("unknown rule pool")

//go:embed pools/*.yaml
var builtinPools embed.FS

// PoolFile is the on-disk layout of a rule pool.
type PoolFile struct {
	Name  string     `yaml:"name"`
	Rules []RuleSpec `yaml:"rules"`
}

// Pool is an ordered list of rules. Earlier rules win ties.
type Pool struct {
	Name  string
	Rules []*Rule
}

// Load reads a pool file from disk.
func Load(path string) (*Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse compiles a pool from its YAML encoding.
func Parse(data []byte) (*Pool, error) {
	var file PoolFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if file.Name == "" {
		return nil, errors.New("pool file without a name")
	}
	pool := &Pool{Name: file.Name}
	for _, spec := range file.Rules {
		r, err := Compile(spec)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", file.Name, err)
		}
		pool.Rules = append(pool.Rules, r)
	}
	return pool, nil
}

// Set holds the rule pools used by the engine.
type Set struct {
	pools    map[string]*Pool
	disabled map[string]bool
}

// Builtin returns the pools shipped with the module.
func Builtin() (*Set, error) {
	entries, err := builtinPools.ReadDir("pools")
	if err != nil {
		return nil, err
	}
	s := &Set{pools: make(map[string]*Pool), disabled: make(map[string]bool)}
	for _, entry := range entries {
		data, err := builtinPools.ReadFile("pools/" + entry.Name())
		if err != nil {
			return nil, err
		}
		pool, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		s.pools[pool.Name] = pool
	}
	return s, nil
}

// MustBuiltin is like Builtin but panics on error. The embedded pools are
// covered by tests, so a failure here is a programming error.
func MustBuiltin() *Set {
	s, err := Builtin()
	if err != nil {
		panic(err)
	}
	return s
}

// Override replaces pools with the *.yaml files found in dir.
func (s *Set) Override(dir string) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := s.OverrideFile(path); err != nil {
			return err
		}
	}
	return nil
}

// OverrideFile replaces the pool named in the yaml file at path.
func (s *Set) OverrideFile(path string) error {
	pool, err := Load(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if _, ok := s.pools[pool.Name]; !ok {
		return fmt.Errorf("%s: %w: %s", path, ErrUnknownPool, pool.Name)
	}
	s.pools[pool.Name] = pool
	return nil
}

// Disable turns a pool off. A disabled pool matches nothing.
func (s *Set) Disable(name string) error {
	if _, ok := s.pools[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPool, name)
	}
	s.disabled[name] = true
	return nil
}

// Pool returns the named pool, or an empty pool when it is disabled.
func (s *Set) Pool(name string) *Pool {
	p, ok := s.pools[name]
	if !ok || s.disabled[name] {
		return &Pool{Name: name}
	}
	return p
}

// Names lists the known pools in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.pools))
	for name := range s.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
