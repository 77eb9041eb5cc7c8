package stepper

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/mathsteps/internal"
	"github.com/gnolang/mathsteps/internal/types"
)

// DefaultConfigFile is read when no configuration path is given.
const DefaultConfigFile = ".mathsteps.yaml"

type StepEngine interface {
	Run(ctx context.Context, problem string) (types.Result, error)
}

// New builds an engine from the configuration file at configurationPath.
// A missing file means the default configuration.
func New(logger *zap.Logger, configurationPath string) (*internal.Engine, error) {
	config, err := LoadConfig(configurationPath)
	if err != nil {
		return nil, err
	}
	return internal.NewEngine(logger, config)
}

// LoadConfig reads a configuration file. The empty path stands for
// DefaultConfigFile.
func LoadConfig(configurationPath string) (types.Config, error) {
	if configurationPath == "" {
		configurationPath = DefaultConfigFile
	}
	config, err := parseConfigurationFile(configurationPath)
	if errors.Is(err, fs.ErrNotExist) {
		return types.DefaultConfig(), nil
	}
	if err != nil {
		return config, fmt.Errorf("error parsing config %s: %w", configurationPath, err)
	}
	return config.WithDefaults(), nil
}

func parseConfigurationFile(configurationPath string) (types.Config, error) {
	var config types.Config

	f, err := os.Open(configurationPath)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, err
	}
	return config, nil
}

var desiredExtensions = map[string]bool{
	".txt":  true,
	".math": true,
}

func hasDesiredExtension(path string) bool {
	return desiredExtensions[filepath.Ext(path)]
}

// ReadProblems collects one problem per line from the given files and
// from the problem files found under the given directories. Blank lines
// and lines starting with '#' are skipped.
func ReadProblems(paths []string) ([]string, error) {
	var problems []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		files := []string{path}
		if info.IsDir() {
			files = nil
			err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && hasDesiredExtension(p) {
					files = append(files, p)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("error walking %s: %w", path, err)
			}
		}
		for _, file := range files {
			lines, err := readLines(file)
			if err != nil {
				return nil, err
			}
			problems = append(problems, lines...)
		}
	}
	return problems, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	defer f.Close()
	return ParseProblems(f)
}

// ParseProblems reads one problem per line from r.
func ParseProblems(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

// Options tune ProcessProblems.
type Options struct {
	// Workers bounds the problems run at once. Zero means one per CPU.
	Workers int
	// Progress receives the progress bar. Nil hides it.
	Progress io.Writer
}

// ProcessProblems runs every problem on the engine and returns the
// results in input order. A failing problem is logged and reported in
// its result; only cancellation of ctx stops the batch.
func ProcessProblems(
	ctx context.Context,
	logger *zap.Logger,
	engine StepEngine,
	problems []string,
	opts Options,
) ([]types.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(len(problems),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription("problems"),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	results := make([]types.Result, len(problems))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, problem := range problems {
		i, problem := i, problem
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := engine.Run(ctx, problem)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if err != nil {
				logger.Error("Error processing problem", zap.Int("line", i+1), zap.String("problem", problem), zap.Error(err))
			}
			results[i] = res
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return results, nil
}
