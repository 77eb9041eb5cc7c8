package internal

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/gnolang/mathsteps/internal/assess"
	"github.com/gnolang/mathsteps/internal/equiv"
	"github.com/gnolang/mathsteps/internal/expr"
	"github.com/gnolang/mathsteps/internal/rules"
	"github.com/gnolang/mathsteps/internal/search"
	"github.com/gnolang/mathsteps/internal/session"
	"github.com/gnolang/mathsteps/internal/solver"
	"github.com/gnolang/mathsteps/internal/types"
)

// Engine wires the rule pools, the searcher, the solver and the assessor
// behind one configuration. It is safe for concurrent use.
type Engine struct {
	logger   *zap.Logger
	config   types.Config
	cache    *Cache
	searcher *search.Searcher
	solver   *solver.Solver
	assessor *assess.Assessor
	verifier *equiv.Verifier
}

// NewEngine builds an engine from config. A nil logger discards logs.
func NewEngine(logger *zap.Logger, config types.Config) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	config = config.WithDefaults()

	set, err := rules.Builtin()
	if err != nil {
		return nil, fmt.Errorf("error loading rule pools: %w", err)
	}
	if err := applyRules(set, config); err != nil {
		return nil, err
	}

	searcher := search.New(set)
	e := &Engine{
		logger:   logger,
		config:   config,
		cache:    NewCache(config.Cache.Size, config.Cache.TTL),
		searcher: searcher,
		solver:   solver.New(searcher, config.MaxSolveSteps),
		assessor: assess.New(searcher),
		verifier: equiv.NewVerifier(equiv.DefaultConfig),
	}
	if config.Cache.Size > 0 {
		e.verifier.WithCache(expirable.NewLRU[string, equiv.VerificationReport](config.Cache.Size, nil, config.Cache.TTL))
	}
	logger.Debug("engine ready",
		zap.String("name", config.Name),
		zap.Strings("pools", set.Names()),
		zap.Int("cacheSize", config.Cache.Size))
	return e, nil
}

// applyRules overrides pools from the rules file and turns off the
// disabled ones.
func applyRules(set *rules.Set, config types.Config) error {
	if path := config.RulesFile; path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("error accessing rules file: %w", err)
		}
		if info.IsDir() {
			err = set.Override(path)
		} else {
			err = set.OverrideFile(path)
		}
		if err != nil {
			return fmt.Errorf("error loading rules file: %w", err)
		}
	}
	for name, pool := range config.Pools {
		if !pool.Disabled {
			continue
		}
		if err := set.Disable(name); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) Config() types.Config {
	return e.config
}

func (e *Engine) Cache() *Cache {
	return e.cache
}

// Options lists every step that applies to an expression.
func (e *Engine) Options(input string) ([]search.Step, error) {
	n, err := e.cache.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("error parsing expression: %w", err)
	}
	return e.searcher.FindAllNextStepOptions(n, search.Context{}), nil
}

// Simplify takes the first step repeatedly and returns the final
// expression with the steps taken.
func (e *Engine) Simplify(input string) (*expr.Node, []search.Step, error) {
	n, err := e.cache.Parse(input)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing expression: %w", err)
	}
	final, steps, err := e.searcher.Simplify(n, e.config.MaxSearchDepth)
	if err != nil {
		e.logger.Warn("simplification stopped", zap.String("expr", input), zap.Int("steps", len(steps)), zap.Error(err))
		return final, steps, err
	}
	e.logger.Debug("simplified", zap.String("expr", input), zap.Int("steps", len(steps)))
	return final, steps, nil
}

// Solve solves an equation for unknown, or for its first symbol when
// unknown is empty. Steps taken before a failure are kept on the
// returned equation.
func (e *Engine) Solve(input, unknown string) (*solver.Equation, error) {
	value, err := e.cache.ParseEquation(input)
	if err != nil {
		return nil, fmt.Errorf("error parsing equation: %w", err)
	}
	eq := solver.FromValue(value, unknown)
	if err := e.solver.Solve(eq); err != nil {
		e.logger.Warn("solve failed", zap.String("equation", input), zap.Int("steps", len(eq.Steps)), zap.Error(err))
		return eq, err
	}
	if !eq.IsSolved() {
		e.logger.Info("no rule applies", zap.String("equation", input), zap.String("final", eq.String()))
		return eq, nil
	}
	e.logger.Debug("solved",
		zap.String("equation", input),
		zap.Int("steps", len(eq.Steps)),
		zap.String("result", eq.Result()))
	return eq, nil
}

// Assess classifies a learner's step.
func (e *Engine) Assess(from, to string) (assess.AssessedStep, error) {
	out, err := e.assessor.AssessUserStep(from, to)
	if err != nil {
		return out, err
	}
	e.logger.Debug("assessed",
		zap.String("from", from),
		zap.String("to", to),
		zap.Bool("valid", out.IsValid),
		zap.String("mistake", string(out.MistakenChangeType)))
	return out, nil
}

// Compare checks whether two expressions, or two equations, are
// equivalent. Mixing an expression with an equation is an error.
func (e *Engine) Compare(a, b string) (equiv.VerificationReport, error) {
	if expr.IsEquation(a) != expr.IsEquation(b) {
		return equiv.VerificationReport{}, assess.ErrMixedInput
	}
	if expr.IsEquation(a) {
		ea, err := e.cache.ParseEquation(a)
		if err != nil {
			return equiv.VerificationReport{}, err
		}
		eb, err := e.cache.ParseEquation(b)
		if err != nil {
			return equiv.VerificationReport{}, err
		}
		return e.verifier.CheckEquations(ea, eb), nil
	}
	na, err := e.cache.Parse(a)
	if err != nil {
		return equiv.VerificationReport{}, err
	}
	nb, err := e.cache.Parse(b)
	if err != nil {
		return equiv.VerificationReport{}, err
	}
	return e.verifier.Check(na, nb), nil
}

// Session starts an interactive session on an equation.
func (e *Engine) Session(input string) (*session.Commander, error) {
	return session.New(input, e.searcher, e.solver)
}

// Run solves one problem: equations are solved, anything else is
// simplified. Failures are reported in the result and returned.
func (e *Engine) Run(ctx context.Context, problem string) (types.Result, error) {
	problem = strings.TrimSpace(problem)
	res := types.Result{Input: problem, Kind: types.KindSimplify}
	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res, err
	}

	if expr.IsEquation(problem) {
		res.Kind = types.KindSolve
		eq, err := e.Solve(problem, "")
		if eq != nil {
			for _, st := range eq.Steps {
				res.Steps = append(res.Steps, types.StepRecord{
					ID:         st.StepID,
					ChangeType: string(st.ChangeType),
					From:       st.From.String(),
					To:         st.To.String(),
				})
			}
		}
		if err != nil {
			res.Error = err.Error()
			return res, err
		}
		res.Final = eq.String()
		res.Result = eq.Result()
		for _, s := range eq.Solutions {
			res.Solutions = append(res.Solutions, expr.String(s))
		}
		return res, nil
	}

	final, steps, err := e.Simplify(problem)
	for i, st := range steps {
		res.Steps = append(res.Steps, types.StepRecord{
			ID:         strconv.Itoa(i + 1),
			ChangeType: string(st.ChangeType),
			From:       expr.String(st.From),
			To:         expr.String(st.To),
		})
	}
	if final != nil {
		res.Final = expr.String(final)
		res.Result = res.Final
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res, err
}
