package equiv

import (
	"fmt"
	"math"

	"github.com/gnolang/mathsteps/internal/expr"
)

// VerificationResult represents the result of an equivalence check.
type VerificationResult int

const (
	_ VerificationResult = iota
	// Equivalent indicates both sides agree on every sampled point.
	Equivalent
	// NotEquivalent indicates a sampled point where the sides differ.
	NotEquivalent
	// Unknown indicates no point could be evaluated on both sides.
	Unknown
)

func (r VerificationResult) String() string {
	switch r {
	case Equivalent:
		return "Equivalent"
	case NotEquivalent:
		return "NotEquivalent"
	case Unknown:
		return "Unknown"
	default:
		return "?"
	}
}

// ReasonCode provides a reason for the verification result.
type ReasonCode int

const (
	ReasonNone ReasonCode = iota
	ReasonSameForm
	ReasonSameValues
	ReasonDifferentValue
	ReasonProportional
	ReasonNotProportional
	ReasonUndefined
)

func (r ReasonCode) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonSameForm:
		return "same canonical form"
	case ReasonSameValues:
		return "same value at every sample point"
	case ReasonDifferentValue:
		return "different value at a sample point"
	case ReasonProportional:
		return "sides differ by a constant factor"
	case ReasonNotProportional:
		return "sides are not proportional"
	case ReasonUndefined:
		return "undefined at every sample point"
	default:
		return "unknown"
	}
}

// VerificationReport provides detailed information about a check.
type VerificationReport struct {
	Result VerificationResult
	Reason ReasonCode
	Detail string
}

// Config controls numeric sampling.
type Config struct {
	Samples   int
	Tolerance float64
}

// DefaultConfig samples eight points with a relative tolerance of 1e-9.
var DefaultConfig = Config{Samples: 8, Tolerance: 1e-9}

// samplePoints avoid 0, 1 and -1 where many expressions degenerate.
var samplePoints = []float64{0.5, 1.7, -2.3, 3.1, -0.7, 2.9, 4.3, -3.7, 0.3, -1.9, 5.3}

// ReportCache stores reports by comparison key. The expirable LRU from
// golang-lru satisfies it.
type ReportCache interface {
	Get(key string) (VerificationReport, bool)
	Add(key string, report VerificationReport) bool
}

// Verifier checks expressions and equations for equivalence.
type Verifier struct {
	config Config
	cache  ReportCache
}

// NewVerifier creates a verifier with the given configuration.
func NewVerifier(config Config) *Verifier {
	if config.Samples <= 0 {
		config.Samples = DefaultConfig.Samples
	}
	if config.Tolerance <= 0 {
		config.Tolerance = DefaultConfig.Tolerance
	}
	return &Verifier{config: config}
}

// WithCache makes v remember reports in cache. A nil cache turns caching off.
func (v *Verifier) WithCache(cache ReportCache) *Verifier {
	v.cache = cache
	return v
}

var defaultVerifier = NewVerifier(DefaultConfig)

func (v *Verifier) cached(key string, check func() VerificationReport) VerificationReport {
	if v.cache == nil {
		return check()
	}
	if report, ok := v.cache.Get(key); ok {
		return report
	}
	report := check()
	v.cache.Add(key, report)
	return report
}

// Same reports whether a and b are identical up to reordering of sums and
// products and the placement of signs.
func Same(a, b *expr.Node) bool {
	return expr.CanonicalKey(a) == expr.CanonicalKey(b)
}

// SameEquation reports whether both sides are Same.
func SameEquation(a, b expr.Equation) bool {
	return Same(a.Left, b.Left) && Same(a.Right, b.Right)
}

// ExpressionsEquivalent reports whether a and b take the same values.
func ExpressionsEquivalent(a, b *expr.Node) bool {
	return defaultVerifier.Check(a, b).Result == Equivalent
}

// EquationsEquivalent reports whether two equations have proportional
// sides, so that one can be turned into the other by balanced operations.
func EquationsEquivalent(a, b expr.Equation) bool {
	return defaultVerifier.CheckEquations(a, b).Result == Equivalent
}

func (v *Verifier) env(symbols []string, k int) map[string]float64 {
	env := make(map[string]float64, len(symbols))
	for i, s := range symbols {
		env[s] = samplePoints[(k+3*i)%len(samplePoints)]
	}
	return env
}

func symbolsOf(nodes ...*expr.Node) []string {
	var out []string
	seen := make(map[string]bool)
	for _, n := range nodes {
		for _, s := range expr.Symbols(n) {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

func defined(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (v *Verifier) close(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= v.config.Tolerance*scale
}

// Check compares a and b numerically. Points where either side is
// undefined are skipped.
func (v *Verifier) Check(a, b *expr.Node) VerificationReport {
	ka, kb := expr.CanonicalKey(a), expr.CanonicalKey(b)
	if ka == kb {
		return VerificationReport{Result: Equivalent, Reason: ReasonSameForm}
	}
	return v.cached("e|"+ka+"|"+kb, func() VerificationReport { return v.check(a, b) })
}

func (v *Verifier) check(a, b *expr.Node) VerificationReport {
	symbols := symbolsOf(a, b)
	evaluated := 0
	for k := 0; k < v.config.Samples; k++ {
		env := v.env(symbols, k)
		fa, fb := expr.EvalFloat(a, env), expr.EvalFloat(b, env)
		if !defined(fa) || !defined(fb) {
			continue
		}
		evaluated++
		if !v.close(fa, fb) {
			return VerificationReport{
				Result: NotEquivalent,
				Reason: ReasonDifferentValue,
				Detail: fmt.Sprintf("%v vs %v at %v", fa, fb, env),
			}
		}
		if len(symbols) == 0 {
			break
		}
	}
	if evaluated == 0 {
		return VerificationReport{Result: Unknown, Reason: ReasonUndefined}
	}
	return VerificationReport{Result: Equivalent, Reason: ReasonSameValues}
}

// CheckEquations compares two equations by the ratio of their
// left-minus-right differences.
func (v *Verifier) CheckEquations(a, b expr.Equation) VerificationReport {
	if SameEquation(a, b) {
		return VerificationReport{Result: Equivalent, Reason: ReasonSameForm}
	}
	key := "q|" + expr.CanonicalKey(a.Left) + "=" + expr.CanonicalKey(a.Right) +
		"|" + expr.CanonicalKey(b.Left) + "=" + expr.CanonicalKey(b.Right)
	return v.cached(key, func() VerificationReport { return v.checkEquations(a, b) })
}

func (v *Verifier) checkEquations(a, b expr.Equation) VerificationReport {
	da := expr.Sub(a.Left, a.Right)
	db := expr.Sub(b.Left, b.Right)
	symbols := symbolsOf(da, db)

	ratio := math.NaN()
	evaluated := 0
	for k := 0; k < v.config.Samples; k++ {
		env := v.env(symbols, k)
		fa, fb := expr.EvalFloat(da, env), expr.EvalFloat(db, env)
		if !defined(fa) || !defined(fb) {
			continue
		}
		evaluated++
		za, zb := v.close(fa, 0), v.close(fb, 0)
		switch {
		case za && zb:
			continue
		case za != zb:
			return VerificationReport{
				Result: NotEquivalent,
				Reason: ReasonNotProportional,
				Detail: fmt.Sprintf("only one side vanishes at %v", env),
			}
		}
		r := fa / fb
		if math.IsNaN(ratio) {
			ratio = r
			continue
		}
		if !v.close(ratio, r) {
			return VerificationReport{
				Result: NotEquivalent,
				Reason: ReasonNotProportional,
				Detail: fmt.Sprintf("ratio %v vs %v at %v", ratio, r, env),
			}
		}
	}
	if evaluated == 0 {
		return VerificationReport{Result: Unknown, Reason: ReasonUndefined}
	}
	return VerificationReport{Result: Equivalent, Reason: ReasonProportional}
}
