package rules

import (
	"regexp"
	"strings"
)

// ChangeType tags the rewrite that produced a step. A tag may carry a
// __CASE_n suffix to tell apart variants of the same rewrite.
type ChangeType string

var caseSuffix = regexp.MustCompile(`__CASE_\d+$`)

// Root returns the tag without its case suffix.
func (c ChangeType) Root() ChangeType {
	return ChangeType(caseSuffix.ReplaceAllString(string(c), ""))
}

func (c ChangeType) String() string {
	return string(c)
}

// change types produced outside the rule pools
const (
	NoChange                  ChangeType = "NO_CHANGE"
	SwapSides                 ChangeType = "SWAP_SIDES"
	QuadraticFormula          ChangeType = "QUADRATIC_FORMULA"
	FactorSymbol              ChangeType = "FACTOR_SYMBOL"
	SplitZeroProduct          ChangeType = "SPLIT_ZERO_PRODUCT"
	TakeEvenRoot              ChangeType = "TAKE_EVEN_ROOT_BOTH_SIDES"
	StatementIsTrue           ChangeType = "STATEMENT_IS_TRUE"
	StatementIsFalse          ChangeType = "STATEMENT_IS_FALSE"
	FindRoots                 ChangeType = "FIND_ROOTS"
	CrossMultiply             ChangeType = "CROSS_MULTIPLY"
	SimplifyLeftSide          ChangeType = "SIMPLIFY_LEFT_SIDE"
	SimplifyRightSide         ChangeType = "SIMPLIFY_RIGHT_SIDE"
	SimplifyArithmeticAdd     ChangeType = "SIMPLIFY_ARITHMETIC__ADD"
	SimplifyArithmeticSub     ChangeType = "SIMPLIFY_ARITHMETIC__SUBTRACT"
	SimplifyArithmeticMul     ChangeType = "SIMPLIFY_ARITHMETIC__MULTIPLY"
	SimplifyArithmeticDiv     ChangeType = "SIMPLIFY_ARITHMETIC__DIVIDE"
	SimplifyArithmeticPow     ChangeType = "SIMPLIFY_ARITHMETIC__POWER"
	CollectLikeTerms          ChangeType = "COLLECT_LIKE_TERMS"
	Distribute                ChangeType = "DISTRIBUTE"
	AddToBothSides            ChangeType = "ADD_TO_BOTH_SIDES"
	SubtractFromBothSides     ChangeType = "SUBTRACT_FROM_BOTH_SIDES"
	MultiplyBothSides         ChangeType = "MULTIPLY_BOTH_SIDES"
	DivideBothSides           ChangeType = "DIVIDE_BOTH_SIDES"
	MultiplyByNegativeOne     ChangeType = "MULTIPLY_BOTH_SIDES_BY_NEGATIVE_ONE"
	MultiplyByDenominator     ChangeType = "MULTIPLY_BOTH_SIDES_BY_DENOMINATOR"
	TakeRootBothSides         ChangeType = "TAKE_ROOT_BOTH_SIDES"
	SquareBothSides           ChangeType = "SQUARE_BOTH_SIDES"
	Unknown                   ChangeType = "UNKNOWN"
	ValidStepOffPath          ChangeType = "VALID_STEP_OFF_PATH"
	SubtractedOneTooMany      ChangeType = "SUBTRACTED_ONE_TOO_MANY"
	AddedInsteadOfSubtracted  ChangeType = "ADDED_INSTEAD_OF_SUBTRACTED"
	PemdasAddBeforeMultiply   ChangeType = "PEMDAS__ADD_BEFORE_MULTIPLY"
	PemdasAddBeforeDivide     ChangeType = "PEMDAS__ADD_BEFORE_DIVIDE"
	PemdasSubBeforeMultiply   ChangeType = "PEMDAS__SUBTRACT_BEFORE_MULTIPLY"
	PemdasSubBeforeDivide     ChangeType = "PEMDAS__SUBTRACT_BEFORE_DIVIDE"
	PemdasMultiplyBeforePower ChangeType = "PEMDAS__MULTIPLY_BEFORE_POWER"
	PemdasDivideBeforePower   ChangeType = "PEMDAS__DIVIDE_BEFORE_POWER"
	PemdasDivideLeftToRight   ChangeType = "PEMDAS__DIVIDE_LEFT_TO_RIGHT"
	PemdasSubtractLeftToRight ChangeType = "PEMDAS__SUBTRACT_LEFT_TO_RIGHT"
)

// Group names a category of rewrites.
type Group string

const (
	AdditionRules       Group = "AdditionRules"
	SubtractionRules    Group = "SubtractionRules"
	MultiplicationRules Group = "MultiplicationRules"
	DivisionRules       Group = "DivisionRules"
	FractionRules       Group = "FractionRules"
	ExponentRules       Group = "ExponentRules"
	RootRules           Group = "RootRules"
	SignRules           Group = "SignRules"
	IdentityRules       Group = "IdentityRules"
	DistributionRules   Group = "DistributionRules"
	LikeTermRules       Group = "LikeTermRules"
	EquationRules       Group = "EquationRules"
	SolutionRules       Group = "SolutionRules"
	MistakeRules        Group = "MistakeRules"
	OtherRules          Group = "OtherRules"
)

var changeTypeGroups = map[ChangeType][]Group{
	SimplifyArithmeticAdd:                {AdditionRules},
	SimplifyArithmeticSub:                {SubtractionRules},
	SimplifyArithmeticMul:                {MultiplicationRules},
	SimplifyArithmeticDiv:                {DivisionRules},
	SimplifyArithmeticPow:                {ExponentRules},
	"SIMPLIFY_FRACTION":                  {FractionRules, DivisionRules},
	"REMOVE_ADDING_ZERO":                 {AdditionRules, IdentityRules},
	"REMOVE_SUBTRACTING_ZERO":            {SubtractionRules, IdentityRules},
	"REMOVE_MULTIPLYING_BY_ONE":          {MultiplicationRules, IdentityRules},
	"REMOVE_MULTIPLYING_BY_NEGATIVE_ONE": {MultiplicationRules, SignRules},
	"MULTIPLY_BY_ZERO":                   {MultiplicationRules, IdentityRules},
	"REMOVE_DIVIDING_BY_ONE":             {DivisionRules, IdentityRules},
	"ZERO_DIVIDED_BY_ANYTHING":           {DivisionRules, IdentityRules},
	"REMOVE_EXPONENT_BY_ONE":             {ExponentRules, IdentityRules},
	"REDUCE_EXPONENT_BY_ZERO":            {ExponentRules, IdentityRules},
	"REMOVE_EXPONENT_BASE_ONE":           {ExponentRules, IdentityRules},
	"CANCEL_TERMS":                       {IdentityRules},
	"RESOLVE_DOUBLE_MINUS":               {SignRules},
	"MULTIPLY_NEGATIVES":                 {SignRules, MultiplicationRules},
	"SIMPLIFY_SIGNS":                     {SignRules},
	"CANCEL_MINUSES":                     {SignRules, DivisionRules},
	CollectLikeTerms:                     {LikeTermRules, AdditionRules},
	"ADD_EXPONENT_OF_ONE":                {ExponentRules, MultiplicationRules},
	"ADD_EXPONENTS":                      {ExponentRules, MultiplicationRules},
	"MULTIPLY_EXPONENTS":                 {ExponentRules},
	Distribute:                           {DistributionRules, MultiplicationRules},
	"DISTRIBUTE_NEGATIVE_ONE":            {DistributionRules, SignRules},
	"ADD_FRACTIONS":                      {FractionRules, AdditionRules},
	"COMMON_DENOMINATOR":                 {FractionRules},
	"CONVERT_INTEGER_TO_FRACTION":        {FractionRules},
	"MULTIPLY_FRACTIONS":                 {FractionRules, MultiplicationRules},
	"SIMPLIFY_DIVISION":                  {FractionRules, DivisionRules},
	"MULTIPLY_BY_INVERSE":                {FractionRules, DivisionRules},
	"SIMPLIFY_ARITHMETIC__SQRT":          {RootRules},
	"SIMPLIFY_ARITHMETIC__NTH_ROOT":      {RootRules},
	"SIMPLIFY_ARITHMETIC__ABS":           {SignRules},
	AddToBothSides:                       {EquationRules, AdditionRules},
	SubtractFromBothSides:                {EquationRules, SubtractionRules},
	MultiplyBothSides:                    {EquationRules, MultiplicationRules},
	DivideBothSides:                      {EquationRules, DivisionRules},
	MultiplyByNegativeOne:                {EquationRules, SignRules},
	MultiplyByDenominator:                {EquationRules, FractionRules},
	CrossMultiply:                        {EquationRules, FractionRules},
	TakeRootBothSides:                    {EquationRules, RootRules},
	TakeEvenRoot:                         {EquationRules, RootRules},
	SquareBothSides:                      {EquationRules, ExponentRules},
	"RAISE_BOTH_SIDES_TO_POWER":          {EquationRules, ExponentRules},
	SwapSides:                            {EquationRules},
	SimplifyLeftSide:                     {EquationRules},
	SimplifyRightSide:                    {EquationRules},
	QuadraticFormula:                     {SolutionRules},
	FactorSymbol:                         {SolutionRules},
	SplitZeroProduct:                     {SolutionRules},
	FindRoots:                            {SolutionRules},
	StatementIsTrue:                      {SolutionRules},
	StatementIsFalse:                     {SolutionRules},
}

// keywordGroups resolves tags missing from the table by the words they
// contain, in order.
var keywordGroups = []struct {
	word  string
	group Group
}{
	{"PEMDAS", MistakeRules},
	{"INSTEAD", MistakeRules},
	{"ERROR", MistakeRules},
	{"TOO_MANY", MistakeRules},
	{"BOTH_SIDES", EquationRules},
	{"ADD", AdditionRules},
	{"SUBTRACT", SubtractionRules},
	{"MULTIPLY", MultiplicationRules},
	{"DIVIDE", DivisionRules},
	{"DIVISION", DivisionRules},
	{"FRACTION", FractionRules},
	{"DENOMINATOR", FractionRules},
	{"NUMERATOR", FractionRules},
	{"EXPONENT", ExponentRules},
	{"POWER", ExponentRules},
	{"ROOT", RootRules},
	{"SQRT", RootRules},
	{"MINUS", SignRules},
	{"NEGATIVE", SignRules},
	{"SIGN", SignRules},
	{"ZERO", IdentityRules},
	{"ONE", IdentityRules},
	{"DISTRIBUTE", DistributionRules},
	{"LIKE_TERMS", LikeTermRules},
}

// Groups returns the groups of a change type: first by exact lookup of its
// root, then by keyword, and OtherRules when nothing matches. The result
// is never empty.
func Groups(c ChangeType) []Group {
	root := c.Root()
	if groups, ok := changeTypeGroups[root]; ok {
		return append([]Group(nil), groups...)
	}
	var groups []Group
	seen := make(map[Group]bool)
	words := "_" + string(root) + "_"
	for _, kw := range keywordGroups {
		if strings.Contains(words, "_"+kw.word+"_") && !seen[kw.group] {
			seen[kw.group] = true
			groups = append(groups, kw.group)
		}
	}
	if len(groups) == 0 {
		return []Group{OtherRules}
	}
	return groups
}

// InGroup reports whether c belongs to g.
func InGroup(c ChangeType, g Group) bool {
	for _, group := range Groups(c) {
		if group == g {
			return true
		}
	}
	return false
}

// HasExactGroup reports whether c resolves through the static table.
func HasExactGroup(c ChangeType) bool {
	_, ok := changeTypeGroups[c.Root()]
	return ok
}
