package filter

import (
	"maps"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog"

	"github.com/s0up4200/prtgctl/models"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	logger     zerolog.Logger
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCustomFunctions adds custom helper functions. The compiler then keeps
// its own program cache.
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
		c.programs = newLRUCache[*vm.Program](defaultCacheSize)
	}
}

// WithLogger reports evaluation errors at debug level.
func WithLogger(logger zerolog.Logger) ExprCompilerOption {
	return func(c *exprCompiler) {
		c.logger = logger
	}
}

// sharedPrograms caches programs for every compiler using the default
// helper functions.
var sharedPrograms = newLRUCache[*vm.Program](defaultCacheSize)

// NewExprCompiler creates a new expr-based filter compiler. Compiled
// programs are cached by expression and shared between compilers.
func NewExprCompiler(opts ...ExprCompilerOption) Compiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
		logger:      zerolog.Nop(),
		programs:    sharedPrograms,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type exprCompiler struct {
	helperFuncs map[string]any
	logger      zerolog.Logger
	programs    *lruCache[*vm.Program]
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
			Position:   -1,
		}
	}

	program, ok := c.programs.Get(expression)
	if !ok {
		// object fields are only known at evaluation time
		compiled, err := expr.Compile(expression,
			expr.Env(c.helperFuncs),
			expr.AllowUndefinedVariables(),
			expr.AsBool(),
		)
		if err != nil {
			return nil, compilationError(expression, "failed to compile expression", err)
		}
		c.programs.Put(expression, compiled)
		program = compiled
	}

	return &exprFilter{
		expression: expression,
		program:    program,
		logger:     c.logger,
	}, nil
}

// Evaluate runs the expression against the entity's fields. Runtime errors
// count as no match.
func (f *exprFilter) Evaluate(e models.Entity) bool {
	env := createRuntimeEnvironment(e)

	result, err := expr.Run(f.program, env)
	if err != nil {
		f.logger.Debug().Err(err).Str("expression", f.expression).Str("objid", e.Object().ObjID).
			Msg("Filter expression failed, skipping object")
		return false
	}

	return result.(bool)
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 16)
	addHelperFunctions(funcs)
	return funcs
}

func addHelperFunctions(env map[string]any) {
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	// placeholders so compilation knows the tag helpers exist
	env["hasTag"] = func(string) bool { return false }
	env["hasAnyTag"] = func(...string) bool { return false }
}

func createRuntimeEnvironment(e models.Entity) map[string]any {
	env := e.Fields()
	addHelperFunctions(env)

	tags := e.Object().Tags
	hasTag := func(tag string) bool {
		for _, t := range tags {
			if strings.EqualFold(t, tag) {
				return true
			}
		}
		return false
	}
	env["hasTag"] = hasTag
	env["hasAnyTag"] = func(want ...string) bool {
		for _, w := range want {
			if hasTag(w) {
				return true
			}
		}
		return false
	}
	return env
}
