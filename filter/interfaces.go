package filter

import "github.com/s0up4200/prtgctl/models"

// Filter decides whether an entity is kept.
type Filter interface {
	// Evaluate checks if an entity matches the filter criteria
	Evaluate(e models.Entity) bool
}

// CompiledFilter is a filter built from a user expression.
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}
