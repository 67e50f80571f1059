package filter

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/prtgctl/models"
	"github.com/s0up4200/prtgctl/status"
)

func device(t *testing.T, rec models.Record) models.Entity {
	t.Helper()
	e, err := models.NewDecoder(status.NewCodec(zerolog.Nop())).Decode(models.Devices, rec)
	require.NoError(t, err)
	return e
}

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `hasTag("core")`,
		},
		{
			name:        "empty expression",
			expression:  "  ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `hasTag("unclosed`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `Status == "down" and Priority >= 4 and contains(Host, "10.0.")`,
		},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := compiler.Compile(tt.expression)
			if tt.wantErr {
				require.Error(t, err)
				var ce *CompilationError
				assert.True(t, errors.As(err, &ce))
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expression, f.Expression())
		})
	}
}

func TestExprFilterEvaluate(t *testing.T) {
	dev := device(t, models.Record{
		"objid":        "2001",
		"name":         "core-sw-01",
		"host":         "10.0.0.1",
		"status_raw":   "5",
		"priority_raw": "4",
		"tags":         "switch core",
	})

	tests := []struct {
		expression string
		want       bool
	}{
		{expression: `Status == "down"`, want: true},
		{expression: `Status == "up"`, want: false},
		{expression: `hasTag("CORE") and Priority > 3`, want: true},
		{expression: `hasAnyTag("wan", "switch")`, want: true},
		{expression: `startsWith(Name, "core") and endsWith(Host, ".1")`, want: true},
		{expression: `Name matches "^edge-"`, want: false},
		{expression: `UnknownField == 1`, want: false},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			f, err := compiler.Compile(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Evaluate(dev))
		})
	}
}

func TestNameAndTagFilters(t *testing.T) {
	dev := device(t, models.Record{"objid": "1", "name": "Core-SW-01", "tags": "switch core"})

	nf, err := NewNameFilter("^core-sw")
	require.NoError(t, err)
	assert.True(t, nf.Evaluate(dev))

	_, err = NewNameFilter("[unterminated")
	require.Error(t, err)

	assert.True(t, TagFilter{Tags: []string{"core", "switch"}}.Evaluate(dev))
	assert.False(t, TagFilter{Tags: []string{"core", "router"}}.Evaluate(dev))

	assert.True(t, All{}.Evaluate(dev))
	assert.False(t, All{nf, TagFilter{Tags: []string{"wan"}}}.Evaluate(dev))
}

func TestCompilerCachesPrograms(t *testing.T) {
	c := NewExprCompiler(WithCustomFunctions(map[string]any{"isCore": func(name string) bool { return name == "core" }})).(*exprCompiler)

	first, err := c.Compile(`Priority > 3`)
	require.NoError(t, err)
	second, err := c.Compile(` Priority > 3 `)
	require.NoError(t, err)

	assert.Same(t, first.(*exprFilter).program, second.(*exprFilter).program)
	assert.Equal(t, 1, c.programs.Len())

	_, err = c.Compile(`Priority >`)
	require.Error(t, err)
	assert.Equal(t, 1, c.programs.Len())
}

func TestCompilersSharePrograms(t *testing.T) {
	a := NewExprCompiler().(*exprCompiler)
	b := NewExprCompiler(WithLogger(zerolog.Nop())).(*exprCompiler)
	custom := NewExprCompiler(WithCustomFunctions(map[string]any{"always": func() bool { return true }})).(*exprCompiler)

	first, err := a.Compile(`Status == "down" && DownSens > 0`)
	require.NoError(t, err)
	second, err := b.Compile(`Status == "down" && DownSens > 0`)
	require.NoError(t, err)
	assert.Same(t, first.(*exprFilter).program, second.(*exprFilter).program)

	third, err := custom.Compile(`Status == "down" && DownSens > 0`)
	require.NoError(t, err)
	assert.NotSame(t, first.(*exprFilter).program, third.(*exprFilter).program)
}

func TestLRUCacheEvicts(t *testing.T) {
	c := newLRUCache[int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	_, _ = c.Get("a")
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}
