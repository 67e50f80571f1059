package status

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/prtgctl/apierr"
)

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec(zerolog.Nop())

	for _, s := range All {
		t.Run(s.String(), func(t *testing.T) {
			assert.Equal(t, s, codec.Decode(codec.Encode(s)))
			assert.Equal(t, s, codec.Decode(codec.EncodeString(s)))
		})
	}
}

func TestCodecRawCodesAreDistinct(t *testing.T) {
	seen := map[int]Status{}
	for _, s := range All {
		code := s.RawCode()
		prev, dup := seen[code]
		require.False(t, dup, "%v and %v share raw code %d", prev, s, code)
		seen[code] = s
	}
	assert.Equal(t, 3, Up.RawCode())
	assert.Equal(t, 5, Down.RawCode())
	assert.Equal(t, 4, Warning.RawCode())
	assert.Equal(t, 7, Paused.RawCode())
	assert.Equal(t, 10, Unusual.RawCode())
	assert.Equal(t, 1, Unknown.RawCode())
}

func TestCodecDecode(t *testing.T) {
	codec := NewCodec(zerolog.Nop())

	tests := []struct {
		name string
		raw  any
		want Status
		ok   bool
	}{
		{name: "int", raw: 3, want: Up, ok: true},
		{name: "float from json", raw: float64(5), want: Down, ok: true},
		{name: "json number", raw: json.Number("4"), want: Warning, ok: true},
		{name: "string", raw: "7", want: Paused, ok: true},
		{name: "padded string", raw: " 10 ", want: Unusual, ok: true},
		{name: "unmapped code", raw: 13, want: Unknown, ok: false},
		{name: "garbage", raw: "Up", want: Unknown, ok: false},
		{name: "fractional", raw: 3.5, want: Unknown, ok: false},
		{name: "nil", raw: nil, want: Unknown, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codec.Decode(tt.raw))
			_, ok := Lookup(tt.raw)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestParse(t *testing.T) {
	s, err := Parse("DOWN")
	require.NoError(t, err)
	assert.Equal(t, Down, s)

	_, err = Parse("sideways")
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.Validation))
	assert.Contains(t, err.Error(), "sideways")

	list, err := ParseList([]string{"up", "warning"})
	require.NoError(t, err)
	assert.Equal(t, []Status{Up, Warning}, list)
}

func TestStatusText(t *testing.T) {
	b, err := json.Marshal(struct {
		S Status `json:"s"`
	}{S: Unusual})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"unusual"}`, string(b))
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		value   string
		want    Priority
		wantErr bool
	}{
		{value: "1", want: 1},
		{value: "5", want: 5},
		{value: " 3 ", want: 3},
		{value: "0", wantErr: true},
		{value: "6", wantErr: true},
		{value: "high", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParsePriority(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apierr.Is(err, apierr.Validation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodePriority(t *testing.T) {
	assert.Equal(t, Priority(3), DecodePriority(3))
	assert.Equal(t, Priority(5), DecodePriority(9))
	assert.Equal(t, Priority(1), DecodePriority(-2))
	assert.Equal(t, Priority(4), DecodePriority("****"))
	assert.Equal(t, Priority(2), DecodePriority(json.Number("2")))
	assert.Equal(t, Priority(0), DecodePriority("n/a"))
}
