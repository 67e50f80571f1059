package prtg

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/prtgctl/apierr"
	"github.com/s0up4200/prtgctl/models"
	"github.com/s0up4200/prtgctl/status"
)

func newBuilder() *RequestBuilder {
	return NewRequestBuilder(status.NewCodec(zerolog.Nop()), zerolog.Nop())
}

func intPtr(n int) *int { return &n }

func TestBuildParams(t *testing.T) {
	req, err := newBuilder().Build(Query{
		Content:  models.Sensors,
		Columns:  []string{"objid", "name", "objid", " status "},
		Statuses: []status.Status{status.Down, status.Warning},
		Tags:     []string{"pingsensor"},
		ParentID: "2001",
		Priority: 4,
		Filters:  map[string]string{"type": "ping"},
		Count:    intPtr(100),
		Start:    intPtr(200),
	})
	require.NoError(t, err)

	p := req.Params
	assert.Equal(t, "api/table.json", req.Endpoint)
	assert.Equal(t, "sensors", p.Get("content"))
	assert.Equal(t, "objid,name,status", p.Get("columns"))
	assert.Equal(t, []string{"5", "4"}, p["filter_status"])
	assert.Equal(t, []string{"@tag(pingsensor)"}, p["filter_tags"])
	assert.Equal(t, "2001", p.Get("filter_parentid"))
	assert.Equal(t, "4", p.Get("filter_priority"))
	assert.Equal(t, "ping", p.Get("filter_type"))
	assert.Equal(t, "100", p.Get("count"))
	assert.Equal(t, "200", p.Get("start"))
	assert.Nil(t, req.Filter)
}

func TestBuildDefaults(t *testing.T) {
	req, err := newBuilder().Build(Query{Content: models.Devices})
	require.NoError(t, err)

	assert.Equal(t, "*", req.Params.Get("count"))
	assert.False(t, req.Params.Has("start"))
	assert.Equal(t, strings.Join(models.Devices.DefaultColumns(), ","), req.Params.Get("columns"))
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name string
		q    Query
	}{
		{name: "unknown content", q: Query{Content: "channels"}},
		{name: "empty content", q: Query{}},
		{name: "zero count", q: Query{Content: models.Devices, Count: intPtr(0)}},
		{name: "negative start", q: Query{Content: models.Devices, Start: intPtr(-1)}},
		{name: "empty tag", q: Query{Content: models.Devices, Tags: []string{" "}}},
		{name: "tag with parenthesis", q: Query{Content: models.Devices, Tags: []string{"a)b"}}},
		{name: "bad regex", q: Query{Content: models.Devices, NameFilter: "("}},
		{name: "bad expression", q: Query{Content: models.Devices, Where: "Status =="}},
		{name: "bad filter key", q: Query{Content: models.Devices, Filters: map[string]string{"a b": "x"}}},
		{name: "priority out of range", q: Query{Content: models.Devices, Priority: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newBuilder().Build(tt.q)
			require.Error(t, err)
			assert.True(t, apierr.Is(err, apierr.Validation), "got %v", err)
		})
	}
}

func TestBuildNameFilterIsClientSide(t *testing.T) {
	req, err := newBuilder().Build(Query{Content: models.Devices, Columns: []string{"objid"}, NameFilter: "^core-"})
	require.NoError(t, err)

	for k := range req.Params {
		assert.NotContains(t, req.Params.Get(k), "core-", "regex leaked into %s", k)
	}
	assert.Equal(t, "objid,name", req.Params.Get("columns"))
	require.NotNil(t, req.Filter)

	recs := []models.Record{
		{"objid": "1", "name": "core-sw-01"},
		{"objid": "2", "name": "edge-rt-01"},
		{"objid": "3", "name": "CORE-sw-02"},
	}
	kept := req.Apply(recs)
	require.Len(t, kept, 2)
	assert.Equal(t, "1", kept[0].ID())
	assert.Equal(t, "3", kept[1].ID())
}

func TestBuildMultipleTagsAreAnded(t *testing.T) {
	req, err := newBuilder().Build(Query{Content: models.Devices, Columns: []string{"objid"}, Tags: []string{"core", "switch"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"@tag(core)", "@tag(switch)"}, req.Params["filter_tags"])
	assert.Equal(t, "objid,tags", req.Params.Get("columns"))

	kept := req.Apply([]models.Record{
		{"objid": "1", "tags": "core switch"},
		{"objid": "2", "tags": "core router"},
		{"objid": "3", "tags": "switch"},
	})
	require.Len(t, kept, 1)
	assert.Equal(t, "1", kept[0].ID())
}

func TestBuildWhere(t *testing.T) {
	req, err := newBuilder().Build(Query{Content: models.Sensors, Where: `Status == "down" and hasTag("wan")`})
	require.NoError(t, err)

	kept := req.Apply([]models.Record{
		{"objid": "1", "status_raw": 5, "tags": "wan"},
		{"objid": "2", "status_raw": 3, "tags": "wan"},
		{"objid": "3", "status_raw": 5, "tags": "lan"},
	})
	require.Len(t, kept, 1)
	assert.Equal(t, "1", kept[0].ID())
}
