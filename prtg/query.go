package prtg

import (
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/prtgctl/apierr"
	"github.com/s0up4200/prtgctl/filter"
	"github.com/s0up4200/prtgctl/models"
	"github.com/s0up4200/prtgctl/status"
)

const tableEndpoint = "api/table.json"

var filterKey = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Query describes one table request.
type Query struct {
	Content  models.ContentType
	Columns  []string
	Statuses []status.Status
	Tags     []string
	ParentID string
	ObjID    string
	Priority status.Priority // 0 means any
	// Filters are sent as filter_<key>=<value>.
	Filters map[string]string

	// NameFilter is a regular expression applied to names after the
	// response arrives. The API has no equivalent.
	NameFilter string
	// Where is an expression evaluated against each decoded object.
	Where string

	Count *int // nil requests every row
	Start *int
}

// PostFilter decides on the client whether a record is kept.
type PostFilter func(models.Record) bool

// Request is a built table request.
type Request struct {
	Endpoint string
	Params   url.Values
	Columns  []string
	// Filter is nil when nothing needs checking on the client.
	Filter PostFilter
}

// Apply returns the records the filter keeps, in order.
func (r *Request) Apply(recs []models.Record) []models.Record {
	if r.Filter == nil {
		return recs
	}
	kept := recs[:0:0]
	for _, rec := range recs {
		if r.Filter(rec) {
			kept = append(kept, rec)
		}
	}
	return kept
}

// RequestBuilder turns queries into wire parameters.
type RequestBuilder struct {
	codec    *status.Codec
	decoder  *models.Decoder
	compiler filter.Compiler
	logger   zerolog.Logger
}

// NewRequestBuilder creates a builder encoding statuses through codec.
func NewRequestBuilder(codec *status.Codec, logger zerolog.Logger) *RequestBuilder {
	return &RequestBuilder{
		codec:    codec,
		decoder:  models.NewDecoder(codec),
		compiler: filter.NewExprCompiler(filter.WithLogger(logger)),
		logger:   logger,
	}
}

// Build validates q and produces the request.
func (b *RequestBuilder) Build(q Query) (*Request, error) {
	if _, err := models.ParseContentType(string(q.Content)); err != nil || q.Content == "" {
		return nil, apierr.New(apierr.Validation, "unknown content type %q", q.Content)
	}

	columns := orderedSet(q.Columns)
	if len(columns) == 0 {
		columns = q.Content.DefaultColumns()
	}

	params := url.Values{}
	params.Set("content", string(q.Content))

	for _, s := range q.Statuses {
		params.Add("filter_status", b.codec.EncodeString(s))
	}

	for _, tag := range q.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || strings.ContainsAny(tag, "()") {
			return nil, apierr.New(apierr.Validation, "invalid tag %q", tag)
		}
		params.Add("filter_tags", "@tag("+tag+")")
	}

	if q.ParentID != "" {
		params.Set("filter_parentid", q.ParentID)
	}
	if q.ObjID != "" {
		params.Set("filter_objid", q.ObjID)
	}
	if q.Priority != 0 {
		if q.Priority < status.MinPriority || q.Priority > status.MaxPriority {
			return nil, apierr.New(apierr.Validation, "invalid priority %d (must be from 1 to 5)", q.Priority)
		}
		params.Set("filter_priority", q.Priority.String())
	}

	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		name := strings.TrimPrefix(strings.ToLower(k), "filter_")
		if !filterKey.MatchString(name) {
			return nil, apierr.New(apierr.Validation, "invalid filter key %q", k)
		}
		params.Add("filter_"+name, q.Filters[k])
	}

	if q.Count == nil {
		params.Set("count", "*")
	} else if *q.Count <= 0 {
		return nil, apierr.New(apierr.Validation, "count must be positive, got %d", *q.Count)
	} else {
		params.Set("count", strconv.Itoa(*q.Count))
	}
	if q.Start != nil {
		if *q.Start < 0 {
			return nil, apierr.New(apierr.Validation, "start must not be negative, got %d", *q.Start)
		}
		params.Set("start", strconv.Itoa(*q.Start))
	}

	var filters filter.All
	if q.NameFilter != "" {
		nf, err := filter.NewNameFilter(q.NameFilter)
		if err != nil {
			return nil, apierr.Wrap(apierr.Validation, err, "invalid --filter")
		}
		filters = append(filters, nf)
		columns = appendMissing(columns, "name")
	}
	// several tags on the wire match any of them; require all of them here
	if len(q.Tags) > 1 {
		filters = append(filters, filter.TagFilter{Tags: q.Tags})
		columns = appendMissing(columns, "tags")
	}
	if strings.TrimSpace(q.Where) != "" {
		ef, err := b.compiler.Compile(q.Where)
		if err != nil {
			return nil, apierr.Wrap(apierr.Validation, err, "invalid --where")
		}
		filters = append(filters, ef)
	}

	params.Set("columns", strings.Join(columns, ","))

	req := &Request{Endpoint: tableEndpoint, Params: params, Columns: columns}
	if len(filters) > 0 {
		req.Filter = b.postFilter(q.Content, filters)
	}
	return req, nil
}

func (b *RequestBuilder) postFilter(content models.ContentType, filters filter.All) PostFilter {
	return func(rec models.Record) bool {
		e, err := b.decoder.Decode(content, rec)
		if err != nil {
			b.logger.Debug().Err(err).Str("objid", rec.ID()).Msg("Skipping record that could not be decoded")
			return false
		}
		return filters.Evaluate(e)
	}
}

// orderedSet drops blanks and duplicates, keeping first occurrences.
func orderedSet(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}

func appendMissing(columns []string, col string) []string {
	if slices.Contains(columns, col) {
		return columns
	}
	return append(slices.Clone(columns), col)
}
