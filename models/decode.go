package models

import (
	"fmt"
	"maps"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/s0up4200/prtgctl/status"
)

// Decoder turns raw records into entities.
type Decoder struct {
	codec *status.Codec
}

// NewDecoder creates a decoder that resolves statuses through codec.
func NewDecoder(codec *status.Codec) *Decoder {
	return &Decoder{codec: codec}
}

// New returns an empty entity for the content type.
func New(content ContentType) (Entity, error) {
	switch content {
	case Devices:
		return &Device{}, nil
	case Sensors:
		return &Sensor{}, nil
	case Groups:
		return &Group{}, nil
	case Probes:
		return &Probe{}, nil
	}
	return nil, fmt.Errorf("no model for content type %q", content)
}

// Decode converts one record.
func (d *Decoder) Decode(content ContentType, rec Record) (Entity, error) {
	entity, err := New(content)
	if err != nil {
		return nil, err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       tagsHook,
		WeaklyTypedInput: true,
		Result:           entity,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(rec)); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", content.Singular(), rec.ID(), err)
	}

	entity.normalize(d.codec)
	return entity, nil
}

// Normalize returns copies of recs with the decoded values written back:
// priorities are clamped to 1..5 and unknown status codes are flagged with
// status_unrecognized. A record that cannot be decoded is kept as it is.
func (d *Decoder) Normalize(content ContentType, recs []Record) []Record {
	out := make([]Record, 0, len(recs))
	for _, rec := range recs {
		e, err := d.Decode(content, rec)
		if err != nil {
			out = append(out, rec)
			continue
		}
		norm := maps.Clone(rec)
		e.annotate(norm)
		out = append(out, norm)
	}
	return out
}

// tagsHook splits the space separated tags string into a slice.
func tagsHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
		return data, nil
	}
	return strings.Fields(reflect.ValueOf(data).String()), nil
}
