package prtg

import (
	"context"

	"github.com/s0up4200/prtgctl/apierr"
	"github.com/s0up4200/prtgctl/historic"
)

// HistoricResult is the body of a historic data request.
type HistoricResult struct {
	SensorID string
	Format   historic.Format
	Raw      []byte
	// Series is set for JSON requests.
	Series []historic.Sample
}

// Text returns the raw body.
func (r *HistoricResult) Text() string {
	return string(r.Raw)
}

// HistoricData fetches historic values for one sensor. The gate admits the
// request first. Requests are never retried because each attempt counts
// against the server's limit.
func (c *Client) HistoricData(ctx context.Context, p historic.WireParams) (*HistoricResult, error) {
	if err := c.gate.Admit(ctx); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, p.Endpoint(), p.Values())
	if err != nil {
		switch apierr.KindOf(err) {
		case apierr.NotFound:
			return nil, apierr.New(apierr.NotFound, "sensor not found").WithID(p.SensorID)
		case apierr.RateLimited:
			return nil, &apierr.Error{
				Kind:       apierr.RateLimited,
				Message:    "historic data rate limit exceeded on the server (5 requests per 60s); wait a minute and retry",
				StatusCode: 429,
				ID:         p.SensorID,
				Err:        err,
			}
		}
		return nil, err
	}

	res := &HistoricResult{SensorID: p.SensorID, Format: p.Format, Raw: body}
	if p.Format == historic.FormatJSON {
		series, err := historic.ParseSeries(body)
		if err != nil {
			return nil, apierr.Wrap(apierr.ServerError, err, "invalid historic data response").WithID(p.SensorID)
		}
		res.Series = series
	}

	c.logger.Debug().
		Str("sensor", p.SensorID).
		Str("sdate", p.SDate).
		Str("edate", p.EDate).
		Int("avg", p.Avg).
		Int("bytes", len(body)).
		Int("remaining", c.gate.Remaining()).
		Msg("Fetched historic data")
	return res, nil
}

