package prtg

import (
	"context"
	"errors"
	"strings"

	"github.com/s0up4200/prtgctl/apierr"
	"github.com/s0up4200/prtgctl/models"
)

// ItemResult is the outcome for one id of a batch.
type ItemResult struct {
	ID     string
	Record models.Record
	Err    error
}

// BatchResult holds per-item outcomes in input order.
type BatchResult struct {
	Requested int
	Items     []ItemResult
	// Canceled is set when the context ended before every id was processed.
	Canceled bool
}

// Records returns the successful records in order.
func (b *BatchResult) Records() []models.Record {
	var recs []models.Record
	for _, it := range b.Items {
		if it.Err == nil {
			recs = append(recs, it.Record)
		}
	}
	return recs
}

// Failed returns the failed items in order.
func (b *BatchResult) Failed() []ItemResult {
	var failed []ItemResult
	for _, it := range b.Items {
		if it.Err != nil {
			failed = append(failed, it)
		}
	}
	return failed
}

// Successful counts the items that succeeded.
func (b *BatchResult) Successful() int {
	n := 0
	for _, it := range b.Items {
		if it.Err == nil {
			n++
		}
	}
	return n
}

// GetByIDs fetches each id in order. A missing id is recorded as a NotFound
// item and the batch continues. The call fails only when no id succeeds or
// the credentials are rejected.
func (c *Client) GetByIDs(ctx context.Context, content models.ContentType, ids []string, columns []string) (*BatchResult, error) {
	return c.runBatch(ctx, content.Singular(), ids, func(ctx context.Context, id string) (models.Record, error) {
		return c.Get(ctx, content, id, columns)
	})
}

type itemFunc func(ctx context.Context, id string) (models.Record, error)

func (c *Client) runBatch(ctx context.Context, noun string, ids []string, fn itemFunc) (*BatchResult, error) {
	if len(ids) == 0 {
		return nil, apierr.New(apierr.Validation, "no %s ids given", noun)
	}

	res := &BatchResult{Requested: len(ids), Items: make([]ItemResult, 0, len(ids))}
	for _, id := range ids {
		if ctx.Err() != nil {
			res.Canceled = true
			break
		}

		rec, err := fn(ctx, id)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				res.Canceled = true
				break
			}
			// every remaining id would fail the same way
			if apierr.IsUnauthorized(err) {
				return res, err
			}
			c.logger.Debug().Err(err).Str("id", id).Msgf("Failed to process %s", noun)
		}
		res.Items = append(res.Items, ItemResult{ID: id, Record: rec, Err: err})
	}

	if res.Canceled {
		c.logger.Info().Int("processed", len(res.Items)).Int("requested", res.Requested).Msg("Batch canceled")
	}

	if res.Successful() > 0 {
		return res, nil
	}
	return res, batchError(res, noun)
}

func batchError(res *BatchResult, noun string) error {
	if len(res.Items) == 0 {
		return apierr.Wrap(apierr.Transport, context.Canceled, "canceled before any %s was processed", noun)
	}

	allMissing := true
	for _, it := range res.Items {
		if !apierr.IsNotFound(it.Err) {
			allMissing = false
			break
		}
	}
	if allMissing && len(res.Items) > 1 {
		ids := make([]string, 0, len(res.Items))
		for _, it := range res.Items {
			ids = append(ids, it.ID)
		}
		return apierr.New(apierr.NotFound, "none of the requested %ss were found: %s", noun, strings.Join(ids, ", "))
	}
	return res.Items[0].Err
}

// cleanID trims an id and rejects empty ones.
func cleanID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apierr.New(apierr.Validation, "object id must not be empty")
	}
	return id, nil
}
