package prtg

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/s0up4200/prtgctl/apierr"
	"github.com/s0up4200/prtgctl/models"
)

const moveEndpoint = "moveobjectnow.htm"

// MoveDevices moves each device under targetID, one at a time, with the same
// partial failure rules as GetByIDs.
func (c *Client) MoveDevices(ctx context.Context, ids []string, targetID string) (*BatchResult, error) {
	if c.readOnly {
		return nil, apierr.New(apierr.Validation,
			"moving devices needs a read-write token; only api_token_ro is configured")
	}
	targetID, err := cleanID(targetID)
	if err != nil {
		return nil, apierr.New(apierr.Validation, "target group id is required")
	}

	return c.runBatch(ctx, "device", ids, func(ctx context.Context, id string) (models.Record, error) {
		return c.moveDevice(ctx, id, targetID)
	})
}

func (c *Client) moveDevice(ctx context.Context, id, targetID string) (models.Record, error) {
	id, err := cleanID(id)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("id", id)
	params.Set("targetid", targetID)

	body, err := c.doRequest(ctx, moveEndpoint, params)
	if err != nil {
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) {
			return nil, apiErr.WithID(id)
		}
		return nil, err
	}
	if !strings.Contains(strings.ToLower(string(body)), "ok") {
		return nil, (&apierr.Error{
			Kind:    apierr.ServerError,
			Message: "move rejected by server: " + serverMessage(body),
		}).WithID(id)
	}

	c.logger.Info().Str("device", id).Str("target", targetID).Msg("Moved device")
	return models.Record{"objid": id, "targetid": targetID, "moved": true}, nil
}
