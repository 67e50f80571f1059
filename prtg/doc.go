// Package prtg is a client for the PRTG Network Monitor HTTP API.
//
// It builds table queries, fetches objects singly, in lists or in batches,
// retrieves historic sensor data through a rate-limited gate and moves
// devices between groups. Every error it returns is an *apierr.Error.
//
// Basic usage:
//
//	settings, err := config.Resolve(config.Overrides{})
//	if err != nil {
//		return err
//	}
//	client, err := prtg.NewClient(settings, logger)
//	if err != nil {
//		return err
//	}
//	devices, err := client.List(ctx, prtg.Query{Content: models.Devices})
package prtg
