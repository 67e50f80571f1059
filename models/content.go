package models

import (
	"strings"

	"github.com/s0up4200/prtgctl/apierr"
)

// ContentType is the kind of object a table query returns.
type ContentType string

const (
	Devices ContentType = "devices"
	Sensors ContentType = "sensors"
	Groups  ContentType = "groups"
	Probes  ContentType = "probes"
)

// ParseContentType accepts singular or plural names.
func ParseContentType(value string) (ContentType, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch ContentType(strings.TrimSuffix(v, "s") + "s") {
	case Devices:
		return Devices, nil
	case Sensors:
		return Sensors, nil
	case Groups:
		return Groups, nil
	case Probes:
		return Probes, nil
	}
	return "", apierr.New(apierr.Validation, "unknown content type %q", value)
}

// Singular returns the object name used in messages.
func (c ContentType) Singular() string {
	return strings.TrimSuffix(string(c), "s")
}

// DefaultColumns returns the columns requested when none are given.
func (c ContentType) DefaultColumns() []string {
	var cols []string
	switch c {
	case Devices:
		cols = []string{
			"objid", "name", "device", "host", "probe", "group", "parentid",
			"status", "status_raw", "message", "tags", "priority",
			"upsens", "downsens", "warnsens", "pausedsens", "unusualsens",
		}
	case Sensors:
		cols = []string{
			"objid", "name", "sensor", "device", "group", "probe", "parentid",
			"status", "status_raw", "message", "sensor_type", "interval",
			"lastvalue", "lastmessage", "downtime", "uptime", "priority", "tags",
		}
	case Groups:
		cols = []string{"objid", "name", "probe", "group", "parentid"}
	case Probes:
		cols = []string{
			"objid", "name", "status", "status_raw", "message", "tags", "priority",
			"upsens", "downsens", "warnsens",
		}
	}
	return cols
}
