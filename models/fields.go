package models

import (
	"strings"

	"github.com/s0up4200/prtgctl/status"
)

// ObjectFields identify any PRTG object.
type ObjectFields struct {
	ObjID    string   `mapstructure:"objid" json:"objid"`
	Name     string   `mapstructure:"name" json:"name"`
	ParentID string   `mapstructure:"parentid" json:"parentid,omitempty"`
	Tags     []string `mapstructure:"tags" json:"tags"`
}

func (o *ObjectFields) fields(env map[string]any) {
	env["ObjID"] = o.ObjID
	env["Name"] = o.Name
	env["ParentID"] = o.ParentID
	env["Tags"] = o.Tags
}

// StatusFields carry the status columns and their decoded value.
type StatusFields struct {
	Status    string `mapstructure:"status" json:"status,omitempty"`
	StatusRaw string `mapstructure:"status_raw" json:"status_raw,omitempty"`
	Message   string `mapstructure:"message" json:"message,omitempty"`

	State status.Status `mapstructure:"-" json:"state,omitempty"`
	// Unrecognized is set when the server sent a code outside the known set.
	// StatusRaw still holds it.
	Unrecognized bool `mapstructure:"-" json:"status_unrecognized,omitempty"`
}

func (s *StatusFields) normalize(codec *status.Codec) {
	switch {
	case s.StatusRaw != "":
		_, ok := status.Lookup(s.StatusRaw)
		s.State = codec.Decode(s.StatusRaw)
		s.Unrecognized = !ok
	case strings.TrimSpace(s.Status) != "":
		// "Down (Acknowledged)" and similar carry the name first
		parsed, err := status.Parse(strings.Fields(s.Status)[0])
		s.State = parsed
		s.Unrecognized = err != nil
	}
}

func (s *StatusFields) annotate(rec Record) {
	if s.Unrecognized {
		rec["status_unrecognized"] = true
	}
}

func (s *StatusFields) fields(env map[string]any) {
	env["Status"] = strings.ToLower(s.State.String())
	env["StatusRaw"] = s.StatusRaw
	env["StatusText"] = s.Status
	env["Message"] = s.Message
}

// PriorityFields carry the priority columns.
type PriorityFields struct {
	Priority    string          `mapstructure:"priority" json:"-"`
	PriorityRaw string          `mapstructure:"priority_raw" json:"-"`
	Level       status.Priority `mapstructure:"-" json:"priority,omitempty"`
}

func (p *PriorityFields) normalize() {
	if p.PriorityRaw != "" {
		p.Level = status.DecodePriority(p.PriorityRaw)
		return
	}
	p.Level = status.DecodePriority(p.Priority)
}

func (p *PriorityFields) annotate(rec Record) {
	if p.Level == 0 {
		return
	}
	for _, key := range []string{"priority", "priority_raw"} {
		if _, ok := rec[key]; ok {
			rec[key] = int(p.Level)
		}
	}
}

func (p *PriorityFields) fields(env map[string]any) {
	env["Priority"] = int(p.Level)
}

// SensorCounts are the per-state sensor totals of a device or probe.
type SensorCounts struct {
	UpSens      int `mapstructure:"upsens" json:"upsens,omitempty"`
	DownSens    int `mapstructure:"downsens" json:"downsens,omitempty"`
	WarnSens    int `mapstructure:"warnsens" json:"warnsens,omitempty"`
	PausedSens  int `mapstructure:"pausedsens" json:"pausedsens,omitempty"`
	UnusualSens int `mapstructure:"unusualsens" json:"unusualsens,omitempty"`
}

func (c *SensorCounts) fields(env map[string]any) {
	env["UpSens"] = c.UpSens
	env["DownSens"] = c.DownSens
	env["WarnSens"] = c.WarnSens
	env["PausedSens"] = c.PausedSens
	env["UnusualSens"] = c.UnusualSens
}
