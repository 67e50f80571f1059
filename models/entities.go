package models

import "github.com/s0up4200/prtgctl/status"

// Entity is a decoded table record.
type Entity interface {
	// Object returns the identity fields.
	Object() ObjectFields
	// Fields returns the values exposed to filter expressions.
	Fields() map[string]any

	normalize(codec *status.Codec)
	annotate(rec Record)
}

// Device is a monitored device
type Device struct {
	ObjectFields   `mapstructure:",squash"`
	StatusFields   `mapstructure:",squash"`
	PriorityFields `mapstructure:",squash"`
	SensorCounts   `mapstructure:",squash"`

	Device string `mapstructure:"device" json:"device,omitempty"`
	Host   string `mapstructure:"host" json:"host,omitempty"`
	Probe  string `mapstructure:"probe" json:"probe,omitempty"`
	Group  string `mapstructure:"group" json:"group,omitempty"`
}

func (d *Device) Object() ObjectFields { return d.ObjectFields }

func (d *Device) Fields() map[string]any {
	env := make(map[string]any, 24)
	d.ObjectFields.fields(env)
	d.StatusFields.fields(env)
	d.PriorityFields.fields(env)
	d.SensorCounts.fields(env)
	env["Device"] = d.Device
	env["Host"] = d.Host
	env["Probe"] = d.Probe
	env["Group"] = d.Group
	return env
}

func (d *Device) annotate(rec Record) {
	d.StatusFields.annotate(rec)
	d.PriorityFields.annotate(rec)
}

func (d *Device) normalize(codec *status.Codec) {
	d.StatusFields.normalize(codec)
	d.PriorityFields.normalize()
}

// Sensor is a single measurement on a device
type Sensor struct {
	ObjectFields   `mapstructure:",squash"`
	StatusFields   `mapstructure:",squash"`
	PriorityFields `mapstructure:",squash"`

	Sensor      string `mapstructure:"sensor" json:"sensor,omitempty"`
	Device      string `mapstructure:"device" json:"device,omitempty"`
	Group       string `mapstructure:"group" json:"group,omitempty"`
	Probe       string `mapstructure:"probe" json:"probe,omitempty"`
	SensorType  string `mapstructure:"sensor_type" json:"sensor_type,omitempty"`
	Interval    string `mapstructure:"interval" json:"interval,omitempty"`
	LastValue   string `mapstructure:"lastvalue" json:"lastvalue,omitempty"`
	LastMessage string `mapstructure:"lastmessage" json:"lastmessage,omitempty"`
	Downtime    string `mapstructure:"downtime" json:"downtime,omitempty"`
	Uptime      string `mapstructure:"uptime" json:"uptime,omitempty"`
}

func (s *Sensor) Object() ObjectFields { return s.ObjectFields }

func (s *Sensor) Fields() map[string]any {
	env := make(map[string]any, 24)
	s.ObjectFields.fields(env)
	s.StatusFields.fields(env)
	s.PriorityFields.fields(env)
	env["Sensor"] = s.Sensor
	env["Device"] = s.Device
	env["Group"] = s.Group
	env["Probe"] = s.Probe
	env["SensorType"] = s.SensorType
	env["Interval"] = s.Interval
	env["LastValue"] = s.LastValue
	env["LastMessage"] = s.LastMessage
	env["Downtime"] = s.Downtime
	env["Uptime"] = s.Uptime
	return env
}

func (s *Sensor) annotate(rec Record) {
	s.StatusFields.annotate(rec)
	s.PriorityFields.annotate(rec)
}

func (s *Sensor) normalize(codec *status.Codec) {
	s.StatusFields.normalize(codec)
	s.PriorityFields.normalize()
}

// Group is a container of devices and groups
type Group struct {
	ObjectFields `mapstructure:",squash"`
	StatusFields `mapstructure:",squash"`

	Probe string `mapstructure:"probe" json:"probe,omitempty"`
	Group string `mapstructure:"group" json:"group,omitempty"`
}

func (g *Group) Object() ObjectFields { return g.ObjectFields }

func (g *Group) Fields() map[string]any {
	env := make(map[string]any, 12)
	g.ObjectFields.fields(env)
	g.StatusFields.fields(env)
	env["Probe"] = g.Probe
	env["Group"] = g.Group
	return env
}

func (g *Group) annotate(rec Record) {
	g.StatusFields.annotate(rec)
}

func (g *Group) normalize(codec *status.Codec) {
	g.StatusFields.normalize(codec)
}

// Probe is a local or remote probe
type Probe struct {
	ObjectFields   `mapstructure:",squash"`
	StatusFields   `mapstructure:",squash"`
	PriorityFields `mapstructure:",squash"`
	SensorCounts   `mapstructure:",squash"`
}

func (p *Probe) Object() ObjectFields { return p.ObjectFields }

func (p *Probe) Fields() map[string]any {
	env := make(map[string]any, 20)
	p.ObjectFields.fields(env)
	p.StatusFields.fields(env)
	p.PriorityFields.fields(env)
	p.SensorCounts.fields(env)
	return env
}

func (p *Probe) annotate(rec Record) {
	p.StatusFields.annotate(rec)
	p.PriorityFields.annotate(rec)
}

func (p *Probe) normalize(codec *status.Codec) {
	p.StatusFields.normalize(codec)
	p.PriorityFields.normalize()
}
