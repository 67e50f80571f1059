package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/s0up4200/prtgctl/apierr"
)

// source is one configuration layer.
type source interface {
	name() string
	lookup(key string) (string, bool)
}

// aliases lists alternative key names, mostly for environment variables.
var aliases = map[string][]string{
	"output": {"output_format"},
}

func keyNames(key string) []string {
	return append([]string{key}, aliases[key]...)
}

func (o Overrides) name() string { return "command line" }

func (o Overrides) lookup(key string) (string, bool) {
	var v string
	switch key {
	case "url":
		v = o.URL
	case "api_token":
		v = o.APIToken
	case "config":
		v = o.ConfigPath
	case "profile":
		v = o.Profile
	case "output":
		v = o.Output
	case "no_verify_ssl":
		if o.NoVerifySSL != nil {
			v = strconv.FormatBool(*o.NoVerifySSL)
		}
	case "pretty":
		if o.Pretty != nil {
			v = strconv.FormatBool(*o.Pretty)
		}
	case "timeout":
		if o.Timeout > 0 {
			v = o.Timeout.String()
		}
	case "retries":
		if o.Retries != nil {
			v = strconv.Itoa(*o.Retries)
		}
	case "log_level":
		v = o.LogLevel
	case "log_format":
		v = o.LogFormat
	}
	return v, v != ""
}

// viperSource reads keys from a viper instance, optionally prefixed.
type viperSource struct {
	label  string
	prefix string
	v      *viper.Viper
}

func (s *viperSource) name() string { return s.label }

func (s *viperSource) lookup(key string) (string, bool) {
	for _, k := range keyNames(key) {
		k = s.prefix + k
		if s.v.IsSet(k) {
			if val := s.v.GetString(k); val != "" {
				return val, true
			}
		}
	}
	return "", false
}

// newEnvSource reads PRTG_* variables from the process environment.
func newEnvSource() source {
	v := viper.New()
	v.SetEnvPrefix("PRTG")
	v.AutomaticEnv()
	return &viperSource{label: "environment", v: v}
}

// loadDotenv reads a .env style file. A missing file yields nil.
func loadDotenv(path string) (source, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, apierr.Wrap(apierr.Validation, err, "error reading %s", path)
	}
	// viper lowercases dotenv keys
	return &viperSource{label: path, prefix: "prtg_", v: v}, nil
}

// newDefaultsSource holds the built-in defaults.
func newDefaultsSource() source {
	v := viper.New()
	setDefaults(v)
	return &viperSource{label: "defaults", v: v}
}

// profileSource is one section of the INI profile file.
type profileSource struct {
	path    string
	section *ini.Section
}

func (p *profileSource) name() string {
	return fmt.Sprintf("profile %q in %s", p.section.Name(), p.path)
}

func (p *profileSource) lookup(key string) (string, bool) {
	for _, k := range keyNames(key) {
		if p.section.HasKey(k) {
			if v := strings.TrimSpace(p.section.Key(k).String()); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

func loadIni(path string) (*ini.File, error) {
	return ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
}

// loadProfile opens the named section. A missing file or section is only an
// error when the profile or path was asked for explicitly.
func loadProfile(path, profile string, explicitProfile, explicitPath bool) (*profileSource, error) {
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, apierr.Wrap(apierr.Validation, err, "cannot read config file %s", path)
		}
		switch {
		case explicitPath:
			return nil, apierr.New(apierr.Validation, "config file not found: %s", path)
		case explicitProfile:
			return nil, apierr.New(apierr.Validation,
				"profile %q not found: config file %s does not exist (run 'prtg config init')", profile, path)
		}
		return nil, nil
	}

	f, err := loadIni(path)
	if err != nil {
		return nil, apierr.Wrap(apierr.Validation, err, "error reading config file %s", path)
	}

	// ini always has an implicit, empty DEFAULT section
	section, err := f.GetSection(strings.ToLower(profile))
	if err != nil || len(section.Keys()) == 0 {
		if explicitProfile {
			return nil, apierr.New(apierr.Validation, "profile %q not found in %s", profile, path)
		}
		return nil, nil
	}

	return &profileSource{path: path, section: section}, nil
}
