package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/s0up4200/prtgctl/apierr"
)

// Profile is a summary of one profile file section.
type Profile struct {
	Name      string
	URL       string
	HasToken  bool
	VerifySSL string
}

// ProfileValues are written by InitProfile.
type ProfileValues struct {
	Name      string
	URL       string
	APIToken  string
	VerifySSL bool
}

// ListProfiles returns the profiles in the file, sorted by name.
func ListProfiles(path string) ([]Profile, error) {
	f, err := loadIni(expandHome(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apierr.New(apierr.NotFound, "config file not found: %s", path)
		}
		return nil, apierr.Wrap(apierr.Validation, err, "error reading config file %s", path)
	}

	var profiles []Profile
	for _, s := range f.Sections() {
		if len(s.Keys()) == 0 {
			continue
		}
		p := Profile{
			Name:      s.Name(),
			URL:       NormalizeURL(s.Key("url").String()),
			VerifySSL: s.Key("verify_ssl").MustString("true"),
		}
		for _, k := range []string{"api_token", "api_token_rw", "api_token_ro", "passhash"} {
			if v := s.Key(k).String(); v != "" && v != placeholderToken {
				p.HasToken = true
			}
		}
		profiles = append(profiles, p)
	}

	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles, nil
}

// ProfileNames returns the profile names in the file.
func ProfileNames(path string) ([]string, error) {
	profiles, err := ListProfiles(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	return names, nil
}

// InitProfile writes a profile section, creating the file with mode 0600.
// An existing section is only replaced when force is set.
func InitProfile(path string, values ProfileValues, force bool) error {
	path = expandHome(path)
	name := strings.ToLower(strings.TrimSpace(values.Name))
	if name == "" {
		name = DefaultProfile
	}

	f := ini.Empty(ini.LoadOptions{Insensitive: true})
	if _, err := os.Stat(path); err == nil {
		if f, err = loadIni(path); err != nil {
			return apierr.Wrap(apierr.Validation, err, "error reading config file %s", path)
		}
		if s, err := f.GetSection(name); err == nil && len(s.Keys()) > 0 {
			if !force {
				return apierr.New(apierr.Validation, "profile %q already exists in %s (use --force to overwrite)", name, path)
			}
			f.DeleteSection(name)
		}
	}

	section, err := f.NewSection(name)
	if err != nil {
		return fmt.Errorf("failed to create profile %q: %w", name, err)
	}
	section.Comment = "# PRTG connection profile\n# Values here are overridden by PRTG_* environment variables and command line flags."

	url := values.URL
	if url == "" {
		url = "https://prtg.example.com"
	}
	token := values.APIToken
	if token == "" {
		token = placeholderToken
	}
	for _, kv := range [][2]string{
		{"url", NormalizeURL(url)},
		{"api_token", token},
		{"verify_ssl", strconv.FormatBool(values.VerifySSL)},
	} {
		if _, err := section.NewKey(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to write %s: %w", kv[0], err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer out.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Chmod(path, 0o600)
}
