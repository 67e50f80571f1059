package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/s0up4200/prtgctl/apierr"
)

// DefaultProfile is the profile section used when none is named.
const DefaultProfile = "default"

// placeholderToken is written by InitProfile and never accepted as a credential.
const placeholderToken = "your-api-token-here"

// Resolver merges command line overrides, the environment, a dotenv file,
// the profile file and defaults into Settings. Earlier layers win.
type Resolver struct {
	overrides   Overrides
	dotenvPath  string
	profilePath string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDotenv sets the dotenv file. An empty path disables it.
func WithDotenv(path string) Option {
	return func(r *Resolver) {
		r.dotenvPath = path
	}
}

// WithProfilePath sets the profile file used when none is given explicitly.
func WithProfilePath(path string) Option {
	return func(r *Resolver) {
		r.profilePath = path
	}
}

// NewResolver creates a resolver reading .env from the working directory and
// the profile file from its default location.
func NewResolver(overrides Overrides, opts ...Option) *Resolver {
	r := &Resolver{
		overrides:   overrides,
		dotenvPath:  ".env",
		profilePath: DefaultPath(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve is shorthand for NewResolver(overrides).Resolve().
func Resolve(overrides Overrides) (Settings, error) {
	return NewResolver(overrides).Resolve()
}

// DefaultPath returns ~/.config/prtg/config.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "prtg", "config")
	}
	return filepath.Join(home, ".config", "prtg", "config")
}

// Resolve builds the effective settings.
func (r *Resolver) Resolve() (Settings, error) {
	dotenv, err := loadDotenv(r.dotenvPath)
	if err != nil {
		return Settings{}, err
	}

	early := []source{r.overrides, newEnvSource()}
	if dotenv != nil {
		early = append(early, dotenv)
	}

	profile, explicitProfile := first(early, "profile")
	if !explicitProfile {
		profile = DefaultProfile
	}
	path, explicitPath := first(early, "config")
	if !explicitPath {
		path = r.profilePath
	}
	path = expandHome(path)

	layers := early
	prof, err := loadProfile(path, profile, explicitProfile, explicitPath)
	if err != nil {
		return Settings{}, err
	}
	if prof != nil {
		layers = append(layers, prof)
	}
	layers = append(layers, newDefaultsSource())

	settings := Settings{Profile: profile}
	if prof != nil {
		settings.ConfigPath = path
	}

	if err := r.fill(&settings, layers); err != nil {
		return Settings{}, err
	}
	if err := validate(&settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func (r *Resolver) fill(s *Settings, layers []source) error {
	var err error

	rawURL, _ := first(layers, "url")
	s.URL = NormalizeURL(rawURL)

	if s.Credential, err = resolveCredential(layers); err != nil {
		return err
	}

	if s.VerifyTLS, err = resolveVerify(layers); err != nil {
		return err
	}

	s.Output, _ = first(layers, "output")
	s.Output = strings.ToLower(s.Output)

	if s.Pretty, err = boolKey(layers, "pretty"); err != nil {
		return err
	}

	if s.Timeout, err = durationKey(layers, "timeout"); err != nil {
		return err
	}
	if s.RetryDelay, err = durationKey(layers, "retry_delay"); err != nil {
		return err
	}

	retries, _ := first(layers, "retries")
	if s.Retries, err = strconv.Atoi(retries); err != nil || s.Retries < 0 {
		return apierr.New(apierr.Validation, "invalid retries %q (must be a non-negative integer)", retries)
	}

	s.Logging, err = resolveLogging(layers)
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("output", "json")
	v.SetDefault("pretty", true)
	v.SetDefault("verify_ssl", true)
	v.SetDefault("timeout", "30s")
	v.SetDefault("retries", 0)
	v.SetDefault("retry_delay", "1s")

	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "console")
}

// validate checks if the configuration is valid
func validate(s *Settings) error {
	if s.URL == "" {
		return apierr.New(apierr.Validation,
			"PRTG server URL is not configured (use --url, PRTG_URL or 'prtg config init')")
	}
	if s.Timeout <= 0 {
		return apierr.New(apierr.Validation, "timeout must be positive")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[s.Logging.Level] {
		return apierr.New(apierr.Validation, "invalid logging level: %s", s.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[s.Logging.Format] {
		return apierr.New(apierr.Validation, "invalid logging format: %s", s.Logging.Format)
	}

	return nil
}

// resolveCredential applies the credential ranking: a single token from any
// layer, then a read-write/read-only pair, then username and passhash.
// Within one class the layer order decides.
func resolveCredential(layers []source) (Credential, error) {
	if token, src, ok := firstFrom(layers, "api_token"); ok {
		if token == placeholderToken {
			return Credential{}, apierr.New(apierr.Validation,
				"api_token in %s must be set to a valid API token", src)
		}
		return Credential{Kind: TokenCredential, Token: token, Source: src}, nil
	}

	rw, rwSrc, hasRW := firstFrom(layers, "api_token_rw")
	ro, roSrc, hasRO := firstFrom(layers, "api_token_ro")
	if hasRW || hasRO {
		src := rwSrc
		if !hasRW {
			src = roSrc
		}
		return Credential{Kind: TokenPairCredential, ReadWrite: rw, ReadOnly: ro, Source: src}, nil
	}

	user, userSrc, hasUser := firstFrom(layers, "username")
	hash, _, hasHash := firstFrom(layers, "passhash")
	if hasUser && hasHash {
		return Credential{Kind: LegacyCredential, Username: user, Passhash: hash, Source: userSrc}, nil
	}
	if hasUser || hasHash {
		return Credential{}, apierr.New(apierr.Validation, "username and passhash must be set together")
	}

	return Credential{}, apierr.New(apierr.Validation,
		"no API credentials configured (use --api-token, PRTG_API_TOKEN or 'prtg config init')")
}

// resolveVerify walks the layers in order; each may set verify_ssl or its
// inverse no_verify_ssl.
func resolveVerify(layers []source) (bool, error) {
	for _, l := range layers {
		if v, ok := l.lookup("verify_ssl"); ok {
			return parseBool("verify_ssl", v)
		}
		if v, ok := l.lookup("no_verify_ssl"); ok {
			b, err := parseBool("no_verify_ssl", v)
			return !b, err
		}
	}
	return true, nil
}

func resolveLogging(layers []source) (LoggingConfig, error) {
	var cfg LoggingConfig

	// debug outranks the default level but not an explicit one
	explicit := layers[:len(layers)-1]
	if level, ok := first(explicit, "log_level"); ok {
		cfg.Level = strings.ToLower(level)
	} else if v, ok := first(explicit, "debug"); ok {
		debug, err := parseBool("debug", v)
		if err != nil {
			return cfg, err
		}
		if debug {
			cfg.Level = "debug"
		}
	}
	if cfg.Level == "" {
		cfg.Level, _ = first(layers, "log_level")
	}

	cfg.Format, _ = first(layers, "log_format")
	cfg.Format = strings.ToLower(cfg.Format)
	return cfg, nil
}

func first(layers []source, key string) (string, bool) {
	v, _, ok := firstFrom(layers, key)
	return v, ok
}

func firstFrom(layers []source, key string) (string, string, bool) {
	for _, l := range layers {
		if v, ok := l.lookup(key); ok {
			return v, l.name(), true
		}
	}
	return "", "", false
}

func boolKey(layers []source, key string) (bool, error) {
	v, _ := first(layers, key)
	return parseBool(key, v)
}

func parseBool(key, v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, apierr.New(apierr.Validation, "invalid boolean for %s: %q", key, v)
}

// durationKey accepts Go durations or plain seconds.
func durationKey(layers []source, key string) (time.Duration, error) {
	v, _ := first(layers, key)
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, apierr.New(apierr.Validation, "invalid %s %q (use seconds or a duration like 30s)", key, v)
	}
	return d, nil
}

// NormalizeURL trims whitespace and trailing slashes and adds https:// when
// no scheme is given.
func NormalizeURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if u == "" {
		return ""
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	return u
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// Describe returns a one-line summary of where settings came from.
func (s Settings) Describe() string {
	src := s.Credential.Source
	if src == "" {
		src = "nowhere"
	}
	return fmt.Sprintf("%s via %s from %s", s.URL, s.Credential.Kind, src)
}
