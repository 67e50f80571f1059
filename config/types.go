package config

import (
	"net/url"
	"strings"
	"time"
)

// Settings is the effective configuration for one invocation.
type Settings struct {
	URL        string
	Credential Credential
	VerifyTLS  bool
	Output     string
	Pretty     bool
	Profile    string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	Logging    LoggingConfig
	// ConfigPath is the profile file that was read, empty when none was.
	ConfigPath string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// CredentialKind identifies which authentication method is active.
type CredentialKind int

const (
	// TokenCredential is a single api_token.
	TokenCredential CredentialKind = iota + 1
	// TokenPairCredential is an api_token_rw / api_token_ro pair.
	TokenPairCredential
	// LegacyCredential is username plus passhash.
	LegacyCredential
)

func (k CredentialKind) String() string {
	switch k {
	case TokenCredential:
		return "api_token"
	case TokenPairCredential:
		return "api_token_rw/api_token_ro"
	case LegacyCredential:
		return "username/passhash"
	}
	return "none"
}

// Credential is the single authentication method in effect.
type Credential struct {
	Kind      CredentialKind
	Token     string
	ReadWrite string
	ReadOnly  string
	Username  string
	Passhash  string
	// Source names the configuration layer that supplied the credential.
	Source string
}

// Active returns the secret sent to the server.
func (c Credential) Active() string {
	switch c.Kind {
	case TokenCredential:
		return c.Token
	case TokenPairCredential:
		if c.ReadWrite != "" {
			return c.ReadWrite
		}
		return c.ReadOnly
	case LegacyCredential:
		return c.Passhash
	}
	return ""
}

// IsReadOnly reports whether only a read-only token is available.
func (c Credential) IsReadOnly() bool {
	return c.Kind == TokenPairCredential && c.ReadWrite == ""
}

// Params returns the authentication query parameters.
func (c Credential) Params() url.Values {
	v := url.Values{}
	switch c.Kind {
	case TokenCredential, TokenPairCredential:
		v.Set("apitoken", c.Active())
	case LegacyCredential:
		v.Set("username", c.Username)
		v.Set("passhash", c.Passhash)
	}
	return v
}

// Masked returns the active secret with all but the last four characters hidden.
func (c Credential) Masked() string {
	return Mask(c.Active())
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

// Overrides are values given on the command line. Zero values mean unset.
type Overrides struct {
	URL         string
	APIToken    string
	ConfigPath  string
	Profile     string
	Output      string
	NoVerifySSL *bool
	Pretty      *bool
	Timeout     time.Duration
	Retries     *int
	LogLevel    string
	LogFormat   string
}
