package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DocumentsReadonlyScope is the only scope needed to read a document.
const DocumentsReadonlyScope = "https://www.googleapis.com/auth/documents.readonly"

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "prepcook.yaml"

type Config struct {
	// Google credentials
	CredentialsFile string   `yaml:"credentials_file"`
	TokenFile       string   `yaml:"token_file"`
	AccessToken     string   `yaml:"-"`
	Scopes          []string `yaml:"scopes"`

	// Docs API
	DocsEndpoint string        `yaml:"docs_endpoint"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// Document conventions
	HeadingStyle string `yaml:"heading_style"`
	Divider      string `yaml:"divider"`

	// Output files
	SolrOutput  string `yaml:"solr_output"`
	ChewyOutput string `yaml:"chewy_output"`

	// HTTP server
	Port           string `yaml:"port"`
	APIKey         string `yaml:"api_key"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CredentialsFile: "credentials.json",
		TokenFile:       "token.json",
		Scopes:          []string{DocumentsReadonlyScope},
		FetchTimeout:    30 * time.Second,
		HeadingStyle:    "HEADING_2",
		Divider:         "-----",
		SolrOutput:      "solr_output.txt",
		ChewyOutput:     "chewy_output.txt",
		Port:            "8090",
		MaxUploadBytes:  10 << 20, // 10MB
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.applyFallbacks()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.CredentialsFile = envOr("PREPCOOK_CREDENTIALS_FILE", c.CredentialsFile)
	c.TokenFile = envOr("PREPCOOK_TOKEN_FILE", c.TokenFile)
	c.AccessToken = envOr("PREPCOOK_ACCESS_TOKEN", c.AccessToken)
	c.Scopes = envList("PREPCOOK_SCOPES", c.Scopes)

	c.DocsEndpoint = envOr("PREPCOOK_DOCS_ENDPOINT", c.DocsEndpoint)
	c.FetchTimeout = envDuration("PREPCOOK_FETCH_TIMEOUT", c.FetchTimeout)

	c.HeadingStyle = envOr("PREPCOOK_HEADING_STYLE", c.HeadingStyle)
	c.Divider = envOr("PREPCOOK_DIVIDER", c.Divider)

	c.SolrOutput = envOr("PREPCOOK_SOLR_OUTPUT", c.SolrOutput)
	c.ChewyOutput = envOr("PREPCOOK_CHEWY_OUTPUT", c.ChewyOutput)

	c.Port = envOr("PORT", c.Port)
	c.APIKey = envOr("PREPCOOK_API_KEY", c.APIKey)
	c.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)
}

func (c *Config) applyFallbacks() {
	def := Default()
	if len(c.Scopes) == 0 {
		c.Scopes = def.Scopes
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = def.FetchTimeout
	}
	if c.HeadingStyle == "" {
		c.HeadingStyle = def.HeadingStyle
	}
	if c.Divider == "" {
		c.Divider = def.Divider
	}
	if c.Port == "" {
		c.Port = def.Port
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = def.MaxUploadBytes
	}
}

// Validate checks the settings needed for an export.
func (c Config) Validate() error {
	if c.AccessToken == "" && c.CredentialsFile == "" {
		return fmt.Errorf("credentials_file is required unless PREPCOOK_ACCESS_TOKEN is set")
	}
	if c.AccessToken == "" && c.TokenFile == "" {
		return fmt.Errorf("token_file is required unless PREPCOOK_ACCESS_TOKEN is set")
	}
	if c.SolrOutput != "" && c.SolrOutput == c.ChewyOutput {
		return fmt.Errorf("solr and chewy outputs both point at %s", c.SolrOutput)
	}
	return nil
}

// ValidateServe checks the settings needed by the HTTP server.
func (c Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("PREPCOOK_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
