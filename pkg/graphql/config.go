package graphql

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvGraphQLURL overrides the configured URI.
const EnvGraphQLURL = "RWJS_API_GRAPHQL_URL"

// DefaultURI is used when neither the file nor the environment names one.
const DefaultURI = "http://localhost:8911/graphql"

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() ProviderConfig {
	return ProviderConfig{
		URI:         DefaultURI,
		Credentials: CredentialsSameOrigin,
		CacheConfig: CacheConfig{MaxEntries: DefaultCacheEntries},
		ClientOptions: ClientOptions{
			DefaultFetchPolicy: CacheFirst,
		},
		LogLevel: "info",
	}
}

// LoadConfig reads a YAML provider configuration from path. An empty path
// yields the defaults. RWJS_API_GRAPHQL_URL, when set, replaces the URI.
func LoadConfig(path string) (ProviderConfig, error) {
	cfg := DefaultConfig()

	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return ProviderConfig{}, fmt.Errorf("graphql: read config: %w", err)
		}
		if err := decodeConfig(b, &cfg); err != nil {
			return ProviderConfig{}, fmt.Errorf("graphql: parse %s: %w", path, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvGraphQLURL)); v != "" {
		cfg.URI = v
	}

	if err := ValidateConfig(cfg); err != nil {
		return ProviderConfig{}, err
	}
	return cfg, nil
}

func decodeConfig(b []byte, cfg *ProviderConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// ValidateConfig checks field constraints.
func ValidateConfig(cfg ProviderConfig) error {
	if err := configValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("graphql: invalid config: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("graphql: invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}
