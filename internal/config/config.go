package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable read by the converter,
// so the key cache-path resolves from CONVERTER_CACHE_PATH.
const EnvPrefix = "CONVERTER"

// Defaults applied when neither flag nor environment supplies a value.
const (
	DefaultBind      = ":3000"
	DefaultImage     = "meltwater/drone-cache"
	DefaultCachePath = "/var/lib/cache"
)

var (
	// ErrViperNil is returned when a nil viper instance is provided.
	ErrViperNil = errors.New("viper instance is nil")
	// ErrSecretNotSet is returned when the shared webhook secret is not
	// set via flag or environment.
	ErrSecretNotSet = errors.New("shared secret is not set")
)

// Config carries the runtime settings of the conversion extension.
type Config struct {
	Bind      string
	Secret    string
	Debug     bool
	Image     string
	CachePath string
}

// NewViper returns a viper instance bound to the CONVERTER_* environment.
// Flags bound to it and environment variables resolve through the same
// keys, with dashes mapping to underscores.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("bind", DefaultBind)
	v.SetDefault("image", DefaultImage)
	v.SetDefault("cache-path", DefaultCachePath)

	return v
}

// Load materializes the configuration from a viper instance.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, ErrViperNil
	}

	return &Config{
		Bind:      v.GetString("bind"),
		Secret:    v.GetString("secret"),
		Debug:     v.GetBool("debug"),
		Image:     v.GetString("image"),
		CachePath: v.GetString("cache-path"),
	}, nil
}

// EnvironMap converts KEY=VALUE pairs, as returned by os.Environ, into a
// map. Entries without a key or a separator are skipped.
func EnvironMap(pairs []string) map[string]string {
	environ := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		environ[key] = value
	}
	return environ
}
