package configs

import (
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/ordo/internal/errors"
	"github.com/PolarWolf314/ordo/internal/suffix"
	"github.com/PolarWolf314/ordo/internal/utils"
)

// Config is the process-wide configuration. It is loaded once and passed
// explicitly to the components that need it.
type Config struct {
	// Suffixes are the recognized encrypted-file suffixes, in priority order.
	Suffixes []string `toml:"suffixes"`

	// DefaultRecipients are used for encryption when a document has none.
	// When empty, the backend prompts.
	DefaultRecipients []string `toml:"default_recipients"`

	// FallbackBackend encrypts documents whose name has no recognized suffix.
	FallbackBackend string `toml:"fallback_backend"`

	// CachePassphrase keeps passphrases sealed in memory for the process lifetime.
	CachePassphrase bool `toml:"cache_passphrase"`

	// AutosaveInterval is the number of edits between plaintext auto-saves of
	// unencrypted buffers. Zero disables auto-save.
	AutosaveInterval int `toml:"autosave_interval"`

	// AuditLog is the path of the JSON Lines audit log. Empty disables it.
	AuditLog string `toml:"audit_log"`

	OpenPGP OpenPGPConfig `toml:"openpgp"`
	Ordo    OrdoConfig    `toml:"ordo"`
}

// OpenPGPConfig configures the .gpg/.pgp backend.
type OpenPGPConfig struct {
	PublicKeyring string `toml:"public_keyring"`
	SecretKeyring string `toml:"secret_keyring"`
	Armor         bool   `toml:"armor"`
}

// OrdoConfig configures the Argon2id parameters of the native .ordo format.
type OrdoConfig struct {
	Argon2Time      uint32 `toml:"argon2_time"`
	Argon2MemoryKiB uint32 `toml:"argon2_memory_kib"`
	Argon2Threads   uint8  `toml:"argon2_threads"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Suffixes:         append([]string(nil), suffix.DefaultSuffixes...),
		FallbackBackend:  "ordo",
		CachePassphrase:  true,
		AutosaveInterval: 300,
		OpenPGP: OpenPGPConfig{
			PublicKeyring: "~/.gnupg/pubring.asc",
			SecretKeyring: "~/.gnupg/secring.asc",
		},
		Ordo: OrdoConfig{
			Argon2Time:      3,
			Argon2MemoryKiB: 64 * 1024,
			Argon2Threads:   4,
		},
	}
}

// Policy returns the suffix policy described by the configuration.
func (c *Config) Policy() suffix.Policy {
	return suffix.New(c.Suffixes)
}

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	if len(c.Policy().Suffixes()) == 0 {
		return fmt.Errorf("%w: at least one suffix is required", kerrors.ErrInvalidConfig)
	}
	switch c.FallbackBackend {
	case "ordo", "openpgp":
	default:
		return fmt.Errorf("%w: unknown fallback_backend %q", kerrors.ErrInvalidConfig, c.FallbackBackend)
	}
	if c.AutosaveInterval < 0 {
		return fmt.Errorf("%w: autosave_interval must not be negative", kerrors.ErrInvalidConfig)
	}
	if c.Ordo.Argon2Time == 0 || c.Ordo.Argon2MemoryKiB == 0 || c.Ordo.Argon2Threads == 0 {
		return fmt.Errorf("%w: argon2 parameters must be positive", kerrors.ErrInvalidConfig)
	}
	return nil
}

// DefaultPath returns the configuration file location: $ORDO_CONFIG if set,
// otherwise ordo/config.toml under the user config directory.
func DefaultPath() (string, error) {
	if p := os.Getenv("ORDO_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "ordo", "config.toml"), nil
}

// Load reads the configuration at path over the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(path, config); err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidConfig, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	if err := config.expandPaths(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save writes the configuration to path.
func Save(path string, config *Config) error {
	if err := SaveTOML(path, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.OpenPGP.PublicKeyring, &c.OpenPGP.SecretKeyring, &c.AuditLog} {
		expanded, err := utils.ExpandHome(*p)
		if err != nil {
			return fmt.Errorf("expanding %s: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}
