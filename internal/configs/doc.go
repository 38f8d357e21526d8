// Package configs manages ordo's configuration.
//
// Configuration is a single TOML file, by default
// $XDG_CONFIG_HOME/ordo/config.toml (see DefaultPath). ORDO_CONFIG or the
// --config flag point elsewhere. A missing file means the defaults:
//
//	suffixes = ["ordo", "pgp", "gpg"]
//	fallback_backend = "ordo"
//	cache_passphrase = true
//	autosave_interval = 300
//
//	[openpgp]
//	public_keyring = "~/.gnupg/pubring.asc"
//	secret_keyring = "~/.gnupg/secring.asc"
//
//	[ordo]
//	argon2_time = 3
//	argon2_memory_kib = 65536
//	argon2_threads = 4
//
// The loaded Config is passed explicitly; there is no package-level state, so
// tests and concurrent sessions can use different configurations.
package configs
