package workflows

import (
	"github.com/PolarWolf314/ordo/internal/audit"
	"github.com/PolarWolf314/ordo/internal/backend"
	"github.com/PolarWolf314/ordo/internal/configs"
	"github.com/PolarWolf314/ordo/internal/editor"
	"github.com/PolarWolf314/ordo/internal/lifecycle"
	logger "github.com/PolarWolf314/ordo/internal/logging"
	"github.com/PolarWolf314/ordo/internal/prompt"
	"github.com/PolarWolf314/ordo/internal/storage"
)

// Env is what every workflow runs against.
type Env struct {
	Config   *configs.Config
	Prompter prompt.Prompter
	Log      logger.Logger

	// Storage defaults to the local file system.
	Storage storage.Storage
}

func (e Env) storage() storage.Storage {
	if e.Storage == nil {
		return storage.OS{}
	}
	return e.Storage
}

// NewBackends builds the backend set described by config. .ordo files use
// the native format; .gpg and .pgp files use OpenPGP. Every other configured
// suffix, and save-as to an unrecognized name, uses the fallback backend.
func NewBackends(config *configs.Config, p prompt.Prompter, log logger.Logger) *backend.Set {
	ordo := backend.NewOrdo(p, backend.Argon2Params{
		Time:      config.Ordo.Argon2Time,
		MemoryKiB: config.Ordo.Argon2MemoryKiB,
		Threads:   config.Ordo.Argon2Threads,
	}, backend.NewPassphraseCache(config.CachePassphrase), log)

	pgp := backend.NewOpenPGP(p, backend.OpenPGPOptions{
		PublicKeyring: config.OpenPGP.PublicKeyring,
		SecretKeyring: config.OpenPGP.SecretKeyring,
		Armor:         config.OpenPGP.Armor,
	}, backend.NewPassphraseCache(config.CachePassphrase), log)

	var fallback backend.Backend = ordo
	if config.FallbackBackend == "openpgp" {
		fallback = pgp
	}

	set := backend.NewSet(config.Policy(), fallback)
	set.Register("ordo", ordo)
	set.Register("gpg", pgp)
	set.Register("pgp", pgp)
	log.Debugf("Backends: ordo=ordo gpg,pgp=openpgp fallback=%s", fallback.Name())

	return set
}

// NewController returns a lifecycle controller configured from env.
func NewController(env Env) *lifecycle.Controller {
	return lifecycle.New(env.Config.Policy(), NewBackends(env.Config, env.Prompter, env.Log), lifecycle.Options{
		DefaultRecipients: env.Config.DefaultRecipients,
		Audit:             audit.New(env.Config.AuditLog),
		Log:               env.Log,
	})
}

// NewSession returns an empty buffer and the controller that drives it.
func NewSession(env Env) (*editor.Buffer, *lifecycle.Controller) {
	buf := editor.New(env.storage(), env.Prompter, env.Log, editor.Options{
		AutosaveInterval: env.Config.AutosaveInterval,
	})
	return buf, NewController(env)
}
