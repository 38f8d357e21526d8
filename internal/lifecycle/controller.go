package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/awnumar/memguard"

	"github.com/PolarWolf314/ordo/internal/audit"
	"github.com/PolarWolf314/ordo/internal/backend"
	"github.com/PolarWolf314/ordo/internal/document"
	kerrors "github.com/PolarWolf314/ordo/internal/errors"
	logger "github.com/PolarWolf314/ordo/internal/logging"
	"github.com/PolarWolf314/ordo/internal/prompt"
	"github.com/PolarWolf314/ordo/internal/suffix"
	"github.com/PolarWolf314/ordo/internal/utils"
)

// Options configures a Controller.
type Options struct {
	// DefaultRecipients are encrypted to when a document has no recipients of
	// its own. When empty, the backend prompts.
	DefaultRecipients []string

	// Audit receives one entry per successful transition. Nil disables it.
	Audit *audit.Log

	Log logger.Logger
}

// Controller runs the Plain/Transparent transitions. It holds only
// read-mostly configuration; all per-document state lives in the Session.
type Controller struct {
	policy            suffix.Policy
	backends          *backend.Set
	defaultRecipients []string
	audit             *audit.Log
	log               logger.Logger
}

// New returns a Controller recognizing encrypted names with policy and
// encrypting through backends.
func New(policy suffix.Policy, backends *backend.Set, opts Options) *Controller {
	return &Controller{
		policy:            policy,
		backends:          backends,
		defaultRecipients: append([]string(nil), opts.DefaultRecipients...),
		audit:             opts.Audit,
		log:               opts.Log,
	}
}

// Policy returns the suffix policy the controller recognizes encrypted names with.
func (c *Controller) Policy() suffix.Policy {
	return c.policy
}

// BackendFor returns the backend that encrypts and decrypts path.
func (c *Controller) BackendFor(path string) backend.Backend {
	return c.backends.For(path)
}

// Find visits path. A name with a recognized suffix is opened encrypted if
// the file exists, or becomes a new empty Transparent document if it does not.
func (c *Controller) Find(ctx context.Context, s Session, path string) error {
	if err := s.Visit(path); err != nil {
		return err
	}
	if !c.policy.HasSuffix(path) {
		return nil
	}
	if s.Storage().Exists(path) {
		return c.OpenEncrypted(ctx, s)
	}

	c.log.Infof("New encrypted file %s", path)
	c.register(s)
	return nil
}

// OpenEncrypted decrypts the session's content in place and enters
// Transparent mode. On failure nothing changes.
func (c *Controller) OpenEncrypted(ctx context.Context, s Session) error {
	doc := s.Document()
	if doc.Transparent() {
		return kerrors.ErrAlreadyTransparent
	}

	path := doc.StoragePath
	b := c.backends.For(path)
	c.log.Debugf("Decrypting %s with %s backend", path, b.Name())

	plaintext, recipients, err := b.Decrypt(ctx, s.Content())
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	flags := doc.Flags()
	s.ReplaceContent(plaintext)
	memguard.WipeBytes(plaintext)
	c.register(s)
	doc.Recipients = recipients
	doc.Restore(flags)

	c.log.Infof("Opened %s as %s (%s backend)", path, doc.LogicalName, b.Name())
	c.audit.Record(audit.Entry{
		Operation:  audit.OpOpen,
		Path:       path,
		Backend:    b.Name(),
		Recipients: len(recipients),
	})

	return nil
}

// Ordoify ties the session's plaintext to a new encrypted file. The file is
// written on the next save.
func (c *Controller) Ordoify(ctx context.Context, s Session) error {
	return c.OrdoifyAs(ctx, s, "", true)
}

// OrdoifyAs is Ordoify with the target given by the caller. An empty path
// is asked for. confirmOverwrite asks before adopting an existing file.
func (c *Controller) OrdoifyAs(ctx context.Context, s Session, path string, confirmOverwrite bool) error {
	doc := s.Document()
	if doc.Transparent() {
		return kerrors.ErrAlreadyTransparent
	}
	p := s.Prompter()

	if strings.TrimSpace(path) == "" {
		answer, err := p.Line("Encrypt to file:", c.ordoifyDefault(doc.StoragePath))
		if err != nil {
			return err
		}
		path = answer
	}
	target, err := c.resolveTarget(s, path)
	if err != nil {
		return err
	}
	if !c.policy.HasSuffix(target) {
		target = target + "." + c.policy.Default()
	}
	if confirmOverwrite && target != doc.StoragePath && s.Storage().Exists(target) {
		ok, err := p.Confirm(fmt.Sprintf("File %s exists; overwrite?", target))
		if err != nil {
			return err
		}
		if !ok {
			return kerrors.ErrCancelled
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	flags := doc.Flags()
	s.Rebind(target)
	c.register(s)
	doc.Recipients = nil
	doc.Restore(flags)
	doc.Dirty = true

	c.log.Infof("Encrypting buffer to %s with %s backend", target, c.backends.For(target).Name())
	c.audit.Record(audit.Entry{
		Operation: audit.OpCreate,
		Path:      target,
		Backend:   c.backends.For(target).Name(),
	})

	return nil
}

func (c *Controller) ordoifyDefault(path string) string {
	if path == "" || c.policy.HasSuffix(path) {
		return path
	}
	return path + "." + c.policy.Default()
}

// Disable leaves Transparent mode after the user confirms. The document is
// detached from its encrypted file so later saves ask for a new name.
func (c *Controller) Disable(ctx context.Context, s Session) error {
	doc := s.Document()
	if !doc.Transparent() {
		return kerrors.ErrNotTransparent
	}

	ok, err := s.Prompter().Confirm("Disable encryption? Future saves will write plaintext.")
	if err != nil {
		return err
	}
	if !ok {
		return kerrors.ErrCancelled
	}

	path := doc.StoragePath
	if err := c.unregister(s); err != nil {
		return err
	}
	doc.StoragePath = ""
	doc.ModTime = time.Time{}

	c.log.Infof("Transparent encryption disabled for %s", path)
	c.audit.Record(audit.Entry{Operation: audit.OpDisable, Path: path})

	return nil
}

// EncryptedSave encrypts a scratch copy of the content, wiped before
// returning, and writes the ciphertext to the document's file. On failure the file on disk is
// unchanged and the document stays modified and Transparent.
func (c *Controller) EncryptedSave(ctx context.Context, s Session) error {
	doc := s.Document()
	if !doc.Transparent() {
		return kerrors.ErrNotTransparent
	}
	path := doc.StoragePath
	if path == "" {
		return kerrors.ErrNoTargetIdentity
	}

	b := c.backends.For(path)
	recipients := doc.Recipients
	if len(recipients) == 0 {
		recipients = c.defaultRecipients
	}

	plaintext := s.Content()
	defer memguard.WipeBytes(plaintext)

	ciphertext, err := b.Encrypt(ctx, plaintext, recipients)
	if err != nil && len(doc.Recipients) > 0 && errors.Is(err, kerrors.ErrNoRecipient) {
		// Remembered recipients may name keys that are no longer in the
		// keyring. Ask for new ones rather than failing every save.
		c.log.WarnfAlways("Cannot encrypt %s to %s: %v", path, strings.Join(doc.Recipients, ", "), err)
		recipients = c.defaultRecipients
		ciphertext, err = b.Encrypt(ctx, plaintext, recipients)
		if err == nil {
			doc.Recipients = append([]string(nil), recipients...)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	if err := s.Storage().WriteFile(path, ciphertext); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	s.MarkSaved()

	c.log.Infof("Wrote %s (%d bytes, %s backend)", path, len(ciphertext), b.Name())
	c.audit.Record(audit.Entry{
		Operation:  audit.OpSave,
		Path:       path,
		Backend:    b.Name(),
		Recipients: len(recipients),
	})

	return nil
}

// EncryptedSaveAs writes the document under newPath, prompting for it when
// empty. A name with a recognized suffix is saved encrypted. For any other
// name a Transparent document asks whether to write it encrypted anyway or
// as plaintext, which also leaves Transparent mode.
func (c *Controller) EncryptedSaveAs(ctx context.Context, s Session, newPath string, confirmOverwrite bool) error {
	doc := s.Document()
	p := s.Prompter()

	if strings.TrimSpace(newPath) == "" {
		answer, err := p.Line("Write file:", "")
		if err != nil {
			return err
		}
		newPath = answer
	}
	target, err := c.resolveTarget(s, newPath)
	if err != nil {
		return err
	}

	if confirmOverwrite && target != doc.StoragePath && s.Storage().Exists(target) {
		ok, err := p.Confirm(fmt.Sprintf("File %s exists; overwrite?", target))
		if err != nil {
			return err
		}
		if !ok {
			return kerrors.ErrCancelled
		}
	}

	encrypted := c.policy.HasSuffix(target)
	if !encrypted && doc.Transparent() {
		encrypted, err = chooseEncryption(p, target)
		if err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := doc.StoragePath
	if encrypted {
		s.Rebind(target)
		c.register(s)
		doc.Dirty = true
		if err := c.EncryptedSave(ctx, s); err != nil {
			return err
		}
	} else {
		if doc.Transparent() {
			if err := c.unregister(s); err != nil {
				return err
			}
		}
		s.Rebind(target)
		s.DetectMode(target)
		doc.Dirty = true
		if err := s.SavePlain(ctx); err != nil {
			return err
		}
	}

	c.audit.Record(audit.Entry{
		Operation: audit.OpSaveAs,
		Path:      target,
		From:      from,
		Plaintext: !encrypted,
	})

	return nil
}

// chooseEncryption asks until the user types e or p.
func chooseEncryption(p prompt.Prompter, target string) (bool, error) {
	question := fmt.Sprintf("%s has no encrypted suffix. Save (e)ncrypted or (p)laintext?", filepath.Base(target))
	for {
		r, err := p.Char(question)
		if err != nil {
			return false, err
		}
		switch r {
		case 'e', 'E':
			return true, nil
		case 'p', 'P':
			return false, nil
		}
		p.Printf("Please type e or p.")
	}
}

// resolveTarget expands answer into a file path. A directory gets the
// document's current base name appended.
func (c *Controller) resolveTarget(s Session, answer string) (string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", kerrors.ErrNoTargetIdentity
	}
	target, err := utils.ExpandHome(answer)
	if err != nil {
		return "", err
	}

	if info, err := s.Storage().Stat(target); err == nil && info.IsDir {
		current := s.Document().StoragePath
		if current == "" {
			return "", fmt.Errorf("%w: %s is a directory", kerrors.ErrNoTargetIdentity, target)
		}
		target = filepath.Join(target, filepath.Base(current))
	}
	return target, nil
}

// register moves the session into Transparent mode with exactly one save
// handle, replacing any handle it already had.
func (c *Controller) register(s Session) {
	doc := s.Document()
	if !doc.Handle.IsZero() {
		if err := s.RemoveSaver(doc.Handle); err != nil {
			c.log.Debugf("Stale save handle %s: %v", doc.Handle, err)
		}
	}

	doc.Handle = s.InstallSaver(document.SaverFunc(func(ctx context.Context) error {
		return c.EncryptedSave(ctx, s)
	}))
	doc.Mode = document.Transparent
	s.SetAutoSave(false)
	s.DetectMode(c.policy.StripSuffix(doc.StoragePath))

	c.log.Debugf("Installed save handle %s for %s", doc.Handle, doc.StoragePath)
}

func (c *Controller) unregister(s Session) error {
	doc := s.Document()
	if err := s.RemoveSaver(doc.Handle); err != nil {
		return err
	}
	doc.Handle = document.Handle{}
	doc.Mode = document.Plain
	doc.Recipients = nil
	s.SetAutoSave(true)
	return nil
}

// CheckInvariant reports an error when the document's mode and its installed
// save handles disagree.
func (c *Controller) CheckInvariant(s Session) error {
	doc := s.Document()
	handles := s.Handles()
	switch {
	case doc.Transparent() && (handles != 1 || doc.Handle.IsZero()):
		return fmt.Errorf("transparent document %s has %d save handles", doc.StoragePath, handles)
	case !doc.Transparent() && (handles != 0 || !doc.Handle.IsZero()):
		return fmt.Errorf("plain document %s has %d save handles", doc.StoragePath, handles)
	}
	return nil
}
