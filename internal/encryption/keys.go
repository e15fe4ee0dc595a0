package encryption

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"
)

// keyFiles locates the key pair on disk. The public key is plaintext; the
// private key is wrapped with age's scrypt passphrase encryption.
type keyFiles struct {
	public  string
	private string
}

func (k keyFiles) anyExist() bool {
	return fileExists(k.public) || fileExists(k.private)
}

func (k keyFiles) bothExist() bool {
	return fileExists(k.public) && fileExists(k.private)
}

func (k keyFiles) writePublic(r *age.X25519Recipient) error {
	if err := os.MkdirAll(filepath.Dir(k.public), 0700); err != nil {
		return fmt.Errorf("creating public key directory: %w", err)
	}
	if err := os.WriteFile(k.public, []byte(r.String()+"\n"), 0644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}
	return nil
}

func (k keyFiles) writePrivate(id *age.X25519Identity, passphrase string) error {
	if err := os.MkdirAll(filepath.Dir(k.private), 0700); err != nil {
		return fmt.Errorf("creating private key directory: %w", err)
	}

	wrap, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, wrap)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.WriteString(w, id.String()+"\n"); err != nil {
		return fmt.Errorf("writing encrypted private key: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing encrypted private key: %w", err)
	}

	if err := os.WriteFile(k.private, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	return nil
}

func (k keyFiles) readRecipient() (age.Recipient, error) {
	data, err := os.ReadFile(k.public)
	if err != nil {
		return nil, fmt.Errorf("reading public key: %w", err)
	}
	recipients, err := age.ParseRecipients(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no recipients found in %s", k.public)
	}
	return recipients[0], nil
}

func (k keyFiles) readIdentity(passphrase string) (age.Identity, error) {
	data, err := os.ReadFile(k.private)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}

	unwrap, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	r, err := age.Decrypt(bytes.NewReader(data), unwrap)
	if err != nil {
		return nil, fmt.Errorf("decrypting private key: %w", err)
	}

	identities, err := age.ParseIdentities(r)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("no identities found in %s", k.private)
	}
	return identities[0], nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
