// Package keys stores and loads P-256 keys.
//
// # Key File Format
//
// Keys are stored in a directory (default ~/.config/p256/keys/) with two
// files per key:
//
//	<key-name>.public  - Hex-encoded SEC1 compressed public key
//	<key-name>.private - Format: "hexkey:p256" where hexkey is the secret scalar
//
// # Loading Keys
//
// Load a key through a KeyProvider:
//
//	store, err := keys.NewFileStore("")
//	if err != nil {
//		log.Fatal(err)
//	}
//	provider := &keys.FileKeyProvider{Store: store, KeyName: "my-key"}
//	sk, err := provider.GetSecretKey(context.Background())
//
// # Key Formats
//
// The private key format in the .private file is "hexkey:curve" where:
//   - hexkey: Hex-encoded secret scalar (64 hex characters)
//   - curve: Curve name (only "p256" is supported)
//
// Keys can also be exchanged as COSE_Key structures, see MarshalCOSEPublicKey.
package keys

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/anchorageoss/p256"
	"github.com/anchorageoss/p256/internal/secure"
)

const (
	curveName     = "p256"
	publicSuffix  = ".public"
	privateSuffix = ".private"
)

var (
	// ErrInvalidKeyName is returned for empty names or names containing path elements.
	ErrInvalidKeyName = errors.New("invalid key name")
	// ErrKeyExists is returned by Save when a key of that name is already stored.
	ErrKeyExists = errors.New("key already exists")
	// ErrKeyMismatch is returned when the stored public key does not belong to the secret key.
	ErrKeyMismatch = errors.New("stored public key does not match secret key")
)

// KeyProvider supplies a secret key for signing.
type KeyProvider interface {
	GetSecretKey(ctx context.Context) (*p256.SecretKey, error)
}

// FileKeyProvider implements KeyProvider by reading from a FileStore.
type FileKeyProvider struct {
	Store   *FileStore
	KeyName string
}

// GetSecretKey loads the secret key from files
func (f *FileKeyProvider) GetSecretKey(ctx context.Context) (*p256.SecretKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.Store.LoadSecretKey(f.KeyName)
}

// MemoryKeyProvider implements KeyProvider with a key held in memory.
type MemoryKeyProvider struct {
	Key *p256.SecretKey
}

// GetSecretKey returns the held key
func (m *MemoryKeyProvider) GetSecretKey(ctx context.Context) (*p256.SecretKey, error) {
	if m.Key == nil {
		return nil, errors.New("no key configured")
	}
	return m.Key, ctx.Err()
}

// FileStore keeps keys as files in a directory.
type FileStore struct {
	Dir string
}

// DefaultDir returns ~/.config/p256/keys.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "p256", "keys"), nil
}

// NewFileStore opens a store in dir, or in DefaultDir when dir is empty.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return &FileStore{Dir: dir}, nil
}

// Save writes both halves of kp under name. Existing keys are never overwritten.
func (s *FileStore) Save(name string, kp *p256.Keypair) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}

	secret := kp.Secret.Bytes()
	defer secure.Wipe32(&secret)

	content := make([]byte, 0, hex.EncodedLen(len(secret))+len(curveName)+2)
	content = hex.AppendEncode(content, secret[:])
	content = append(content, ':')
	content = append(content, curveName...)
	content = append(content, '\n')
	defer secure.Wipe(content)

	if err := writeNew(s.path(name, privateSuffix), content, 0o600); err != nil {
		return err
	}

	pub := kp.Public.CompressedBytes()
	if err := writeNew(s.path(name, publicSuffix), []byte(hex.EncodeToString(pub[:])+"\n"), 0o644); err != nil {
		// A private file without its public half would block every retry.
		_ = os.Remove(s.path(name, privateSuffix))
		return err
	}
	return nil
}

// LoadSecretKey loads the secret key stored under name and checks it against
// the stored public key.
func (s *FileStore) LoadSecretKey(name string) (*p256.SecretKey, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path(name, privateSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	defer secure.Wipe(raw)

	sk, err := ParsePrivateKeyFile(raw)
	if err != nil {
		return nil, err
	}

	pub, err := s.LoadPublicKey(name)
	if err != nil {
		return nil, err
	}
	if !pub.Equal(sk.PublicKey()) {
		sk.Zeroize()
		return nil, ErrKeyMismatch
	}
	return sk, nil
}

// LoadPublicKey loads the public key stored under name. Any SEC1 form is accepted.
func (s *FileStore) LoadPublicKey(name string) (*p256.PublicKey, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path(name, publicSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}

	b, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key hex: %w", err)
	}
	pk, err := p256.NewPublicKey(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return pk, nil
}

// List returns the names of stored keys, sorted.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read key directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), privateSuffix); ok && !e.IsDir() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// ParsePrivateKeyFile parses the "hexkey:curve" private key format.
func ParsePrivateKeyFile(content []byte) (*p256.SecretKey, error) {
	// Work on content in place so no unwiped copy of the hex is made.
	hexKey, curve, ok := bytes.Cut(bytes.TrimSpace(content), []byte(":"))
	if !ok {
		return nil, errors.New("invalid private key format, expected 'hexkey:curve'")
	}
	if string(curve) != curveName {
		return nil, fmt.Errorf("unsupported curve: %s, only p256 is supported", curve)
	}

	var buf [p256.SecretKeySize]byte
	defer secure.Wipe32(&buf)
	if hex.DecodedLen(len(hexKey)) != len(buf) {
		return nil, fmt.Errorf("invalid private key length: expected %d hex characters", 2*len(buf))
	}
	if _, err := hex.Decode(buf[:], hexKey); err != nil {
		return nil, fmt.Errorf("failed to decode private key hex: %w", err)
	}

	sk, err := p256.NewSecretKey(buf[:])
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return sk, nil
}

func (s *FileStore) path(name, suffix string) string {
	return filepath.Join(s.Dir, name+suffix)
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKeyName, name)
	}
	return nil
}

func writeNew(path string, content []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrKeyExists, filepath.Base(path))
		}
		return fmt.Errorf("failed to create key file: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return f.Close()
}
