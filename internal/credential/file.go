package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/saulo-duarte/quizclient/internal/config"
	"golang.org/x/oauth2"
)

type fileStore struct {
	mu     sync.Mutex
	path   string
	cipher *config.Cipher
}

// NewFileStore keeps the pair in a JSON file. With a nil cipher values are stored as-is.
func NewFileStore(path string, cipher *config.Cipher) Store {
	return &fileStore{path: path, cipher: cipher}
}

func (s *fileStore) Load(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode credentials: %w", err)
	}

	access, refresh := values[KeyAccess], values[KeyRefresh]
	if !complete(access, refresh) {
		return nil, ErrNotFound
	}

	if s.cipher != nil {
		if access, err = s.cipher.Decrypt(access); err != nil {
			return nil, fmt.Errorf("decrypt access credential: %w", err)
		}
		if refresh, err = s.cipher.Decrypt(refresh); err != nil {
			return nil, fmt.Errorf("decrypt refresh credential: %w", err)
		}
	}
	return NewToken(access, refresh), nil
}

func (s *fileStore) Save(ctx context.Context, token *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	access, refresh := token.AccessToken, token.RefreshToken
	if s.cipher != nil {
		var err error
		if access, err = s.cipher.Encrypt(access); err != nil {
			return fmt.Errorf("encrypt access credential: %w", err)
		}
		if refresh, err = s.cipher.Encrypt(refresh); err != nil {
			return fmt.Errorf("encrypt refresh credential: %w", err)
		}
	}

	data, err := json.Marshal(map[string]string{KeyAccess: access, KeyRefresh: refresh})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp credentials: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *fileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
