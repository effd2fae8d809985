package local

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/storage/object"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/util"
)

// Store implements object.Store on the local filesystem.
type Store struct {
	baseDir string
}

// New creates a local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Save writes the reader under the owner's hashed namespace with a random prefix.
func (s *Store) Save(ctx context.Context, owner, fileName string, r io.Reader) (object.Stored, error) {
	sanitizedName, err := util.SanitizeImageName(fileName)
	if err != nil {
		return object.Stored{}, eris.Wrap(err, "local store: sanitize file name")
	}
	if err := ctx.Err(); err != nil {
		return object.Stored{}, err
	}

	ownerKey := util.HashUserKey(owner)
	dirPath := filepath.Join(s.baseDir, ownerKey)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return object.Stored{}, eris.Wrap(err, "local store: mkdir")
	}

	finalName := fmt.Sprintf("%s_%s", randomID(), sanitizedName)
	f, err := os.OpenFile(filepath.Join(dirPath, finalName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return object.Stored{}, eris.Wrap(err, "local store: open file")
	}
	defer f.Close()

	var sniff [512]byte
	n, readErr := io.ReadFull(r, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return object.Stored{}, eris.Wrap(readErr, "local store: read sniff")
	}
	if _, err := f.Write(sniff[:n]); err != nil {
		return object.Stored{}, eris.Wrap(err, "local store: write sniff")
	}
	written, err := io.Copy(f, r)
	if err != nil {
		return object.Stored{}, eris.Wrap(err, "local store: write body")
	}

	return object.Stored{
		Key:         filepath.ToSlash(filepath.Join(ownerKey, finalName)),
		SizeBytes:   int64(n) + written,
		ContentType: http.DetectContentType(sniff[:n]),
	}, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, eris.New("local store: invalid storage key")
	}
	return os.Open(filepath.Join(s.baseDir, clean))
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

var _ object.Store = (*Store)(nil)
