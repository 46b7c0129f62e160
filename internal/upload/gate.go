// Package upload implements the asset upload gate: constraint checks, byte
// persistence, and the URL path under which the static layer serves the
// result. The gate knows nothing about posts; callers embed the returned
// reference wherever they like.
package upload

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// MaxAssetBytes is the size cap for a single uploaded asset.
const MaxAssetBytes = 10 << 20 // 10 MiB

// URLPrefix is the path prefix under which stored assets are served.
const URLPrefix = "/uploads"

// Gate validates and persists uploaded assets.
type Gate struct {
	dir string
}

// NewGate creates a Gate storing assets under dir, creating it if needed.
func NewGate(dir string) (*Gate, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Gate{dir: dir}, nil
}

// Dir returns the directory assets are persisted under.
func (g *Gate) Dir() string {
	return g.dir
}

// Store validates the asset and persists it under a freshly generated name.
// The client-supplied filename is never consulted; the stored name carries no
// attacker-controlled component. Constraint violations return an
// UPLOAD_REJECTED error; a write failure is an internal error, fatal to the
// request but not the process.
func (g *Gate) Store(ctx context.Context, content []byte, declaredMime string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", models.NewInternalError(err)
	}
	if int64(len(content)) > MaxAssetBytes {
		return "", models.NewUploadRejectedError("File exceeds the 10 MiB size limit")
	}
	if !strings.HasPrefix(declaredMime, "image/") {
		return "", models.NewUploadRejectedError("Only image files are allowed")
	}

	name := strings.ReplaceAll(uuid.New().String(), "-", "")
	if err := os.WriteFile(filepath.Join(g.dir, name), content, 0o644); err != nil {
		return "", models.NewInternalError(err)
	}

	return path.Join(URLPrefix, name), nil
}
