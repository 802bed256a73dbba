package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ArtifactStorage persists uploaded image artifacts and returns the generated
// file name. Artifacts are never cleaned up, including when the referencing
// product is deleted.
type ArtifactStorage interface {
	SaveArtifact(ctx context.Context, originalName string, content io.Reader) (name string, err error)
}

type LocalArtifactStorage struct {
	dir string
}

func CreateLocalArtifactStorage(dir string) (ArtifactStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &LocalArtifactStorage{dir: dir}, nil
}

func (s *LocalArtifactStorage) SaveArtifact(ctx context.Context, originalName string, content io.Reader) (name string, err error) {
	name = generateArtifactName(originalName)

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "SaveArtifact").Msg("")
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, content); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "SaveArtifact").Msg("")
		return "", err
	}

	return name, nil
}

// generateArtifactName prefixes the original file name with the ingestion
// time plus a random token so that concurrent uploads of the same file never
// overwrite each other. Path separators and ".." sequences are stripped from
// the client-supplied name before it is used.
func generateArtifactName(originalName string) string {
	base := filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))
	base = strings.ReplaceAll(base, "..", "")
	if base == "" || base == "." {
		base = "upload"
	}

	token := strings.SplitN(uuid.New().String(), "-", 2)[0]

	return fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), token, base)
}
