// Package media stores downloaded files on disk and tracks them as
// media_assets rows owned by a model.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"coanime/internal/microservices/http-api/models"
)

const (
	defaultMaxBytes = 10 << 20
	defaultTimeout  = 15 * time.Second
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AssetStore persists asset rows, one per (model type, model id, collection).
type AssetStore interface {
	UpsertAsset(ctx context.Context, a *models.MediaAsset) error
}

type Config struct {
	Root     string
	MaxBytes int64
	Timeout  time.Duration
}

// Library downloads remote images into Root/<model>/<id>/<collection>/.
type Library struct {
	root     string
	maxBytes int64
	http     *http.Client
	assets   AssetStore
	logger   *zap.Logger
}

func NewLibrary(cfg Config, assets AssetStore, logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Library{
		root:     cfg.Root,
		maxBytes: maxBytes,
		http:     &http.Client{Timeout: timeout},
		assets:   assets,
		logger:   logger.Named("media"),
	}
}

// AttachFromURL downloads sourceURL and stores it as the single asset of the
// owner's collection, named baseName plus an extension derived from the
// content. A previous file in the collection is replaced.
func (l *Library) AttachFromURL(ctx context.Context, modelType string, modelID uint, collection, sourceURL, baseName string) (*models.MediaAsset, error) {
	data, mimeType, err := l.download(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	ext, ok := extensions[mimeType]
	if !ok {
		return nil, fmt.Errorf("unsupported media type %q from %s", mimeType, sourceURL)
	}

	dir := filepath.Join(l.root, modelType, fmt.Sprint(modelID), collection)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}

	fileName := baseName + ext
	destPath := filepath.Join(dir, fileName)

	if err := removeOthers(dir, fileName); err != nil {
		return nil, err
	}

	// write then rename so readers never see a partial file
	tmp := destPath + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("write media file: %w", err)
	}
	if err := os.Rename(tmp, destPath); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("move media file: %w", err)
	}

	asset := &models.MediaAsset{
		ModelType:  modelType,
		ModelID:    modelID,
		Collection: collection,
		FileName:   fileName,
		Path:       destPath,
		MimeType:   mimeType,
		Size:       int64(len(data)),
		SourceURL:  sourceURL,
	}
	if err := l.assets.UpsertAsset(ctx, asset); err != nil {
		return nil, err
	}

	l.logger.Info("media attached",
		zap.String("model_type", modelType),
		zap.Uint("model_id", modelID),
		zap.String("collection", collection),
		zap.String("file", fileName),
		zap.Int64("size", asset.Size),
	)
	return asset, nil
}

func (l *Library) download(ctx context.Context, sourceURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build download request: %w", err)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download %s returned %d", sourceURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", sourceURL, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, "", fmt.Errorf("download %s exceeds %d bytes", sourceURL, l.maxBytes)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("download %s: empty body", sourceURL)
	}

	mimeType := http.DetectContentType(data)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return data, mimeType, nil
}

// removeOthers deletes files of a previous asset in a single-file collection.
func removeOthers(dir, keep string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list media dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || e.Name() == keep {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("remove stale media file: %w", err)
		}
	}
	return nil
}
