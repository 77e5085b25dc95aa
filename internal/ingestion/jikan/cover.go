package jikan

import (
	"context"
	"fmt"
	"strings"

	"coanime/internal/microservices/http-api/models"
)

// NoImageURL is the catalog's placeholder for titles without official art.
const NoImageURL = "https://cdn.myanimelist.net/img/sp/icon/apple-touch-icon-256.png"

// titleModelType is the polymorphic owner type of title media.
const titleModelType = "titles"

// UsableCoverURL reports whether u is a real cover image.
func UsableCoverURL(u string) bool {
	u = strings.TrimSpace(u)
	return u != "" && u != NoImageURL && !strings.HasSuffix(u, "/questionmark_23.gif")
}

// MediaAttacher downloads a remote file into a model's media collection.
type MediaAttacher interface {
	AttachFromURL(ctx context.Context, modelType string, modelID uint, collection, sourceURL, baseName string) (*models.MediaAsset, error)
}

// CoverAttacher stores catalog images as a title's single cover asset.
type CoverAttacher struct {
	media MediaAttacher
}

func NewCoverAttacher(media MediaAttacher) *CoverAttacher {
	return &CoverAttacher{media: media}
}

// AttachCover downloads imageURL as the cover of t, named "<type-slug>-<id>".
func (c *CoverAttacher) AttachCover(ctx context.Context, t *models.Title, imageURL string) (*models.MediaAsset, error) {
	if t.ID == 0 {
		return nil, fmt.Errorf("attach cover: title not saved")
	}
	if !UsableCoverURL(imageURL) {
		return nil, fmt.Errorf("attach cover: unusable image url %q", imageURL)
	}

	asset, err := c.media.AttachFromURL(ctx, titleModelType, t.ID, models.CollectionCover, imageURL, CoverBaseName(t))
	if err != nil {
		return nil, fmt.Errorf("attach cover to title %d: %w", t.ID, err)
	}
	return asset, nil
}

// CoverBaseName is the deterministic file name (without extension) of a title cover.
func CoverBaseName(t *models.Title) string {
	slug := ""
	if t.Type != nil {
		slug = t.Type.Slug
	}
	if slug == "" {
		for _, s := range TypeSeeds {
			if s.ID == t.TypeID {
				slug = s.Slug
				break
			}
		}
	}
	if slug == "" {
		slug = "title"
	}
	return fmt.Sprintf("%s-%d", slug, t.ID)
}
