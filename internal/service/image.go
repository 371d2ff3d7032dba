package service

import (
	"context"
	"strings"
	"time"

	"github.com/pageza/foodgram/backend/internal/logging"
)

// Presigner signs object keys for temporary read access.
type Presigner interface {
	GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// ImageResolver turns stored recipe images into URLs clients can load.
// Absolute URLs and inline data pass through untouched; anything else is an
// object key in the image bucket.
type ImageResolver struct {
	presigner Presigner
	ttl       time.Duration
}

var _ IImageResolver = (*ImageResolver)(nil)

// NewImageResolver returns a resolver. A nil presigner disables signing.
func NewImageResolver(presigner Presigner, ttl time.Duration) *ImageResolver {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ImageResolver{presigner: presigner, ttl: ttl}
}

func (r *ImageResolver) Resolve(ctx context.Context, image string) string {
	if r == nil || r.presigner == nil || image == "" || isInlineOrAbsolute(image) {
		return image
	}
	url, err := r.presigner.GeneratePresignedURL(ctx, strings.TrimPrefix(image, "/"), r.ttl)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("image", image).Msg("failed to presign image")
		return image
	}
	return url
}

func isInlineOrAbsolute(image string) bool {
	lower := strings.ToLower(image)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:")
}
