package storage

import (
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.uber.org/zap"
)

// CloudinaryURLResolver builds CDN delivery URLs, treating the stored path as
// the Cloudinary public ID. When a URL cannot be built it falls back.
type CloudinaryURLResolver struct {
	cld      *cloudinary.Cloudinary
	fallback URLResolver
	logger   *zap.Logger
}

func NewCloudinaryURLResolver(cloudName, apiKey, apiSecret string, fallback URLResolver, logger *zap.Logger) (*CloudinaryURLResolver, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryURLResolver{cld: cld, fallback: fallback, logger: logger}, nil
}

func (r *CloudinaryURLResolver) URL(path string) string {
	if path == "" {
		return ""
	}
	img, err := r.cld.Image(path)
	if err == nil {
		var url string
		if url, err = img.String(); err == nil {
			return url
		}
	}
	r.logger.Warn("Cloudinary URL failed, using fallback", zap.String("path", path), zap.Error(err))
	return r.fallback.URL(path)
}

// NewURLResolver picks Cloudinary when a cloud name is configured and the
// static resolver otherwise.
func NewURLResolver(appURL, cloudName, apiKey, apiSecret string, logger *zap.Logger) (URLResolver, error) {
	static := StaticURLResolver{BaseURL: appURL}
	if cloudName == "" {
		return static, nil
	}
	return NewCloudinaryURLResolver(cloudName, apiKey, apiSecret, static, logger)
}
