// internal/launch/metadata.go
package launch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"launchpilot/internal/launchpad"
)

const (
	imageFetchTimeout = 15 * time.Second
	maxImageSize      = 10 << 20 // 10 MB, the IPFS gateway rejects more anyway
	defaultImageName  = "token.png"
)

// placeholderPNG is a 1x1 transparent PNG used when the user provides
// no image at all. Launching without any image breaks most explorers.
var placeholderPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0b, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda, 0x63, 0x60, 0x00, 0x02, 0x00,
	0x00, 0x05, 0x00, 0x01, 0xe9, 0xfa, 0xdc, 0xd8, 0x00, 0x00, 0x00, 0x00,
	0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// MetadataAPI is the slice of the launchpad API the publisher needs.
type MetadataAPI interface {
	UploadTokenMetadata(ctx context.Context, meta launchpad.TokenMetadata, imageName string, image []byte) (*launchpad.UploadResult, error)
}

// Publisher uploads the token image and metadata JSON to IPFS through
// the launchpad API. Uploads are irreversible: once pinned, metadata
// stays pinned even if the launch transaction never lands, leaving an
// orphaned record that references a mint that does not exist.
type Publisher struct {
	api        MetadataAPI
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPublisher создает новый публикатор метаданных.
func NewPublisher(api MetadataAPI, logger *zap.Logger) *Publisher {
	return &Publisher{
		api:        api,
		httpClient: &http.Client{Timeout: imageFetchTimeout},
		logger:     logger.Named("metadata"),
	}
}

// Publish resolves the token image and uploads it together with the
// metadata. Image precedence: URL, then raw bytes, then placeholder.
func (p *Publisher) Publish(ctx context.Context, params *Params) (*launchpad.UploadResult, error) {
	image, imageName, err := p.resolveImage(ctx, params)
	if err != nil {
		return nil, err
	}

	meta := launchpad.TokenMetadata{
		Name:        strings.TrimSpace(params.Name),
		Symbol:      params.NormalizedSymbol(),
		Description: params.Description,
		Twitter:     params.Twitter,
		Telegram:    params.Telegram,
		Website:     params.Website,
	}

	p.logger.Info("📤 Uploading token metadata",
		zap.String("name", meta.Name),
		zap.String("symbol", meta.Symbol),
		zap.String("image", imageName),
		zap.Int("image_bytes", len(image)))

	result, err := p.api.UploadTokenMetadata(ctx, meta, imageName, image)
	if err != nil {
		return nil, fmt.Errorf("failed to upload metadata: %w", err)
	}

	p.logger.Info("✅ Metadata published",
		zap.String("metadata_uri", result.MetadataURI),
		zap.String("image_uri", result.ImageURI))

	return result, nil
}

// resolveImage picks the image by precedence. A URL that fails to
// download is an error, not a fallthrough: the user asked for that
// image specifically.
func (p *Publisher) resolveImage(ctx context.Context, params *Params) ([]byte, string, error) {
	if params.ImageURL != "" {
		image, name, err := p.fetchImage(ctx, params.ImageURL)
		if err != nil {
			return nil, "", &ImageFetchError{URL: params.ImageURL, Err: err}
		}
		return image, name, nil
	}

	if len(params.ImageData) > 0 {
		name := params.ImageName
		if name == "" {
			name = defaultImageName
		}
		return params.ImageData, name, nil
	}

	p.logger.Warn("⚠️ No token image provided, using placeholder")
	return placeholderPNG, defaultImageName, nil
}

// fetchImage загружает изображение по URL.
func (p *Publisher) fetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	image, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read body: %w", err)
	}
	if len(image) > maxImageSize {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageSize)
	}
	if len(image) == 0 {
		return nil, "", fmt.Errorf("empty response body")
	}

	name := path.Base(req.URL.Path)
	if name == "" || name == "." || name == "/" {
		name = defaultImageName
	}
	return image, name, nil
}
