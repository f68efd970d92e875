// internal/launch/metadata_test.go
package launch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"launchpilot/internal/launchpad"
)

type mockMetadataAPI struct {
	calls    int
	gotMeta  launchpad.TokenMetadata
	gotName  string
	gotImage []byte
}

func (m *mockMetadataAPI) UploadTokenMetadata(ctx context.Context, meta launchpad.TokenMetadata, imageName string, image []byte) (*launchpad.UploadResult, error) {
	m.calls++
	m.gotMeta = meta
	m.gotName = imageName
	m.gotImage = image
	return &launchpad.UploadResult{
		MetadataURI: "ipfs://bafy-metadata",
		ImageURI:    "ipfs://bafy-image",
	}, nil
}

func TestPublishImageFromURL(t *testing.T) {
	served := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assets/logo.png", r.URL.Path)
		w.Write(served)
	}))
	defer srv.Close()

	api := &mockMetadataAPI{}
	pub := NewPublisher(api, zap.NewNop())

	// The URL wins even when raw bytes are also present.
	result, err := pub.Publish(context.Background(), &Params{
		Name:      "Test Token",
		Symbol:    "TEST",
		ImageURL:  srv.URL + "/assets/logo.png",
		ImageData: []byte("should not be used"),
	})
	require.NoError(t, err)

	assert.Equal(t, served, api.gotImage)
	assert.Equal(t, "logo.png", api.gotName)
	assert.Equal(t, "ipfs://bafy-metadata", result.MetadataURI)
}

func TestPublishImageFetchFailedIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	api := &mockMetadataAPI{}
	pub := NewPublisher(api, zap.NewNop())

	// Raw bytes are present, but a failing URL must not fall through
	// to them: the user asked for that exact image.
	_, err := pub.Publish(context.Background(), &Params{
		Name:      "Test Token",
		Symbol:    "TEST",
		ImageURL:  srv.URL + "/gone.png",
		ImageData: []byte("fallback that must stay unused"),
	})

	var fetchErr *ImageFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.URL, "/gone.png")
	assert.Zero(t, api.calls, "nothing should be uploaded after a failed image fetch")
}

func TestPublishImageFromBuffer(t *testing.T) {
	api := &mockMetadataAPI{}
	pub := NewPublisher(api, zap.NewNop())

	_, err := pub.Publish(context.Background(), &Params{
		Name:      "Test Token",
		Symbol:    "TEST",
		ImageData: []byte{1, 2, 3, 4},
		ImageName: "art.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, []byte{1, 2, 3, 4}, api.gotImage)
	assert.Equal(t, "art.jpg", api.gotName)
}

func TestPublishPlaceholderWhenNoImage(t *testing.T) {
	api := &mockMetadataAPI{}
	pub := NewPublisher(api, zap.NewNop())

	_, err := pub.Publish(context.Background(), &Params{
		Name:   "Test Token",
		Symbol: "TEST",
	})
	require.NoError(t, err)

	assert.Equal(t, placeholderPNG, api.gotImage)
	assert.Equal(t, defaultImageName, api.gotName)
}

func TestPublishNormalizesMetadata(t *testing.T) {
	api := &mockMetadataAPI{}
	pub := NewPublisher(api, zap.NewNop())

	_, err := pub.Publish(context.Background(), &Params{
		Name:    "  Test Token  ",
		Symbol:  "$pepe",
		Twitter: "https://x.com/pepe",
	})
	require.NoError(t, err)

	assert.Equal(t, "Test Token", api.gotMeta.Name)
	assert.Equal(t, "PEPE", api.gotMeta.Symbol)
	assert.Equal(t, "https://x.com/pepe", api.gotMeta.Twitter)
	assert.Empty(t, api.gotMeta.Telegram)
}

func TestPublishRejectsEmptyImageBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 with no body
	}))
	defer srv.Close()

	pub := NewPublisher(&mockMetadataAPI{}, zap.NewNop())
	_, err := pub.Publish(context.Background(), &Params{
		Name:     "Test Token",
		Symbol:   "TEST",
		ImageURL: srv.URL + "/empty.png",
	})

	var fetchErr *ImageFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Err.Error(), "empty")
}
