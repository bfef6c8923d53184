package preload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"

	"artfetch/utils"
)

// Refuse to buffer artwork larger than this; backdrops top out well below it.
const maxImageBytes = 20 << 20

// ImageWarmer fetches and decodes artwork at the exact dimensions the UI
// will render, so first paint and crossfades hit the decoded-image cache
// instead of decoding mid-animation. Decoded images are kept for the
// process lifetime keyed by (url, width, height).
type ImageWarmer struct {
	httpc *http.Client

	mu    sync.RWMutex
	cache map[warmKey]image.Image
}

type warmKey struct {
	url    string
	width  int
	height int
}

// NewImageWarmer creates a warmer. Pass a nil http.Client for a default
// with a sane timeout.
func NewImageWarmer(httpc *http.Client) *ImageWarmer {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &ImageWarmer{httpc: httpc, cache: make(map[warmKey]image.Image)}
}

// Cached reports whether a decoded image is already held for the key.
func (w *ImageWarmer) Cached(url string, width, height int) bool {
	key := warmKey{url: url, width: clampDim(width), height: clampDim(height)}
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.cache[key]
	return ok
}

// Image returns the decoded image for the key, or nil when not warmed.
func (w *ImageWarmer) Image(url string, width, height int) image.Image {
	key := warmKey{url: url, width: clampDim(width), height: clampDim(height)}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cache[key]
}

// WarmImage fetches the artwork, decodes it, and scales it to the target
// dimensions, caching the result. Warming the same key twice is a no-op.
func (w *ImageWarmer) WarmImage(ctx context.Context, rawURL string, width, height int) error {
	width, height = clampDim(width), clampDim(height)
	key := warmKey{url: rawURL, width: width, height: height}

	w.mu.RLock()
	_, done := w.cache[key]
	w.mu.RUnlock()
	if done {
		return nil
	}

	data, err := w.fetch(ctx, rawURL)
	if err != nil {
		return err
	}

	src, err := decodeImage(data)
	if err != nil {
		return err
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	w.mu.Lock()
	w.cache[key] = dst
	w.mu.Unlock()
	return nil
}

func (w *ImageWarmer) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := utils.ValidateImageURL(rawURL); err != nil {
		return nil, fmt.Errorf("warm %s: %w", rawURL, err)
	}

	// Some upstream art URLs carry raw spaces.
	encoded, err := utils.EncodeURLWithSpaces(rawURL)
	if err != nil {
		return nil, fmt.Errorf("warm %s: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, encoded, nil)
	if err != nil {
		return nil, err
	}

	resp, err := w.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("warm %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("warm %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("warm %s: read: %w", rawURL, err)
	}
	return data, nil
}

// decodeImage sniffs the content type rather than trusting headers or file
// extensions, then decodes with the matching codec.
func decodeImage(data []byte) (image.Image, error) {
	kind := mimetype.Detect(data)
	switch {
	case kind.Is("image/jpeg"):
		return jpeg.Decode(bytes.NewReader(data))
	case kind.Is("image/png"):
		return png.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported image type %s", kind.String())
	}
}

func clampDim(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
