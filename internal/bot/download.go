package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultDownloadTimeout is the default timeout for photo downloads
	DefaultDownloadTimeout = 30 * time.Second
	// DefaultMaxImageSize is the default maximum image size (10MB)
	DefaultMaxImageSize = 10 * 1024 * 1024
)

// ImageDownloader fetches photos that users send to the bot.
type ImageDownloader struct {
	client  *resty.Client
	maxSize int64
}

// NewImageDownloader creates a new ImageDownloader with default settings.
func NewImageDownloader() *ImageDownloader {
	return &ImageDownloader{
		client:  resty.New().SetDebug(false).SetTimeout(DefaultDownloadTimeout),
		maxSize: DefaultMaxImageSize,
	}
}

// WithMaxSize sets a custom maximum file size.
func (d *ImageDownloader) WithMaxSize(maxSize int64) *ImageDownloader {
	d.maxSize = maxSize
	return d
}

// DownloadFromURL downloads image data from a URL and enforces the size limit.
func (d *ImageDownloader) DownloadFromURL(ctx context.Context, imageURL string) ([]byte, error) {
	res, err := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	body := res.RawBody()
	defer body.Close()

	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d", res.StatusCode())
	}

	contentType := res.Header().Get("Content-Type")
	// Telegram serves photos as application/octet-stream
	if contentType != "" && !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "application/octet-stream") {
		return nil, fmt.Errorf("invalid content type: expected image/*, got %s", contentType)
	}

	if res.RawResponse.ContentLength > d.maxSize {
		return nil, fmt.Errorf("image too large: %d bytes exceeds limit of %d bytes", res.RawResponse.ContentLength, d.maxSize)
	}

	// The limit also holds when Content-Length is missing or wrong
	data, err := io.ReadAll(io.LimitReader(body, d.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > d.maxSize {
		return nil, fmt.Errorf("image too large: exceeds limit of %d bytes", d.maxSize)
	}

	return data, nil
}

// DownloadFromTelegramFileID downloads an image from Telegram using a file ID.
// It uses the provided function to resolve the file ID to a direct URL.
func (d *ImageDownloader) DownloadFromTelegramFileID(
	ctx context.Context,
	getFileDirectURL func(fileID string) (string, error),
	fileID string,
) ([]byte, error) {
	log.Info().Str("fileID", fileID).Msg("downloading telegram file")

	url, err := getFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file URL: %w", err)
	}

	return d.DownloadFromURL(ctx, url)
}
