package jobpage

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resumatch/internal/logger"
)

const (
	DefaultUserAgent = "spigell/resumatch (+https://github.com/spigell/resumatch)"
	// DefaultMaxBodySize caps the downloaded page at 5 MiB.
	DefaultMaxBodySize = 5 << 20

	acceptEncoding = "gzip"
	acceptHTML     = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"
)

// ErrBadStatus is returned when the job page answers with anything but 200 OK.
var ErrBadStatus = errors.New("bad status")

type Client struct {
	HTTPClient  *http.Client
	UserAgent   string
	MaxBodySize int64

	logger *zap.Logger
}

func New(log *zap.Logger, userAgent string) *Client {
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		UserAgent:   userAgent,
		MaxBodySize: DefaultMaxBodySize,
		logger:      logger.WithFields(log),
	}
}

// Fetch downloads the job page and returns its raw HTML.
func (c *Client) Fetch(ctx context.Context, pageURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req = c.setHeaders(req)

	c.logger.Debug("fetch job page", zap.String("url", u.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	limit := c.MaxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}

	data, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return "", fmt.Errorf("read job page: %w", err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("job page is larger than %d bytes", limit)
	}

	c.logger.Debug("job page fetched",
		zap.Int("bytes", len(data)),
		zap.String("content_type", resp.Header.Get("Content-Type")),
	)

	return string(data), nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", acceptHTML)
	// Setting the header disables the transport's transparent decompression.
	req.Header.Set("Accept-Encoding", acceptEncoding)

	return req
}
