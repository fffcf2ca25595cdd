package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/robert-malhotra/go-panoramax-client/pkg/panoramax"
)

// ProgressFunc reports cumulative bytes downloaded and the expected total.
// The total is -1 when the server does not announce a length.
type ProgressFunc func(downloaded, total int64)

// S3API is the part of the S3 client used to read s3:// assets.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// WithS3Client sets the client used for s3:// hrefs. Without it the default
// AWS configuration is loaded on first use.
func WithS3Client(api S3API) ClientOption {
	return func(c *Client) {
		if api != nil {
			c.s3 = &s3Source{api: api}
		}
	}
}

// s3Source builds the default S3 client lazily, so clients that never see
// an s3:// href never load AWS configuration.
type s3Source struct {
	mu  sync.Mutex
	api S3API
}

func newS3Source() *s3Source { return &s3Source{} }

func (s *s3Source) get(ctx context.Context) (S3API, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.api != nil {
		return s.api, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	s.api = s3.NewFromConfig(cfg)
	return s.api, nil
}

// FetchImageBytes downloads the image a link points to. Relative hrefs
// resolve against endpoint. http(s) responses must be 200 or 206; bodies over
// the configured cap fail with ErrTooLarge.
func (c *Client) FetchImageBytes(ctx context.Context, endpoint string, link panoramax.Link) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.streamImage(ctx, endpoint, link, &buf, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DownloadImage writes the image a link points to into destPath, reporting
// progress when progress is non-nil. A partial file is removed on failure.
func (c *Client) DownloadImage(ctx context.Context, endpoint string, link panoramax.Link, destPath string, progress ProgressFunc) (err error) {
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		closeErr := out.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(destPath)
		}
	}()
	return c.streamImage(ctx, endpoint, link, out, progress)
}

func (c *Client) streamImage(ctx context.Context, endpoint string, link panoramax.Link, dst io.Writer, progress ProgressFunc) error {
	u, err := c.resolveHref(endpoint, link)
	if err != nil {
		return err
	}

	switch u.Scheme {
	case "http", "https":
		return c.streamHTTP(ctx, u.String(), dst, progress)
	case "s3":
		return c.streamS3(ctx, u, dst, progress)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func (c *Client) resolveHref(endpoint string, link panoramax.Link) (*url.URL, error) {
	if link.Href == nil || link.Href.String() == "" {
		return nil, ErrNoHref
	}
	if link.Href.IsAbs() {
		return link.Href, nil
	}
	base, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(link.Href), nil
}

func (c *Client) streamHTTP(ctx context.Context, assetURL string, dst io.Writer, progress ProgressFunc) error {
	resp, err := c.doRequest(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return &StatusError{Method: http.MethodGet, URL: assetURL, StatusCode: resp.StatusCode}
	}
	if resp.ContentLength > c.maxImageBytes {
		return fmt.Errorf("%w: %s announces %d bytes", ErrTooLarge, assetURL, resp.ContentLength)
	}

	if err := c.copyCapped(ctx, dst, resp.Body, resp.ContentLength, progress); err != nil {
		return fmt.Errorf("download %s: %w", assetURL, err)
	}
	return nil
}

func (c *Client) streamS3(ctx context.Context, u *url.URL, dst io.Writer, progress ProgressFunc) error {
	api, err := c.s3.get(ctx)
	if err != nil {
		return err
	}

	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return fmt.Errorf("invalid s3 href %q: bucket and key required", u.String())
	}

	result, err := api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: s3 get %s: %w", ErrTransport, u, err)
	}
	defer result.Body.Close()

	total := int64(-1)
	if result.ContentLength != nil {
		total = *result.ContentLength
	}
	if total > c.maxImageBytes {
		return fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, u, total)
	}

	if err := c.copyCapped(ctx, dst, result.Body, total, progress); err != nil {
		return fmt.Errorf("download %s: %w", u, err)
	}
	return nil
}

// copyCapped copies at most maxImageBytes from src. Read failures are
// transport failures; write failures are returned as they are.
func (c *Client) copyCapped(ctx context.Context, dst io.Writer, src io.Reader, total int64, progress ProgressFunc) error {
	limited := io.LimitReader(src, c.maxImageBytes+1)
	n, err := copyWithProgress(ctx, dst, limited, total, progress)
	if err != nil {
		var rerr readError
		if errors.As(err, &rerr) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %w", ErrTransport, rerr.err)
		}
		return err
	}
	if n > c.maxImageBytes {
		return fmt.Errorf("%w: more than %d bytes", ErrTooLarge, c.maxImageBytes)
	}
	return nil
}

type readError struct{ err error }

func (e readError) Error() string { return e.err.Error() }
func (e readError) Unwrap() error { return e.err }

func copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, progress ProgressFunc) (int64, error) {
	const defaultBufferSize = 32 * 1024
	buf := make([]byte, defaultBufferSize)
	var written int64

	if progress != nil {
		progress(0, total)
	}

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			w, writeErr := dst.Write(buf[:n])
			if writeErr != nil {
				return written, writeErr
			}
			if w != n {
				return written, io.ErrShortWrite
			}
			written += int64(w)
			if progress != nil {
				progress(written, total)
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return written, nil
			}
			return written, readError{err: readErr}
		}
	}
}
