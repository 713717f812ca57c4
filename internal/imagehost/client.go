// Package imagehost re-hosts user-supplied product images on the configured
// image hosting service, so the application never serves third-party URLs.
package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Classified failures of the image pipeline. Handlers translate these into
// user-readable messages instead of a generic error.
var (
	// ErrNotHTTPS indicates a source URL that is not a valid https URL.
	ErrNotHTTPS = errors.New("imagehost: source must be a valid https url")
	// ErrBlockedHost indicates a loopback or private-network source host.
	ErrBlockedHost = errors.New("imagehost: source host is not allowed")
	// ErrNotImage indicates the source URL served an HTML page, not an image.
	ErrNotImage = errors.New("imagehost: source is a webpage, not an image")
	// ErrUnreachable indicates the source could not be fetched.
	ErrUnreachable = errors.New("imagehost: source unreachable")
	// ErrRejected indicates the hosting service refused the upload.
	ErrRejected = errors.New("imagehost: upload rejected")
)

const maxImageBytes = 10 << 20

// Client uploads images to the hosting service's HTTP API.
type Client struct {
	baseURL    string
	folder     string
	httpClient *http.Client
}

// NewClient constructs a new client. folder namespaces uploads on the host.
func NewClient(baseURL, folder string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		folder:  folder,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// A public URL must not redirect into a private network.
				if req.URL.Scheme != "https" || BlockedHost(req.URL.Hostname()) {
					return ErrBlockedHost
				}
				return nil
			},
		},
	}
}

// ValidateSource checks the source URL policy without fetching it.
func (c *Client) ValidateSource(rawURL string) error {
	return ValidateSource(rawURL)
}

// Rehost fetches the source image and uploads it to the hosting service,
// returning the hosted URL.
func (c *Client) Rehost(ctx context.Context, srcURL string) (string, error) {
	if err := ValidateSource(srcURL); err != nil {
		return "", err
	}

	data, contentType, err := c.fetch(ctx, srcURL)
	if err != nil {
		return "", err
	}

	return c.upload(ctx, srcURL, data, contentType)
}

func (c *Client) fetch(ctx context.Context, srcURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, ErrBlockedHost) {
			return nil, "", ErrBlockedHost
		}
		return nil, "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return nil, "", fmt.Errorf("%w: source returned status %d", ErrUnreachable, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "text/html"):
		return nil, "", ErrNotImage
	case !strings.HasPrefix(contentType, "image/"):
		return nil, "", fmt.Errorf("%w: unexpected content type %q", ErrNotImage, contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("%w: image exceeds %d bytes", ErrRejected, maxImageBytes)
	}
	return data, contentType, nil
}

func (c *Client) upload(ctx context.Context, srcURL string, data []byte, contentType string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName(srcURL))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.WriteField("folder", c.folder); err != nil {
		return "", err
	}
	if err := writer.WriteField("content_type", contentType); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRejected, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: host returned status %d", ErrRejected, resp.StatusCode)
	}

	var uploaded struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("%w: malformed host response", ErrRejected)
	}
	if uploaded.SecureURL == "" {
		return "", fmt.Errorf("%w: host response missing url", ErrRejected)
	}
	return uploaded.SecureURL, nil
}

func fileName(srcURL string) string {
	if u, err := url.Parse(srcURL); err == nil {
		if segs := strings.Split(strings.Trim(u.Path, "/"), "/"); len(segs) > 0 && segs[len(segs)-1] != "" {
			return segs[len(segs)-1]
		}
	}
	return "image"
}
