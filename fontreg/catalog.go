package fontreg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Catalog is a best-effort source of downloadable font binaries. A
// failed fetch is a resolution-tier failure, never a top-level error;
// implementations make a single attempt with no retry or backoff.
type Catalog interface {
	Fetch(ctx context.Context, family string, weight int, italic bool) ([]byte, error)
}

const (
	googleFontsBaseURL = "https://fonts.googleapis.com"

	// The css2 endpoint serves legacy formats unless the request looks
	// like it comes from a modern browser.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	maxCSSBytes  = 1 << 20  // 1 MiB
	maxFontBytes = 32 << 20 // 32 MiB
)

// fontURLPattern extracts the binary URL from an @font-face rule.
var fontURLPattern = regexp.MustCompile(`url\((https?://[^)]+)\)`)

// GoogleFonts fetches font binaries from the Google Fonts css2 API:
// one request for the stylesheet describing the family at the wanted
// weight, one for the binary it points at.
type GoogleFonts struct {
	// Client is the HTTP client used for both requests. Defaults to a
	// client with a 10-second timeout.
	Client *http.Client

	// BaseURL overrides the css2 endpoint, mainly for tests.
	BaseURL string

	// UserAgent is sent with the stylesheet request.
	UserAgent string

	// CacheDir, when set, caches downloaded binaries on disk keyed by
	// family and weight, so repeated sessions skip the network.
	CacheDir string
}

// NewGoogleFonts returns a catalog client with default settings.
func NewGoogleFonts() *GoogleFonts {
	return &GoogleFonts{
		Client:    &http.Client{Timeout: 10 * time.Second},
		BaseURL:   googleFontsBaseURL,
		UserAgent: defaultUserAgent,
	}
}

// Fetch implements Catalog.
func (g *GoogleFonts) Fetch(ctx context.Context, family string, weight int, italic bool) ([]byte, error) {
	fam := strings.ReplaceAll(strings.TrimSpace(family), " ", "+")
	if fam == "" {
		return nil, fmt.Errorf("empty font family")
	}

	if data, ok := g.readCache(fam, weight, italic); ok {
		return data, nil
	}

	axis := fmt.Sprintf("wght@%d", weight)
	if italic {
		axis = fmt.Sprintf("ital,wght@1,%d", weight)
	}
	cssURL := fmt.Sprintf("%s/css2?family=%s:%s&display=swap", g.baseURL(), fam, axis)

	css, err := g.get(ctx, cssURL, g.UserAgent, maxCSSBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stylesheet for %s: %w", family, err)
	}

	m := fontURLPattern.FindSubmatch(css)
	if m == nil {
		return nil, fmt.Errorf("no font URL in stylesheet for %s %d", family, weight)
	}

	data, err := g.get(ctx, string(m[1]), "", maxFontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to download font %s %d: %w", family, weight, err)
	}

	g.writeCache(fam, weight, italic, data)
	return data, nil
}

func (g *GoogleFonts) baseURL() string {
	if g.BaseURL != "" {
		return g.BaseURL
	}
	return googleFontsBaseURL
}

func (g *GoogleFonts) client() *http.Client {
	if g.Client != nil {
		return g.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (g *GoogleFonts) get(ctx context.Context, url, userAgent string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := g.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

func (g *GoogleFonts) cachePath(fam string, weight int, italic bool) string {
	suffix := ""
	if italic {
		suffix = "i"
	}
	return filepath.Join(g.CacheDir, fmt.Sprintf("%s-%d%s.ttf", fam, weight, suffix))
}

func (g *GoogleFonts) readCache(fam string, weight int, italic bool) ([]byte, bool) {
	if g.CacheDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(g.cachePath(fam, weight, italic))
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (g *GoogleFonts) writeCache(fam string, weight int, italic bool, data []byte) {
	if g.CacheDir == "" {
		return
	}
	// Best effort: a failed cache write never fails the fetch.
	if err := os.MkdirAll(g.CacheDir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(g.cachePath(fam, weight, italic), data, 0o644)
}
