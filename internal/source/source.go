package source

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/nao1215/htmlgrader/internal/config"
	"golang.org/x/crypto/sha3"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// Origin identifies where a document came from.
type Origin string

// Document origins.
const (
	OriginFile Origin = "file"
	OriginURL  Origin = "url"
)

// Document is the raw payload of one HTML document plus its metadata.
type Document struct {
	// Origin is OriginFile or OriginURL.
	Origin Origin

	// Location is the file path or URL as given by the user.
	Location string

	// FinalURL is the URL after redirects. Empty for files.
	FinalURL string

	// StatusCode is the HTTP status. Zero for files.
	StatusCode int

	// ContentType is the Content-Type response header. Empty for files.
	ContentType string

	// Body is the document decoded to UTF-8.
	Body []byte

	// Truncated is true when the body exceeded the size limit.
	Truncated bool

	// Digest is the hex SHA3-256 of Body.
	Digest string
}

// ReadFile reads a local HTML document.
// A missing file yields a *config.MissingFileError.
func ReadFile(path string) (*Document, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // User-provided document path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &config.MissingFileError{Path: path}
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	body, err := decode(raw, "")
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return &Document{
		Origin:   OriginFile,
		Location: path,
		Body:     body,
		Digest:   Digest(body),
	}, nil
}

// Resolve obtains the document selected by cfg: the local file when
// cfg.File is set, otherwise the URL. With neither set it returns
// config.ErrNoSource. fetcher is only used for URLs and may be nil for files.
func Resolve(ctx context.Context, cfg *config.Config, fetcher *Fetcher) (*Document, error) {
	switch cfg.SourceType() {
	case "file":
		return ReadFile(cfg.File)
	case "url":
		if fetcher == nil {
			return nil, fmt.Errorf("no fetcher configured for %s", cfg.URL)
		}
		return fetcher.Fetch(ctx, cfg.URL)
	default:
		return nil, config.ErrNoSource
	}
}

// Digest returns the hex-encoded SHA3-256 of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// decode converts raw to UTF-8. A BOM or a Content-Type charset always
// wins. Otherwise valid UTF-8 is kept as is, and anything else is decoded
// with the <meta charset> declaration or the windows-1252 fallback.
func decode(raw []byte, contentType string) ([]byte, error) {
	if len(raw) == 0 {
		return raw, nil
	}

	// DetermineEncoding only sniffs the first 1024 bytes, so its UTF-8
	// detection cannot be trusted for the whole payload.
	e, _, certain := charset.DetermineEncoding(raw, contentType)
	if !certain && utf8.Valid(raw) {
		return raw, nil
	}
	if e == encoding.Nop {
		return raw, nil
	}
	return e.NewDecoder().Bytes(raw)
}

// trimPartialRune drops a trailing incomplete UTF-8 sequence left by cutting
// b at an arbitrary byte offset. b is returned unchanged when the trimmed
// result would still not be valid UTF-8.
func trimPartialRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return b
		}
		if utf8.Valid(b[:i]) {
			return b[:i]
		}
		return b
	}
	return b
}
