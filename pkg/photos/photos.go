// Package photos turns uploaded images into displayable data URIs.
//
// Every upload is sniffed, decoded, shrunk so its longer edge is at most
// Config.MaxEdge pixels, and re-encoded as JPEG.
package photos

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/google/uuid"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/grandtree/pkg/state"
)

// Config holds ingestion limits.
type Config struct {
	MaxEdge  int   `yaml:"max_edge" json:"max_edge"` // longer edge in pixels after resizing
	Quality  int   `yaml:"quality" json:"quality"`   // JPEG quality 1-100
	MaxBytes int64 `yaml:"max_bytes" json:"max_bytes"`
	// MaxPixels caps the declared width times height, checked from the
	// header before any pixel data is decoded.
	MaxPixels int `yaml:"max_pixels" json:"max_pixels"`
	MaxFiles  int `yaml:"max_files" json:"max_files"`
	Workers   int `yaml:"workers" json:"workers"`
}

// DefaultConfig caps the longer edge at 800px and encodes at quality 70.
func DefaultConfig() Config {
	return Config{
		MaxEdge:  800,
		Quality:  70,
		MaxBytes:  20 << 20,
		MaxPixels: 40_000_000,
		MaxFiles:  32,
		Workers:   4,
	}
}

// Validate returns any problems with the configuration.
func (c Config) Validate() []string {
	var problems []string
	if c.MaxEdge < 16 {
		problems = append(problems, "photos max_edge must be at least 16")
	}
	if c.Quality < 1 || c.Quality > 100 {
		problems = append(problems, "photos quality must be between 1 and 100")
	}
	if c.MaxBytes <= 0 {
		problems = append(problems, "photos max_bytes must be positive")
	}
	if c.MaxPixels <= 0 {
		problems = append(problems, "photos max_pixels must be positive")
	}
	if c.MaxFiles <= 0 {
		problems = append(problems, "photos max_files must be positive")
	}
	if c.Workers <= 0 {
		problems = append(problems, "photos workers must be positive")
	}
	return problems
}

// Upload is one raw file.
type Upload struct {
	Name string
	Data []byte
}

// Ingester converts uploads.
type Ingester struct {
	cfg Config
	now func() time.Time
}

// New returns an ingester.
func New(cfg Config) *Ingester {
	return &Ingester{cfg: cfg, now: time.Now}
}

// Ingest converts a single upload.
func (in *Ingester) Ingest(u Upload) (state.Photo, error) {
	uri, err := in.Encode(u.Data)
	if err != nil {
		return state.Photo{}, &IngestError{Name: u.Name, Err: err}
	}
	return state.Photo{
		ID:      uuid.NewString(),
		URI:     uri,
		Name:    u.Name,
		AddedAt: in.now(),
	}, nil
}

// IngestAll converts uploads in parallel. Photos come back in upload order
// with failures left out; errs holds one *IngestError per failure. The
// caller prepends the result, so the first upload ends up first.
func (in *Ingester) IngestAll(ctx context.Context, uploads []Upload) (photos []state.Photo, errs []error) {
	if len(uploads) > in.cfg.MaxFiles {
		return nil, []error{fmt.Errorf("%w: %d uploads, limit %d", ErrTooMany, len(uploads), in.cfg.MaxFiles)}
	}

	results := make([]state.Photo, len(uploads))
	failures := make([]error, len(uploads))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(in.cfg.Workers, 1))
	for i, u := range uploads {
		i, u := i, u
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				failures[i] = &IngestError{Name: u.Name, Err: err}
				return nil
			}
			results[i], failures[i] = in.Ingest(u)
			return nil
		})
	}
	_ = g.Wait()

	for i := range uploads {
		if failures[i] != nil {
			errs = append(errs, failures[i])
			continue
		}
		photos = append(photos, results[i])
	}
	return photos, errs
}

// Encode returns a JPEG data URI for the image in data.
func (in *Ingester) Encode(data []byte) (string, error) {
	img, err := in.decode(data)
	if err != nil {
		return "", err
	}
	img = Fit(img, in.cfg.MaxEdge)

	var buf bytes.Buffer
	if err := imgio.JPEGEncoder(in.cfg.Quality)(&buf, img); err != nil {
		return "", fmt.Errorf("photos: encode: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (in *Ingester) decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if int64(len(data)) > in.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), in.cfg.MaxBytes)
	}
	if !filetype.IsImage(data) {
		return nil, ErrUnsupportedType
	}
	kind, _ := filetype.Match(data)

	hdr, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if err == image.ErrFormat {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, kind.MIME.Value)
		}
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if hdr.Width <= 0 || hdr.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrDecode, hdr.Width, hdr.Height)
	}
	if int64(hdr.Width)*int64(hdr.Height) > int64(in.cfg.MaxPixels) {
		return nil, fmt.Errorf("%w: %dx%d pixels, limit %d", ErrTooLarge, hdr.Width, hdr.Height, in.cfg.MaxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if err == image.ErrFormat {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, kind.MIME.Value)
		}
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// Fit scales img down so its longer edge is at most maxEdge, keeping the
// aspect ratio. Smaller images are returned unchanged.
func Fit(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return img
	}
	if w >= h {
		h = max(h*maxEdge/w, 1)
		w = maxEdge
	} else {
		w = max(w*maxEdge/h, 1)
		h = maxEdge
	}
	return transform.Resize(img, w, h, transform.Linear)
}
