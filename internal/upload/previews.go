package upload

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Preview is a local rendition of a queued file.
type Preview struct {
	URL    string
	Width  int
	Height int
	Data   []byte
}

// PreviewFactory renders a preview for a file.
type PreviewFactory interface {
	NewPreview(file File) (*Preview, error)
}

// ThumbnailFactory decodes the file and fits it inside a MaxDimension square.
type ThumbnailFactory struct {
	MaxDimension int
}

func (f ThumbnailFactory) NewPreview(file File) (*Preview, error) {
	reader, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	img, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("upload: decode %s: %w", file.Name(), err)
	}
	size := f.MaxDimension
	if size <= 0 {
		size = 320
	}
	var thumb image.Image = imaging.Fit(img, size, size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG); err != nil {
		return nil, fmt.Errorf("upload: encode preview for %s: %w", file.Name(), err)
	}
	bounds := thumb.Bounds()
	return &Preview{Width: bounds.Dx(), Height: bounds.Dy(), Data: buf.Bytes()}, nil
}

// Previews hands out preview handles and tracks their release. Every handle
// must be revoked exactly once; Outstanding and DoubleRevokes expose leaks and
// repeated releases.
type Previews struct {
	mu            sync.Mutex
	factory       PreviewFactory
	live          map[string]*Preview
	revoked       map[string]struct{}
	created       int
	doubleRevokes int
}

// NewPreviews builds a registry. A nil factory issues empty handles.
func NewPreviews(factory PreviewFactory) *Previews {
	return &Previews{
		factory: factory,
		live:    make(map[string]*Preview),
		revoked: make(map[string]struct{}),
	}
}

// Create renders a preview and returns its handle url.
func (p *Previews) Create(file File) (string, error) {
	preview := &Preview{}
	if p.factory != nil {
		rendered, err := p.factory.NewPreview(file)
		if err != nil {
			return "", err
		}
		if rendered != nil {
			preview = rendered
		}
	}
	preview.URL = "preview:" + uuid.NewString()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.live[preview.URL] = preview
	p.created++
	return preview.URL, nil
}

// Get returns a live preview.
func (p *Previews) Get(url string) (*Preview, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	preview, ok := p.live[url]
	return preview, ok
}

// Revoke releases a handle. It returns false, and counts a double revoke, when
// the handle was already released.
func (p *Previews) Revoke(url string) bool {
	if url == "" {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.live[url]; ok {
		delete(p.live, url)
		p.revoked[url] = struct{}{}
		return true
	}
	if _, ok := p.revoked[url]; ok {
		p.doubleRevokes++
	}
	return false
}

// Outstanding counts handles created and not yet revoked.
func (p *Previews) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

// Created counts every handle ever issued.
func (p *Previews) Created() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}

// DoubleRevokes counts revokes of already released handles.
func (p *Previews) DoubleRevokes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doubleRevokes
}
