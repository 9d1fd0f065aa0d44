// Package clipboard is a synchronous facade over the desktop
// clipboard: file-path lists travel as text/uri-list selections,
// images as PNG pixel data. Every operation degrades to a neutral
// value when no graphical session is reachable.
package clipboard

import (
	"image"

	"github.com/rs/zerolog"

	"github.com/dkotenko/clipbridge/pkg/clipboard/session"
	"github.com/dkotenko/clipbridge/pkg/imaging"
	"github.com/dkotenko/clipbridge/pkg/uris"
)

type Clipboard struct {
	logger  zerolog.Logger
	session session.Session
}

// New attaches to the graphical session, once per process, and wraps
// it. With no session every operation is a no-op returning its neutral
// value.
func New(log zerolog.Logger) *Clipboard {
	return NewWithSession(attach(log), log)
}

// NewWithSession wraps an explicit session. Hosts inject their own
// here; tests use the null backend. A nil session is valid and yields
// the neutral behaviour.
func NewWithSession(s session.Session, log zerolog.Logger) *Clipboard {
	return &Clipboard{
		logger:  log.With().Str("component", "clipboard").Logger(),
		session: s,
	}
}

// ReadFilePaths returns the file paths currently offered on the
// clipboard. Every failure mode yields the empty sequence.
func (c *Clipboard) ReadFilePaths() []string {
	if c.session == nil {
		return []string{}
	}

	data, err := c.session.WaitForContents(session.TargetURIList)
	if err != nil || len(data) == 0 {
		return []string{}
	}

	return uris.Decode(data)
}

// WriteFilePaths publishes the paths as a text/uri-list selection with
// a plain-text fallback, then asks the clipboard manager to persist
// it.
func (c *Clipboard) WriteFilePaths(paths []string) {
	if c.session == nil {
		return
	}

	offer := session.NewPathsOffer(uris.Encode(paths), uris.PlainText(paths))

	if err := c.session.Publish(offer); err != nil {
		c.logger.Debug().Err(err).Msg("publish failed")
		return
	}

	if err := c.session.RequestStore(); err != nil {
		c.logger.Debug().Err(err).Msg("store request failed")
	}
}

// Clear relinquishes the current selection. An owned offer is retired
// synchronously.
func (c *Clipboard) Clear() {
	if c.session == nil {
		return
	}

	if err := c.session.Clear(); err != nil {
		c.logger.Debug().Err(err).Msg("clear failed")
	}
}

// SaveImageAsJPEG writes the clipboard image to path as lossy JPEG.
// The compression factor in [0.0, 1.0] maps to a quality in [0, 100].
func (c *Clipboard) SaveImageAsJPEG(path string, compression float64) bool {
	img, ok := c.clipboardImage()
	if !ok {
		return false
	}

	if err := imaging.SaveJPEG(path, img, imaging.Quality(compression)); err != nil {
		c.logger.Debug().Err(err).Str("path", path).Msg("jpeg save failed")
		return false
	}
	return true
}

// SaveImageAsPNG writes the clipboard image to path as lossless PNG.
func (c *Clipboard) SaveImageAsPNG(path string) bool {
	img, ok := c.clipboardImage()
	if !ok {
		return false
	}

	if err := imaging.SavePNG(path, img); err != nil {
		c.logger.Debug().Err(err).Str("path", path).Msg("png save failed")
		return false
	}
	return true
}

// PutImage decodes an image file in any supported format and places it
// onto the clipboard.
func (c *Clipboard) PutImage(path string) bool {
	if c.session == nil {
		return false
	}

	img, err := imaging.DecodeFile(path)
	if err != nil {
		c.logger.Debug().Err(err).Str("path", path).Msg("image decode failed")
		return false
	}

	data, err := imaging.EncodePNG(img)
	if err != nil {
		return false
	}

	if err := c.session.Publish(session.NewImageOffer(data)); err != nil {
		c.logger.Debug().Err(err).Msg("publish failed")
		return false
	}

	if err := c.session.RequestStore(); err != nil {
		c.logger.Debug().Err(err).Msg("store request failed")
	}
	return true
}

// HasImage reports whether the clipboard currently advertises an image
// representation. The availability probe is preferred; when it errors
// the image is fetched and discarded instead.
func (c *Clipboard) HasImage() bool {
	if c.session == nil {
		return false
	}

	ok, err := c.session.HasTarget(session.TargetImagePNG)
	if err == nil {
		return ok
	}

	data, err := c.session.WaitForContents(session.TargetImagePNG)
	return err == nil && len(data) > 0
}

func (c *Clipboard) clipboardImage() (image.Image, bool) {
	if c.session == nil {
		return nil, false
	}

	data, err := c.session.WaitForContents(session.TargetImagePNG)
	if err != nil || len(data) == 0 {
		return nil, false
	}

	img, err := imaging.DecodePNG(data)
	if err != nil {
		c.logger.Debug().Err(err).Msg("clipboard image decode failed")
		return nil, false
	}
	return img, true
}
