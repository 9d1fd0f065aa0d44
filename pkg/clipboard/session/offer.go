package session

import (
	"sync/atomic"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog"
)

type Kind int32

const (
	KindPaths Kind = iota
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindPaths:
		return "paths"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

type State int32

const (
	StateAllocated State = iota
	StatePublished
	StateCleared
)

func (s State) String() string {
	switch s {
	case StateAllocated:
		return "allocated"
	case StatePublished:
		return "published"
	case StateCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Offer is the payload owned by the clipboard for the lifetime of an
// outstanding selection. Representations are fixed at construction;
// callbacks only ever read them, so an Offer may be served from a
// thread the session controls.
type Offer struct {
	kind Kind

	uriList   []byte
	plainText []byte
	png       []byte

	hash  uint64
	state atomic.Int32
}

// NewPathsOffer builds an offer holding the text/uri-list body and its
// plain-text fallback.
func NewPathsOffer(uriList, plainText []byte) *Offer {
	return &Offer{
		kind:      KindPaths,
		uriList:   uriList,
		plainText: plainText,
		hash:      xxhash.Sum64(uriList),
	}
}

// NewImageOffer builds an offer holding a PNG-encoded image.
func NewImageOffer(png []byte) *Offer {
	return &Offer{
		kind: KindImage,
		png:  png,
		hash: xxhash.Sum64(png),
	}
}

func (o *Offer) Kind() Kind   { return o.kind }
func (o *Offer) Hash() uint64 { return o.hash }
func (o *Offer) State() State { return State(o.state.Load()) }

// Targets lists the representation tags this offer declares on the
// selection.
func (o *Offer) Targets() []string {
	if o.kind == KindImage {
		return []string{TargetImagePNG}
	}
	return []string{TargetURIList, TargetUTF8String, TargetString}
}

// Bytes dispatches a paster's requested target tag to the matching
// representation. Unknown targets report false.
func (o *Offer) Bytes(target string) ([]byte, bool) {
	switch o.kind {
	case KindImage:
		if target == TargetImagePNG {
			return o.png, true
		}
	case KindPaths:
		switch target {
		case TargetURIList:
			return o.uriList, true
		case TargetUTF8String, TargetString:
			return o.plainText, true
		}
	}
	return nil, false
}

// MarkPublished transitions allocated -> published. It reports whether
// this call performed the transition.
func (o *Offer) MarkPublished() bool {
	return o.state.CompareAndSwap(int32(StateAllocated), int32(StatePublished))
}

// Clear transitions published -> cleared. The session may signal
// clearance more than once (a replacing publish racing a selection
// loss); only the first caller observes true and runs the destroy
// path.
func (o *Offer) Clear() bool {
	return o.state.CompareAndSwap(int32(StatePublished), int32(StateCleared))
}

func (o *Offer) MarshalZerologObject(e *zerolog.Event) {
	e.Stringer("kind", o.kind)
	e.Stringer("state", o.State())
	e.Uint64("hash", o.hash)
}
