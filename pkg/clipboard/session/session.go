// Package session defines the contract between the clipboard facade
// and a graphical-session backend, plus the selection offer that a
// backend owns while it holds the clipboard.
package session

import "errors"

// Targets are the representation tags offered on the clipboard
// selection.
const (
	TargetURIList    = "text/uri-list"
	TargetUTF8String = "UTF8_STRING"
	TargetString     = "STRING"
	TargetImagePNG   = "image/png"
	TargetTargets    = "TARGETS"
)

// ErrNoContents reports that the selection has no owner or that the
// owner does not provide the requested target.
var ErrNoContents = errors.New("no selection contents")

// Session is the slice of a graphical session the facade consumes.
//
// WaitForContents blocks until the owning application answers the
// conversion request or the session reports that no matching offer
// exists. Publish hands the offer to the session; from that moment the
// session drives the offer's provide/clear life cycle and the caller
// must not retain references beyond the offer itself.
type Session interface {
	WaitForContents(target string) ([]byte, error)
	Publish(o *Offer) error
	RequestStore() error
	Clear() error
	HasTarget(target string) (bool, error)
}
