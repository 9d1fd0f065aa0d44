// Package x11 drives the CLIPBOARD selection over the X protocol.
//
// One goroutine owns the connection's event stream: it answers
// SelectionRequest events against the published offer, retires the
// offer on SelectionClear and routes conversion replies to the single
// in-flight reader.
package x11

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/rs/zerolog"

	"github.com/dkotenko/clipbridge/pkg/clipboard/session"
)

const (
	maxPropSize = 0x10000
	maxDataSize = 50 * 1024 * 1024

	eventBacklog = 32
)

var _ session.Session = (*Session)(nil)

type Session struct {
	logger zerolog.Logger
	conn   *xgb.Conn
	win    xproto.Window
	atoms  *atomCache

	// convertMu serializes outstanding ConvertSelection round trips.
	convertMu sync.Mutex

	mu    sync.Mutex
	offer *session.Offer
	sink  chan xgb.Event
}

// New attaches to the X display. Failure is reported, never fatal, so
// headless hosts degrade to the neutral behaviour upstream.
func New(log zerolog.Logger) (*Session, error) {
	s := &Session{
		logger: log.With().Str("component", "x11").Logger(),
	}

	if err := s.init(); err != nil {
		return nil, err
	}

	go s.serve()

	return s, nil
}

func (s *Session) init() error {
	var err error
	if s.conn, err = xgb.NewConn(); err != nil {
		return fmt.Errorf("xgb connect: %w", err)
	}

	if s.atoms, err = loadAtoms(s.conn); err != nil {
		return fmt.Errorf("load atoms: %w", err)
	}

	screen := xproto.Setup(s.conn).DefaultScreen(s.conn)
	if s.win, err = xproto.NewWindowId(s.conn); err != nil {
		return err
	}

	// PropertyChange events carry the INCR transfer chunks.
	err = xproto.CreateWindowChecked(
		s.conn,
		screen.RootDepth,
		s.win,
		screen.Root,
		0,
		0,
		1,
		1,
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange},
	).Check()
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	return nil
}

func (s *Session) serve() {
	for {
		ev, err := s.conn.WaitForEvent()
		if ev == nil && err == nil {
			s.logger.Debug().Msg("x connection closed")
			return
		}
		if err != nil {
			s.logger.Debug().Err(err).Msg("x event error")
			continue
		}

		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			s.handleRequest(e)
		case xproto.SelectionClearEvent:
			s.handleClear(e)
		case xproto.SelectionNotifyEvent, xproto.PropertyNotifyEvent:
			s.forward(ev)
		}
	}
}

// forward hands conversion replies to the reader currently blocked in
// WaitForContents, if any.
func (s *Session) forward(ev xgb.Event) {
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()

	if sink == nil {
		return
	}

	select {
	case sink <- ev:
	default:
		s.logger.Debug().Str("event", ev.String()).Msg("dropping unconsumed event")
	}
}

// handleRequest is the provide path: a paster asked for one of the
// offered targets.
func (s *Session) handleRequest(e xproto.SelectionRequestEvent) {
	s.mu.Lock()
	off := s.offer
	s.mu.Unlock()

	resp := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  xproto.AtomNone,
	}

	reply := func(typ xproto.Atom, format byte, data []byte) {
		xproto.ChangeProperty(
			s.conn, xproto.PropModeReplace, e.Requestor, e.Property,
			typ, format, uint32(len(data))/uint32(format/8), data,
		)
		resp.Property = e.Property
	}

	switch e.Target {
	case s.atoms.Targets:
		if off != nil {
			reply(xproto.AtomAtom, 32, s.targetsReply(off))
		}

	case s.atoms.Timestamp:
		buf := new(bytes.Buffer)
		_ = binary.Write(buf, binary.LittleEndian, e.Time)
		reply(xproto.AtomInteger, 32, buf.Bytes())

	case s.atoms.SaveTargets, s.atoms.Delete:
		resp.Property = e.Property

	default:
		if off == nil {
			break
		}
		if data, ok := off.Bytes(s.atoms.target(e.Target)); ok {
			reply(e.Target, 8, data)
		}
	}

	xproto.SendEvent(s.conn, false, e.Requestor, xproto.EventMaskNoEvent, string(resp.Bytes()))
}

func (s *Session) targetsReply(off *session.Offer) []byte {
	targets := []xproto.Atom{s.atoms.Targets, s.atoms.Timestamp, s.atoms.SaveTargets}
	for _, name := range off.Targets() {
		targets = append(targets, s.atoms.atom(name))
	}

	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, targets)
	return buf.Bytes()
}

// handleClear is the clear path: another owner took the selection.
func (s *Session) handleClear(e xproto.SelectionClearEvent) {
	if e.Selection != s.atoms.Clipboard {
		return
	}

	s.mu.Lock()
	off := s.offer
	s.offer = nil
	s.mu.Unlock()

	if off != nil && off.Clear() {
		s.logger.Debug().Object("offer", off).Msg("selection lost, offer cleared")
	}
}

func (s *Session) Publish(o *session.Offer) error {
	s.mu.Lock()
	prev := s.offer
	s.offer = o
	o.MarkPublished()
	s.mu.Unlock()

	// The replaced payload is retired before the new offer becomes
	// visible to pasters.
	if prev != nil && prev.Clear() {
		s.logger.Debug().Object("offer", prev).Msg("offer replaced")
	}

	err := xproto.SetSelectionOwnerChecked(s.conn, s.win, s.atoms.Clipboard, xproto.TimeCurrentTime).Check()
	if err != nil {
		return fmt.Errorf("set selection owner: %w", err)
	}

	s.logger.Debug().Object("offer", o).Msg("offer published")
	return nil
}

func (s *Session) Clear() error {
	s.mu.Lock()
	off := s.offer
	s.offer = nil
	s.mu.Unlock()

	if off != nil && off.Clear() {
		s.logger.Debug().Object("offer", off).Msg("offer cleared")
	}

	err := xproto.SetSelectionOwnerChecked(s.conn, xproto.WindowNone, s.atoms.Clipboard, xproto.TimeCurrentTime).Check()
	if err != nil {
		return fmt.Errorf("relinquish selection: %w", err)
	}

	return nil
}

// RequestStore asks the session's clipboard manager to take over the
// current selection so it survives process exit. Without a manager the
// request is skipped.
func (s *Session) RequestStore() error {
	owner, err := xproto.GetSelectionOwner(s.conn, s.atoms.ClipboardManager).Reply()
	if err != nil {
		return fmt.Errorf("clipboard manager owner: %w", err)
	}
	if owner.Owner == xproto.WindowNone {
		s.logger.Debug().Msg("no clipboard manager, store skipped")
		return nil
	}

	s.convertMu.Lock()
	defer s.convertMu.Unlock()

	sink := s.register()
	defer s.unregister()

	xproto.ConvertSelection(
		s.conn, s.win, s.atoms.ClipboardManager, s.atoms.SaveTargets,
		s.atoms.LocalProp, xproto.TimeCurrentTime,
	)

	// Best effort: the manager answers once it has pulled our targets.
	_ = s.awaitNotify(sink, s.atoms.ClipboardManager)
	return nil
}

func (s *Session) WaitForContents(target string) ([]byte, error) {
	tgt := s.atoms.atom(target)
	if tgt == 0 {
		return nil, fmt.Errorf("unknown target %q", target)
	}

	s.convertMu.Lock()
	defer s.convertMu.Unlock()

	sink := s.register()
	defer s.unregister()

	xproto.ConvertSelection(
		s.conn, s.win, s.atoms.Clipboard, tgt,
		s.atoms.LocalProp, xproto.TimeCurrentTime,
	)

	notify := s.awaitNotify(sink, s.atoms.Clipboard)
	if notify.Property == xproto.AtomNone {
		return nil, session.ErrNoContents
	}

	peek, err := xproto.GetProperty(
		s.conn, false, s.win, s.atoms.LocalProp,
		xproto.GetPropertyTypeAny, 0, 0,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("peek property: %w", err)
	}

	if peek.Type == s.atoms.Incr {
		return s.readIncr(sink)
	}

	full, err := xproto.GetProperty(
		s.conn, true, s.win, s.atoms.LocalProp,
		xproto.GetPropertyTypeAny, 0, maxPropSize,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("read property: %w", err)
	}

	return full.Value, nil
}

func (s *Session) HasTarget(target string) (bool, error) {
	data, err := s.WaitForContents(session.TargetTargets)
	if err != nil {
		if errors.Is(err, session.ErrNoContents) {
			return false, nil
		}
		return false, err
	}

	want := s.atoms.atom(target)

	ids := make([]xproto.Atom, len(data)/4)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &ids); err != nil {
		return false, err
	}

	for _, id := range ids {
		if id == want {
			return true, nil
		}
	}
	return false, nil
}

func (s *Session) register() chan xgb.Event {
	sink := make(chan xgb.Event, eventBacklog)
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
	return sink
}

func (s *Session) unregister() {
	s.mu.Lock()
	s.sink = nil
	s.mu.Unlock()
}

// awaitNotify blocks until the server reports the conversion outcome
// for the given selection.
func (s *Session) awaitNotify(sink chan xgb.Event, selection xproto.Atom) xproto.SelectionNotifyEvent {
	for ev := range sink {
		if e, ok := ev.(xproto.SelectionNotifyEvent); ok {
			if e.Requestor == s.win && e.Selection == selection {
				return e
			}
		}
	}
	return xproto.SelectionNotifyEvent{Property: xproto.AtomNone}
}

// readIncr consumes an INCR transfer: the owner appends chunks to our
// property and signals each with PropertyNotify until a zero-length
// write marks the end.
func (s *Session) readIncr(sink chan xgb.Event) ([]byte, error) {
	xproto.DeleteProperty(s.conn, s.win, s.atoms.LocalProp)

	var buf bytes.Buffer
	buf.Grow(4096)

	for ev := range sink {
		e, ok := ev.(xproto.PropertyNotifyEvent)
		if !ok {
			continue
		}
		if e.Window != s.win || e.Atom != s.atoms.LocalProp || e.State != xproto.PropertyNewValue {
			continue
		}

		reply, err := xproto.GetProperty(
			s.conn, true, s.win, s.atoms.LocalProp,
			xproto.GetPropertyTypeAny, 0, maxPropSize,
		).Reply()
		if err != nil {
			return nil, err
		}

		// The notify for the INCR announcement itself can trail the
		// property deletion; an absent property is not end-of-transfer.
		if reply.Type == xproto.AtomNone {
			continue
		}

		if len(reply.Value) == 0 {
			return buf.Bytes(), nil
		}

		if buf.Len()+len(reply.Value) > maxDataSize {
			return nil, errors.New("clipboard data exceeded limit")
		}

		buf.Write(reply.Value)
	}

	return buf.Bytes(), nil
}
