// Package wlclipboard serves Wayland sessions by shelling out to the
// wl-clipboard tools. wl-copy keeps the selection alive on our behalf,
// so the offer life cycle is driven locally: a replacing publish or an
// explicit clear retires the previous offer.
package wlclipboard

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dkotenko/clipbridge/pkg/clipboard/session"
)

// Supported reports whether a Wayland session is reachable and the
// wl-clipboard tools are installed.
var Supported = (func() bool {
	_, exist1 := os.LookupEnv("WAYLAND_DISPLAY")
	_, exist2 := os.LookupEnv("WAYLAND_SOCKET")
	if !exist1 && !exist2 {
		return false
	}

	_, err := exec.LookPath("wl-paste")
	return err == nil
})()

var _ session.Session = (*Session)(nil)

type Session struct {
	logger zerolog.Logger

	mu   sync.Mutex
	last *session.Offer
}

func New(log zerolog.Logger) *Session {
	return &Session{
		logger: log.With().Str("component", "wlclipboard").Logger(),
	}
}

func (s *Session) WaitForContents(target string) ([]byte, error) {
	data, err := clipboardGet(exec.Command("wl-paste", "--no-newline", "--type", target))
	if err != nil {
		var exitErr *exec.ExitError
		// wl-paste exits 1 when the buffer is empty or the type is
		// not offered.
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, session.ErrNoContents
		}
		return nil, err
	}

	return data, nil
}

func (s *Session) Publish(o *session.Offer) error {
	primary := o.Targets()[0]
	data, _ := o.Bytes(primary)

	if err := clipboardSet(data, exec.Command("wl-copy", "--type", primary)); err != nil {
		s.logger.Error().Err(err).Msg("wl-copy failed")
		return err
	}

	s.mu.Lock()
	prev := s.last
	s.last = o
	o.MarkPublished()
	s.mu.Unlock()

	if prev != nil && prev.Clear() {
		s.logger.Debug().Object("offer", prev).Msg("offer replaced")
	}

	return nil
}

// RequestStore is a no-op: the compositor side owns persistence on
// Wayland.
func (s *Session) RequestStore() error { return nil }

func (s *Session) Clear() error {
	s.mu.Lock()
	prev := s.last
	s.last = nil
	s.mu.Unlock()

	if prev != nil && prev.Clear() {
		s.logger.Debug().Object("offer", prev).Msg("offer cleared")
	}

	return exec.Command("wl-copy", "--clear").Run()
}

func (s *Session) HasTarget(target string) (bool, error) {
	out, err := clipboardGet(exec.Command("wl-paste", "--list-types"))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return false, nil
		}
		return false, err
	}

	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) == target {
			return true, nil
		}
	}
	return false, nil
}

func clipboardGet(cmd *exec.Cmd) ([]byte, error) {
	return cmd.Output()
}

func clipboardSet(data []byte, cmd *exec.Cmd) error {
	var (
		in  io.WriteCloser
		err error
	)

	if in, err = cmd.StdinPipe(); err != nil {
		return err
	}

	if err = cmd.Start(); err != nil {
		return err
	}

	if _, err = in.Write(data); err != nil {
		return err
	}

	if err = in.Close(); err != nil {
		return err
	}

	return cmd.Wait()
}
