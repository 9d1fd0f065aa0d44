package clipboard

import (
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dkotenko/clipbridge/pkg/clipboard/session"
	"github.com/dkotenko/clipbridge/pkg/clipboard/wlclipboard"
	"github.com/dkotenko/clipbridge/pkg/clipboard/x11"
)

// bootstrap memoizes the attachment attempt: at most one transition
// from "not attempted" to either a live session or nil, process-wide.
var bootstrap struct {
	once    sync.Once
	session session.Session
}

func attach(log zerolog.Logger) session.Session {
	bootstrap.once.Do(func() {
		if os.Getenv("DISPLAY") != "" {
			s, err := x11.New(log)
			if err == nil {
				bootstrap.session = s
				return
			}
			log.Debug().Err(err).Msg("x11 attach failed")
		}

		if wlclipboard.Supported {
			bootstrap.session = wlclipboard.New(log)
			return
		}

		log.Debug().Msg("no graphical session, clipboard disabled")
	})

	return bootstrap.session
}
