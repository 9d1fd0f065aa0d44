package x11

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/dkotenko/clipbridge/pkg/clipboard/session"
)

type atomCache struct {
	Clipboard        xproto.Atom
	ClipboardManager xproto.Atom
	Targets          xproto.Atom
	Timestamp        xproto.Atom
	SaveTargets      xproto.Atom
	Delete           xproto.Atom
	Incr             xproto.Atom
	Utf8String       xproto.Atom
	String           xproto.Atom
	UriList          xproto.Atom
	ImagePng         xproto.Atom
	LocalProp        xproto.Atom

	byName map[string]xproto.Atom
	byAtom map[xproto.Atom]string
}

func loadAtoms(c *xgb.Conn) (*atomCache, error) {
	names := []string{
		"CLIPBOARD", "CLIPBOARD_MANAGER", "TARGETS", "TIMESTAMP",
		"SAVE_TARGETS", "DELETE", "INCR",
		"UTF8_STRING", "STRING", "text/uri-list", "image/png",
		"CLIPBRIDGE_SELECTION",
	}

	cookies := make([]xproto.InternAtomCookie, len(names))
	for i, name := range names {
		cookies[i] = xproto.InternAtom(c, false, uint16(len(name)), name)
	}

	atoms := make([]xproto.Atom, len(names))
	for i, cookie := range cookies {
		reply, err := cookie.Reply()
		if err != nil {
			return nil, err
		}
		atoms[i] = reply.Atom
	}

	cache := &atomCache{
		Clipboard:        atoms[0],
		ClipboardManager: atoms[1],
		Targets:          atoms[2],
		Timestamp:        atoms[3],
		SaveTargets:      atoms[4],
		Delete:           atoms[5],
		Incr:             atoms[6],
		Utf8String:       atoms[7],
		String:           atoms[8],
		UriList:          atoms[9],
		ImagePng:         atoms[10],
		LocalProp:        atoms[11],
	}

	cache.byName = map[string]xproto.Atom{
		session.TargetTargets:    cache.Targets,
		session.TargetUTF8String: cache.Utf8String,
		session.TargetString:     cache.String,
		session.TargetURIList:    cache.UriList,
		session.TargetImagePNG:   cache.ImagePng,
	}

	cache.byAtom = make(map[xproto.Atom]string, len(cache.byName))
	for name, atom := range cache.byName {
		cache.byAtom[atom] = name
	}

	return cache, nil
}

func (a *atomCache) atom(target string) xproto.Atom {
	return a.byName[target]
}

func (a *atomCache) target(atom xproto.Atom) string {
	return a.byAtom[atom]
}
