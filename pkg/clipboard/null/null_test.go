package null_test

import (
	"bytes"
	"testing"

	"github.com/dkotenko/clipbridge/pkg/clipboard/null"
	"github.com/dkotenko/clipbridge/pkg/clipboard/session"
)

func TestReplaceClearsPreviousExactlyOnce(t *testing.T) {
	s := null.New()

	p := session.NewPathsOffer([]byte("file:///p\r\n"), []byte("/p"))
	q := session.NewPathsOffer([]byte("file:///q\r\n"), []byte("/q"))

	if err := s.Publish(p); err != nil {
		t.Fatal(err)
	}
	if err := s.Publish(q); err != nil {
		t.Fatal(err)
	}

	if got := p.State(); got != session.StateCleared {
		t.Fatalf("replaced offer state = %v, want cleared", got)
	}
	if p.Clear() {
		t.Fatal("replaced offer cleared twice")
	}

	data, err := s.WaitForContents(session.TargetURIList)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte("file:///q\r\n")) {
		t.Fatalf("active offer serves %q, want the replacing payload", data)
	}
}

func TestClearRetiresOffer(t *testing.T) {
	s := null.New()

	p := session.NewPathsOffer([]byte("file:///p\r\n"), []byte("/p"))
	if err := s.Publish(p); err != nil {
		t.Fatal(err)
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}

	if got := p.State(); got != session.StateCleared {
		t.Fatalf("offer state after clear = %v, want cleared", got)
	}
	if _, err := s.WaitForContents(session.TargetURIList); err != session.ErrNoContents {
		t.Fatalf("WaitForContents after clear = %v, want ErrNoContents", err)
	}
}

func TestHasTarget(t *testing.T) {
	s := null.New()

	if ok, _ := s.HasTarget(session.TargetImagePNG); ok {
		t.Fatal("empty session advertises an image")
	}

	if err := s.Publish(session.NewImageOffer([]byte("png"))); err != nil {
		t.Fatal(err)
	}

	if ok, _ := s.HasTarget(session.TargetImagePNG); !ok {
		t.Fatal("image offer not advertised")
	}
	if ok, _ := s.HasTarget(session.TargetURIList); ok {
		t.Fatal("image offer advertises uri-list")
	}
}

func TestRequestStore(t *testing.T) {
	s := null.New()

	if s.Stored() {
		t.Fatal("fresh session reports stored")
	}

	if err := s.Publish(session.NewPathsOffer(nil, nil)); err != nil {
		t.Fatal(err)
	}
	if err := s.RequestStore(); err != nil {
		t.Fatal(err)
	}

	if !s.Stored() {
		t.Fatal("store request not recorded")
	}
}
