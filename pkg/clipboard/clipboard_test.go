package clipboard_test

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/dkotenko/clipbridge/pkg/clipboard"
	"github.com/dkotenko/clipbridge/pkg/clipboard/null"
	"github.com/dkotenko/clipbridge/pkg/clipboard/session"
	"github.com/dkotenko/clipbridge/pkg/imaging"
)

func newClipboard(t *testing.T) (*clipboard.Clipboard, *null.Session) {
	t.Helper()
	s := null.New()
	return clipboard.NewWithSession(s, zerolog.Nop()), s
}

// writeTestPNG creates a 2x2 image with four distinct pixels.
func writeTestPNG(t *testing.T, dir string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{G: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})
	img.Set(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	path := filepath.Join(dir, "src.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestWriteThenRead(t *testing.T) {
	clip, _ := newClipboard(t)

	paths := []string{"/home/a/x.txt", "/tmp/β.md"}
	clip.WriteFilePaths(paths)

	if diff := cmp.Diff(paths, clip.ReadFilePaths()); diff != "" {
		t.Errorf("read back mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_WireFormat(t *testing.T) {
	clip, s := newClipboard(t)

	clip.WriteFilePaths([]string{"/home/a/x.txt", "/tmp/β.md"})

	uriList, err := s.WaitForContents(session.TargetURIList)
	if err != nil {
		t.Fatal(err)
	}
	if want := "file:///home/a/x.txt\r\nfile:///tmp/%CE%B2.md\r\n"; string(uriList) != want {
		t.Errorf("uri-list bytes = %q, want %q", uriList, want)
	}

	plain, err := s.WaitForContents(session.TargetUTF8String)
	if err != nil {
		t.Fatal(err)
	}
	if want := "/home/a/x.txt\n/tmp/β.md"; string(plain) != want {
		t.Errorf("UTF8_STRING bytes = %q, want %q", plain, want)
	}

	if !s.Stored() {
		t.Error("write did not request clipboard persistence")
	}
}

func TestClearAfterWrite(t *testing.T) {
	clip, _ := newClipboard(t)

	clip.WriteFilePaths([]string{"/a"})
	clip.Clear()

	if got := clip.ReadFilePaths(); len(got) != 0 {
		t.Errorf("read after clear = %v, want empty", got)
	}
}

func TestHasImage_Lifecycle(t *testing.T) {
	clip, _ := newClipboard(t)
	src := writeTestPNG(t, t.TempDir())

	if clip.HasImage() {
		t.Fatal("empty clipboard reports an image")
	}

	if !clip.PutImage(src) {
		t.Fatal("PutImage failed")
	}
	if !clip.HasImage() {
		t.Fatal("image not advertised after PutImage")
	}

	clip.WriteFilePaths([]string{"/a"})
	if clip.HasImage() {
		t.Fatal("image still advertised after a path write")
	}

	if !clip.PutImage(src) {
		t.Fatal("PutImage failed")
	}
	clip.Clear()
	if clip.HasImage() {
		t.Fatal("image still advertised after clear")
	}
}

func TestPutImage_ThenSavePNG_PixelEqual(t *testing.T) {
	clip, _ := newClipboard(t)
	dir := t.TempDir()
	src := writeTestPNG(t, dir)

	if !clip.PutImage(src) {
		t.Fatal("PutImage failed")
	}

	out := filepath.Join(dir, "out.png")
	if !clip.SaveImageAsPNG(out) {
		t.Fatal("SaveImageAsPNG failed")
	}

	want, err := imaging.DecodeFile(src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := imaging.DecodeFile(out)
	if err != nil {
		t.Fatal(err)
	}

	if want.Bounds() != got.Bounds() {
		t.Fatalf("bounds mismatch: %v vs %v", want.Bounds(), got.Bounds())
	}

	b := want.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			wr, wg, wb, wa := want.At(x, y).RGBA()
			gr, gg, gb, ga := got.At(x, y).RGBA()
			if wr != gr || wg != gg || wb != gb || wa != ga {
				t.Fatalf("pixel (%d,%d) differs", x, y)
			}
		}
	}
}

func TestSaveImageAsJPEG_QualityRange(t *testing.T) {
	clip, _ := newClipboard(t)
	dir := t.TempDir()
	src := writeTestPNG(t, dir)

	if !clip.PutImage(src) {
		t.Fatal("PutImage failed")
	}

	for _, tt := range []struct {
		name    string
		quality float64
	}{
		{"min", 0.0},
		{"max", 1.0},
	} {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, tt.name+".jpg")
			if !clip.SaveImageAsJPEG(out, tt.quality) {
				t.Fatal("SaveImageAsJPEG failed")
			}

			img, err := imaging.DecodeFile(out)
			if err != nil {
				t.Fatal(err)
			}
			if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
				t.Fatalf("dimensions %v, want 2x2", img.Bounds())
			}
		})
	}
}

func TestSaveImage_NoImage(t *testing.T) {
	clip, _ := newClipboard(t)
	dir := t.TempDir()

	if clip.SaveImageAsPNG(filepath.Join(dir, "none.png")) {
		t.Error("SaveImageAsPNG succeeded with no clipboard image")
	}
	if clip.SaveImageAsJPEG(filepath.Join(dir, "none.jpg"), 0.5) {
		t.Error("SaveImageAsJPEG succeeded with no clipboard image")
	}
}

func TestPutImage_Failures(t *testing.T) {
	clip, _ := newClipboard(t)
	dir := t.TempDir()

	if clip.PutImage(filepath.Join(dir, "missing.png")) {
		t.Error("PutImage succeeded for a missing file")
	}

	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if clip.PutImage(garbage) {
		t.Error("PutImage succeeded for undecodable bytes")
	}
}

// Without a session every operation returns its neutral value.
func TestNoSession_NeutralValues(t *testing.T) {
	clip := clipboard.NewWithSession(nil, zerolog.Nop())
	dir := t.TempDir()

	clip.WriteFilePaths([]string{"/a"})
	clip.Clear()

	if got := clip.ReadFilePaths(); len(got) != 0 {
		t.Errorf("ReadFilePaths = %v, want empty", got)
	}
	if clip.HasImage() {
		t.Error("HasImage = true")
	}
	if clip.PutImage(writeTestPNG(t, dir)) {
		t.Error("PutImage = true")
	}
	if clip.SaveImageAsPNG(filepath.Join(dir, "out.png")) {
		t.Error("SaveImageAsPNG = true")
	}
	if clip.SaveImageAsJPEG(filepath.Join(dir, "out.jpg"), 1.0) {
		t.Error("SaveImageAsJPEG = true")
	}
}
