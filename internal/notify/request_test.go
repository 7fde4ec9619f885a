package notify

import (
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"printbot/pkg/dcui"
	"printbot/pkg/upload"
)

func TestParseKind(t *testing.T) {
	t.Parallel()
	tests := map[string]Kind{
		"":         KindInfo,
		"Success":  KindSuccess,
		" error ":  KindError,
		"progress": KindProgress,
		"bogus":    KindInfo,
	}
	for in, want := range tests {
		if got := ParseKind(in); got != want {
			t.Fatalf("ParseKind(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestComposeEmbed(t *testing.T) {
	t.Parallel()
	img := []byte("\x89PNG fake")
	c := Composer{Style: DefaultStyle()}
	drafts, err := c.Compose(Request{
		Kind:        "error",
		Title:       "Print failed",
		Description: "Thermal runaway",
		Image:       base64.StdEncoding.EncodeToString(img),
		ImageName:   "snapshot.jpg",
		Fields:      []RequestField{{Name: "Hotend", Value: "290C", Inline: true}, {Name: "", Value: "x"}},
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Kind != KindError {
		t.Fatalf("drafts = %+v", drafts)
	}
	b := drafts[0].Builder
	e := b.Embeds()[0]
	if e.Color() != dcui.ColorError || e.Title() != "Print failed" || e.Image() != "attachment://snapshot.jpg" {
		t.Fatalf("embed = %s", e.String())
	}
	if a := e.Author(); a == nil || a.Name != "OctoPrint" {
		t.Fatalf("author = %+v", a)
	}
	fields := e.Fields()
	if len(fields) != 2 || fields[1].Name != dcui.InvalidFieldTitle {
		t.Fatalf("fields = %+v", fields)
	}
	got, err := io.ReadAll(b.Files()[0].Reader)
	if err != nil || string(got) != string(img) {
		t.Fatalf("image bytes = %q (err=%v)", got, err)
	}
}

func TestComposeColorOverrideAndAuthor(t *testing.T) {
	t.Parallel()
	c := Composer{Style: DefaultStyle()}
	drafts, err := c.Compose(Request{Title: "t", Author: "Prusa", Color: 0xabcdef})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	e := drafts[0].Builder.Embeds()[0]
	if e.Color() != 0xabcdef {
		t.Fatalf("color = %x", e.Color())
	}
	if e.Author().Name != "Prusa" {
		t.Fatalf("author = %+v", e.Author())
	}
}

func TestComposeWithFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "benchy.gcode")
	if err := os.WriteFile(path, []byte("G28\nG1 X10\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c := Composer{Style: DefaultStyle(), Splitter: &upload.Splitter{TempDir: dir}}
	drafts, err := c.Compose(Request{Kind: "success", Title: "Done", File: path})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("drafts = %d, want 2", len(drafts))
	}
	up := drafts[1]
	if up.Kind != KindUpload || len(up.Files) != 1 || up.Files[0].Name != "benchy.gcode" {
		t.Fatalf("upload draft = %+v", up)
	}
	if title := up.Builder.Embeds()[0].Title(); title != "Uploaded benchy.gcode" {
		t.Fatalf("title = %q", title)
	}
}

func TestComposeImageNameIsBare(t *testing.T) {
	t.Parallel()
	c := Composer{Style: DefaultStyle()}
	img := base64.StdEncoding.EncodeToString([]byte("png"))
	drafts, err := c.Compose(Request{Title: "x", Image: img, ImageName: " shots/snap.png "})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	b := drafts[0].Builder
	files := b.Files()
	if len(files) != 1 || files[0].Name != "snap.png" {
		t.Fatalf("files = %+v", files)
	}
	if got := b.Embeds()[0].Image(); got != "attachment://snap.png" {
		t.Fatalf("image = %q", got)
	}
}

func TestComposeRejects(t *testing.T) {
	t.Parallel()
	c := Composer{Style: DefaultStyle()}
	if _, err := c.Compose(Request{Kind: "info"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("empty request err = %v", err)
	}
	if _, err := c.Compose(Request{Title: "x", Image: "%%%"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("bad image err = %v", err)
	}
	img := base64.StdEncoding.EncodeToString([]byte("png"))
	for _, name := range []string{"/", "shots/..", "."} {
		if _, err := c.Compose(Request{Title: "x", Image: img, ImageName: name}); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("imagename %q err = %v", name, err)
		}
	}
	if _, err := c.Compose(Request{File: filepath.Join(t.TempDir(), "missing")}); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err = %v", err)
	}
}
