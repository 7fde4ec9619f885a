package outbox

import (
	"bytes"
	"encoding/base64"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"printbot/internal/notify"
	"printbot/pkg/dcui"
	logx "printbot/pkg/logx"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("stream broken") }

func notification(files ...dcui.File) notify.Notification {
	b := dcui.NewBuilder().SetTitle("Print done").AddField("Time", "1h", true)
	for _, f := range files[:min(1, len(files))] {
		b.SetImage(f)
	}
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	msg := b.Build(now)
	msg.Files = files
	return notify.Notification{ID: "n-1", Kind: notify.KindSuccess, CreatedAt: now, Message: msg}
}

func TestSendWritesEntry(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := New(dir, logx.Nop())
	n := notification(
		dcui.File{Name: "snapshot.png", Reader: bytes.NewReader([]byte("png"))},
		dcui.File{Name: "log.txt", Reader: strings.NewReader("hello")},
	)
	if err := s.Send(context.Background(), n); err != nil {
		t.Fatalf("Send: %v", err)
	}

	env, err := Read(dir, "n-1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if env.Kind != "success" || len(env.Embeds) != 1 || env.Embeds[0].Title != "Print done" {
		t.Fatalf("envelope = %+v", env)
	}
	if env.Embeds[0].Image == nil || env.Embeds[0].Image.URL != "attachment://snapshot.png" {
		t.Fatalf("image = %+v", env.Embeds[0].Image)
	}
	if len(env.Files) != 2 || env.Files[0] != "snapshot.png" || env.Files[1] != "log.txt" {
		t.Fatalf("files = %v", env.Files)
	}
	got, err := os.ReadFile(filepath.Join(dir, "n-1", FilesDir, "log.txt"))
	if err != nil || string(got) != "hello" {
		t.Fatalf("log.txt = %q (err=%v)", got, err)
	}
}

func TestSendCleansUpOnFailure(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := New(dir, logx.Nop())
	n := notification(dcui.File{Name: "part.zip.001", Reader: failingReader{}})
	if err := s.Send(context.Background(), n); err == nil {
		t.Fatal("expected error")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("leftover entries: %v", entries)
	}
}

func TestSendRejectsDuplicateNames(t *testing.T) {
	t.Parallel()
	s := New(t.TempDir(), logx.Nop())
	n := notification(
		dcui.File{Name: "a.png", Reader: strings.NewReader("1")},
		dcui.File{Name: "a.png", Reader: strings.NewReader("2")},
	)
	if err := s.Send(context.Background(), n); !errors.Is(err, ErrDuplicateFile) {
		t.Fatalf("err = %v, want ErrDuplicateFile", err)
	}
}

func TestSendRejectsPathNames(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"sub/a.png", "..", " a.png", "/"} {
		dir := t.TempDir()
		s := New(dir, logx.Nop())
		n := notification(dcui.File{Name: name, Reader: strings.NewReader("x")})
		if err := s.Send(context.Background(), n); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("%q: err = %v, want ErrInvalidName", name, err)
		}
		if entries, _ := os.ReadDir(dir); len(entries) != 0 {
			t.Fatalf("%q: leftover entries: %v", name, entries)
		}
	}
}

func TestComposedImageMatchesStoredFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c := notify.Composer{Style: notify.DefaultStyle()}
	drafts, err := c.Compose(notify.Request{
		Title:     "Layer 12",
		Image:     base64.StdEncoding.EncodeToString([]byte("png")),
		ImageName: "shots/snap.png",
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	n := notify.Notification{ID: "n-img", Kind: drafts[0].Kind, CreatedAt: now, Message: drafts[0].Builder.Build(now)}
	if err := New(dir, logx.Nop()).Send(context.Background(), n); err != nil {
		t.Fatalf("Send: %v", err)
	}

	env, err := Read(dir, "n-img")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(env.Embeds) != 1 || env.Embeds[0].Image == nil || len(env.Files) != 1 {
		t.Fatalf("envelope = %+v", env)
	}
	if got, want := env.Embeds[0].Image.URL, "attachment://"+env.Files[0]; got != want {
		t.Fatalf("image url = %q, want %q", got, want)
	}
	if _, err := os.Stat(filepath.Join(dir, "n-img", FilesDir, env.Files[0])); err != nil {
		t.Fatalf("stored attachment: %v", err)
	}
}
