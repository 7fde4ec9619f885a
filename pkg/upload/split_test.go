package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"printbot/pkg/dcui"
)

const mib = 1024 * 1024

func writeRandomFile(t *testing.T, dir, name string, size int) []byte {
	t.Helper()
	data := make([]byte, size)
	rng := rand.New(rand.NewSource(int64(size)))
	if _, err := rng.Read(data); err != nil {
		t.Fatalf("rand: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return data
}

func leftoverArchives(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ArchivePattern))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return matches
}

func readAll(t *testing.T, f dcui.File) []byte {
	t.Helper()
	b, err := io.ReadAll(f.Reader)
	if err != nil {
		t.Fatalf("read %s: %v", f.Name, err)
	}
	return b
}

func TestSplitSmallFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	data := writeRandomFile(t, dir, "benchy.gcode", 4*mib)

	s := Splitter{TempDir: dir}
	files, b, err := s.Split(filepath.Join(dir, "benchy.gcode"), "Printer")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(files) != 1 || files[0].Name != "benchy.gcode" {
		t.Fatalf("files = %+v", files)
	}
	if !bytes.Equal(readAll(t, files[0]), data) {
		t.Fatal("payload differs from source file")
	}
	embeds := b.Embeds()
	if len(embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(embeds))
	}
	if got := embeds[0].Title(); got != "Uploaded benchy.gcode" {
		t.Fatalf("title = %q", got)
	}
	if a := embeds[0].Author(); a == nil || a.Name != "Printer" {
		t.Fatalf("author = %+v", a)
	}
	if got := leftoverArchives(t, dir); len(got) != 0 {
		t.Fatalf("archive created for small file: %v", got)
	}
}

func TestSplitLargeFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	data := writeRandomFile(t, dir, "timelapse.mp4", 12*mib)

	s := Splitter{TempDir: dir}
	files, b, err := s.Split(filepath.Join(dir, "timelapse.mp4"), "Printer")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if got := leftoverArchives(t, dir); len(got) != 0 {
		t.Fatalf("temporary archive left behind: %v", got)
	}

	var joined bytes.Buffer
	for i, f := range files {
		want := fmt.Sprintf("timelapse.mp4.zip.%03d", i+1)
		if f.Name != want {
			t.Fatalf("part %d name = %q, want %q", i, f.Name, want)
		}
		chunk := readAll(t, f)
		if len(chunk) > dcui.MaxFileSize {
			t.Fatalf("part %d has %d bytes", i, len(chunk))
		}
		if i < len(files)-1 && len(chunk) != dcui.MaxFileSize {
			t.Fatalf("non-final part %d has %d bytes", i, len(chunk))
		}
		joined.Write(chunk)
	}
	wantParts := (joined.Len() + dcui.MaxFileSize - 1) / dcui.MaxFileSize
	if len(files) != wantParts || wantParts != 3 {
		t.Fatalf("parts = %d, want %d (archive %d bytes)", len(files), wantParts, joined.Len())
	}

	if got := b.Embeds()[0].Title(); got != "Uploaded timelapse.mp4 in 3 parts" {
		t.Fatalf("title = %q", got)
	}

	zr, err := zip.NewReader(bytes.NewReader(joined.Bytes()), int64(joined.Len()))
	if err != nil {
		t.Fatalf("open joined archive: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "timelapse.mp4" {
		t.Fatalf("archive entries = %d", len(zr.File))
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	restored, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(restored, data) {
		t.Fatal("restored bytes differ from source file")
	}
}

func TestSplitCustomPartSize(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeRandomFile(t, dir, "part.bin", 10*1024)

	s := Splitter{TempDir: dir, MaxPartSize: 4096}
	files, _, err := s.Split(filepath.Join(dir, "part.bin"), "")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(files) < 3 {
		t.Fatalf("parts = %d, want at least 3", len(files))
	}
	for _, f := range files {
		if n := len(readAll(t, f)); n > 4096 {
			t.Fatalf("%s has %d bytes", f.Name, n)
		}
	}
}

func TestSplitMissingFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := Splitter{TempDir: dir}
	_, _, err := s.Split(filepath.Join(dir, "nope.gcode"), "")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want fs.ErrNotExist", err)
	}
	if got := leftoverArchives(t, dir); len(got) != 0 {
		t.Fatalf("archive created for missing file: %v", got)
	}
}

func TestSplitDirectory(t *testing.T) {
	t.Parallel()
	s := Splitter{TempDir: t.TempDir()}
	if _, _, err := s.Split(t.TempDir(), ""); !errors.Is(err, ErrNotRegular) {
		t.Fatalf("err = %v, want ErrNotRegular", err)
	}
}

func TestSplitArchiveCreateFailure(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeRandomFile(t, dir, "big.bin", 8*1024)

	s := Splitter{TempDir: filepath.Join(dir, "missing"), MaxPartSize: 1024}
	if _, _, err := s.Split(filepath.Join(dir, "big.bin"), ""); err == nil {
		t.Fatal("expected archive creation error")
	}
	if got := leftoverArchives(t, dir); len(got) != 0 {
		t.Fatalf("archive left behind: %v", got)
	}
}

// brokenFile yields the bytes of r, then fails instead of reporting EOF.
type brokenFile struct {
	r io.Reader
}

func (b *brokenFile) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err == io.EOF {
		return n, errors.New("disk went away")
	}
	return n, err
}

func (b *brokenFile) Close() error { return nil }

func TestSplitSourceFailureRemovesArchive(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	data := writeRandomFile(t, dir, "big.bin", 8*1024)

	s := Splitter{TempDir: dir, MaxPartSize: 1024}
	s.open = func(string) (io.ReadCloser, error) {
		return &brokenFile{r: bytes.NewReader(data[:3000])}, nil
	}
	if _, _, err := s.Split(filepath.Join(dir, "big.bin"), ""); err == nil {
		t.Fatal("expected copy error")
	}
	if got := leftoverArchives(t, dir); len(got) != 0 {
		t.Fatalf("partial archive left behind: %v", got)
	}
}

func TestSplitPartReadFailureRemovesArchive(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeRandomFile(t, dir, "big.bin", 8*1024)

	s := Splitter{TempDir: dir, MaxPartSize: 1024}
	s.open = func(path string) (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil || filepath.Base(path) == "big.bin" {
			return f, err
		}
		defer f.Close()
		head := make([]byte, 1500)
		n, _ := io.ReadFull(f, head)
		return &brokenFile{r: bytes.NewReader(head[:n])}, nil
	}
	if _, _, err := s.Split(filepath.Join(dir, "big.bin"), ""); err == nil {
		t.Fatal("expected archive read error")
	}
	if got := leftoverArchives(t, dir); len(got) != 0 {
		t.Fatalf("archive left behind: %v", got)
	}
}

func TestSplitFileGrownAfterStat(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeRandomFile(t, dir, "live.log", 100)
	grown := make([]byte, 4096)
	if _, err := rand.New(rand.NewSource(7)).Read(grown); err != nil {
		t.Fatalf("rand: %v", err)
	}

	s := Splitter{TempDir: dir, MaxPartSize: 1024}
	s.open = func(path string) (io.ReadCloser, error) {
		if filepath.Base(path) == "live.log" {
			return io.NopCloser(bytes.NewReader(grown)), nil
		}
		return os.Open(path)
	}
	files, _, err := s.Split(filepath.Join(dir, "live.log"), "")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(files) < 2 {
		t.Fatalf("files = %d, want split parts", len(files))
	}
	for _, f := range files {
		if n := len(readAll(t, f)); n > 1024 {
			t.Fatalf("%s is %d bytes, over the part size", f.Name, n)
		}
	}
	if got := leftoverArchives(t, dir); len(got) != 0 {
		t.Fatalf("archive left behind: %v", got)
	}
}

func TestReadPartsShortTail(t *testing.T) {
	t.Parallel()
	parts, total, err := readParts(bytes.NewReader(make([]byte, 2500)), "x", 1024)
	if err != nil {
		t.Fatalf("readParts: %v", err)
	}
	if total != 2500 || len(parts) != 3 || parts[2].Name != "x.zip.003" {
		t.Fatalf("parts = %d total = %d", len(parts), total)
	}
	if n := len(readAll(t, parts[2])); n != 452 {
		t.Fatalf("tail = %d bytes, want 452", n)
	}
}
