package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zip"

	"printbot/pkg/dcui"
	logx "printbot/pkg/logx"
)

// ArchivePattern names temporary archives (see os.CreateTemp).
const ArchivePattern = "printbot-upload-*.zip"

var ErrNotRegular = errors.New("upload: not a regular file")

// Splitter prepares file uploads. The zero value uses dcui.MaxFileSize parts
// and the system temp directory.
type Splitter struct {
	// MaxPartSize caps every returned part. Values <= 0 or above
	// dcui.MaxFileSize fall back to dcui.MaxFileSize.
	MaxPartSize int64
	// TempDir holds the intermediate archive. Empty means os.TempDir().
	TempDir string
	Log     logx.Logger

	// open replaces os.Open for the source file and the archive; nil means os.Open.
	open func(path string) (io.ReadCloser, error)
}

// Split prepares path for upload with the default Splitter.
func Split(path, author string) ([]dcui.File, *dcui.Builder, error) {
	var s Splitter
	return s.Split(path, author)
}

func (s *Splitter) partSize() int64 {
	if s.MaxPartSize <= 0 || s.MaxPartSize > dcui.MaxFileSize {
		return dcui.MaxFileSize
	}
	return s.MaxPartSize
}

// Split returns the attachments for path and a one-embed builder describing
// the upload, attributed to author.
func (s *Splitter) Split(path, author string) ([]dcui.File, *dcui.Builder, error) {
	name := filepath.Base(path)
	fi, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("upload: stat %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, nil, fmt.Errorf("upload: %s: %w", path, ErrNotRegular)
	}

	limit := s.partSize()
	size := humanize.IBytes(uint64(fi.Size()))
	if fi.Size() < limit {
		data, err := s.readSmall(path)
		if err != nil {
			return nil, nil, err
		}
		// The file may have grown since Stat; oversized content is split below.
		if int64(len(data)) < limit {
			b := dcui.NewBuilder().
				SetAuthor(author, "", "").
				SetTitle("Uploaded "+name).
				AddField("Size", size, true)
			s.Log.Debug("upload prepared", logx.String("file", name), logx.Int("size", len(data)))
			return []dcui.File{{Name: name, Reader: bytes.NewReader(data)}}, b, nil
		}
		size = humanize.IBytes(uint64(len(data)))
	}

	archive, err := s.compress(path, name, fi.ModTime())
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err := os.Remove(archive); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.Log.Warn("temporary archive not removed", logx.String("path", archive), logx.Err(err))
		}
	}()

	af, err := s.openFile(archive)
	if err != nil {
		return nil, nil, fmt.Errorf("upload: open archive: %w", err)
	}
	parts, archiveSize, err := readParts(af, name, limit)
	_ = af.Close()
	if err != nil {
		return nil, nil, err
	}
	numParts := int((archiveSize + limit - 1) / limit)

	b := dcui.NewBuilder().
		SetAuthor(author, "", "").
		SetTitle(fmt.Sprintf("Uploaded %s in %d parts", name, numParts)).
		AddField("Size", size, true).
		AddField("Compressed", humanize.IBytes(uint64(archiveSize)), true)
	s.Log.Info("upload split",
		logx.String("file", name),
		logx.Int64("size", fi.Size()),
		logx.Int64("archive_size", archiveSize),
		logx.Int("parts", len(parts)),
	)
	return parts, b, nil
}

func (s *Splitter) openFile(path string) (io.ReadCloser, error) {
	if s.open != nil {
		return s.open(path)
	}
	return os.Open(path)
}

func (s *Splitter) readSmall(path string) ([]byte, error) {
	f, err := s.openFile(path)
	if err != nil {
		return nil, fmt.Errorf("upload: open %s: %w", path, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("upload: read %s: %w", path, err)
	}
	return data, nil
}

// compress writes path into a new temporary single-entry archive and returns
// its location. The archive is removed again if anything fails.
func (s *Splitter) compress(path, name string, modified time.Time) (archive string, err error) {
	src, err := s.openFile(path)
	if err != nil {
		return "", fmt.Errorf("upload: open %s: %w", path, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(s.TempDir, ArchivePattern)
	if err != nil {
		return "", fmt.Errorf("upload: create archive: %w", err)
	}
	defer func() {
		if cerr := tmp.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("upload: close archive: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
	if err != nil {
		return "", fmt.Errorf("upload: archive %s: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return "", fmt.Errorf("upload: archive %s: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("upload: finish archive: %w", err)
	}
	return tmp.Name(), nil
}

// readParts cuts r into in-memory chunks of at most limit bytes.
func readParts(r io.Reader, name string, limit int64) ([]dcui.File, int64, error) {
	var (
		parts []dcui.File
		total int64
	)
	buf := make([]byte, limit)
	for i := 1; ; i++ {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			parts = append(parts, dcui.File{
				Name:   fmt.Sprintf("%s.zip.%03d", name, i),
				Reader: bytes.NewReader(bytes.Clone(buf[:n])),
			})
			total += int64(n)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("upload: read archive: %w", err)
		}
	}
	return parts, total, nil
}
