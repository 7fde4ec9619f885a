// Package outbox hands finalized notifications to the messaging client
// through a directory: every notification becomes <dir>/<id>/ holding
// payload.json and a files/ subdirectory with the attachments.
//
// Entries are assembled under a hidden temporary name and renamed into place,
// so a client polling the directory never sees a partial entry.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"printbot/internal/notify"
	"printbot/pkg/dcui"
	logx "printbot/pkg/logx"
)

const (
	PayloadName = "payload.json"
	FilesDir    = "files"
	tmpPrefix   = ".tmp-"

	// writeParallelism bounds concurrent attachment writes per entry.
	writeParallelism = 4
)

var (
	ErrDuplicateFile = errors.New("outbox: duplicate attachment name")
	// ErrInvalidName rejects attachment names that are not bare file names;
	// they could not match the attachment:// reference in the payload.
	ErrInvalidName = errors.New("outbox: invalid attachment name")
)

// Envelope is the content of payload.json.
type Envelope struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	CreatedAt time.Time      `json:"created_at"`
	Embeds    []dcui.Payload `json:"embeds"`
	Files     []string       `json:"files"`
}

// Sender writes notifications into Dir. It implements notify.Sender.
type Sender struct {
	Dir string
	Log logx.Logger
}

func New(dir string, log logx.Logger) *Sender {
	return &Sender{Dir: dir, Log: log.Component("outbox")}
}

func (s *Sender) Send(ctx context.Context, n notify.Notification) (err error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("outbox: %w", err)
	}
	names, err := fileNames(n.Message.Files)
	if err != nil {
		return err
	}

	tmp := filepath.Join(s.Dir, tmpPrefix+n.ID)
	final := filepath.Join(s.Dir, n.ID)
	defer func() {
		if err != nil {
			_ = os.RemoveAll(tmp)
		}
	}()
	if err := os.MkdirAll(filepath.Join(tmp, FilesDir), 0o755); err != nil {
		return fmt.Errorf("outbox: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(writeParallelism)
	for i, f := range n.Message.Files {
		dst := filepath.Join(tmp, FilesDir, names[i])
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return writeFile(dst, f.Reader)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("outbox: attachments: %w", err)
	}

	env := Envelope{
		ID:        n.ID,
		Kind:      string(n.Kind),
		CreatedAt: n.CreatedAt.UTC(),
		Embeds:    n.Message.Embeds,
		Files:     names,
	}
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("outbox: encode: %w", err)
	}
	if err := os.WriteFile(filepath.Join(tmp, PayloadName), b, 0o644); err != nil {
		return fmt.Errorf("outbox: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("outbox: publish %s: %w", n.ID, err)
	}
	s.Log.Debug("outbox entry written", logx.String("id", n.ID), logx.Int("files", len(names)))
	return nil
}

// fileNames returns the on-disk names of files. Names must be bare file names,
// unique within one notification, so they match the attachment:// references.
func fileNames(files []dcui.File) ([]string, error) {
	seen := make(map[string]struct{}, len(files))
	names := make([]string, 0, len(files))
	for _, f := range files {
		name := f.Name
		if !f.Valid() || name != strings.TrimSpace(name) || name == "." || name == ".." ||
			strings.ContainsRune(name, filepath.Separator) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, f.Name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateFile, name)
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}

func writeFile(path string, r io.Reader) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// Read loads the envelope of a published entry.
func Read(dir, id string) (Envelope, error) {
	var env Envelope
	b, err := os.ReadFile(filepath.Join(dir, id, PayloadName))
	if err != nil {
		return env, err
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return env, fmt.Errorf("outbox: %s: %w", id, err)
	}
	return env, nil
}
