package notify

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"printbot/pkg/dcui"
	"printbot/pkg/upload"
)

// Request is the payload the host application drops into the spool.
type Request struct {
	Kind        string         `json:"kind,omitempty"`
	Title       string         `json:"title,omitempty"`
	Author      string         `json:"author,omitempty"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color,omitempty"`
	Image       string         `json:"image,omitempty"` // base64
	ImageName   string         `json:"imagename,omitempty"`
	Fields      []RequestField `json:"fields,omitempty"`
	File        string         `json:"file,omitempty"`
}

type RequestField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

func (r Request) hasEmbed() bool {
	return r.Title != "" || r.Description != "" || r.Image != "" || len(r.Fields) > 0
}

// Style holds the defaults applied to every composed embed.
type Style struct {
	Author    string
	AuthorURL string
	IconURL   string
	Timestamp bool
	Colors    map[Kind]int
}

// DefaultStyle matches the preset colors in dcui.
func DefaultStyle() Style {
	return Style{
		Author:    "OctoPrint",
		Timestamp: true,
		Colors: map[Kind]int{
			KindInfo:     dcui.ColorInfo,
			KindProgress: dcui.ColorInfo,
			KindUpload:   dcui.ColorInfo,
			KindSuccess:  dcui.ColorSuccess,
			KindError:    dcui.ColorError,
		},
	}
}

// Composer expands requests into drafts.
type Composer struct {
	Style    Style
	Splitter *upload.Splitter
}

// Compose returns the drafts for req, in send order. A request with neither
// embed content nor a file is rejected with ErrInvalidRequest.
func (c *Composer) Compose(req Request) ([]Draft, error) {
	if !req.hasEmbed() && req.File == "" {
		return nil, fmt.Errorf("%w: nothing to send", ErrInvalidRequest)
	}
	kind := ParseKind(req.Kind)
	author := req.Author
	if author == "" {
		author = c.Style.Author
	}

	var drafts []Draft
	if req.hasEmbed() {
		b, err := c.embed(kind, author, req)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, Draft{Kind: kind, Builder: b})
	}
	if req.File != "" {
		sp := c.Splitter
		if sp == nil {
			sp = &upload.Splitter{}
		}
		files, b, err := sp.Split(req.File, author)
		if err != nil {
			return nil, err
		}
		c.decorate(b, KindUpload, author, 0)
		drafts = append(drafts, Draft{Kind: KindUpload, Builder: b, Files: files})
	}
	return drafts, nil
}

func (c *Composer) embed(kind Kind, author string, req Request) (*dcui.Builder, error) {
	b := dcui.NewBuilder()
	c.decorate(b, kind, author, req.Color)
	if req.Title != "" {
		b.SetTitle(req.Title)
	}
	if req.Description != "" {
		b.SetDescription(req.Description)
	}
	for _, f := range req.Fields {
		b.AddField(f.Name, f.Value, f.Inline)
	}
	if req.Image != "" {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(req.Image))
		if err != nil {
			return nil, fmt.Errorf("%w: image: %v", ErrInvalidRequest, err)
		}
		name, err := attachmentName(req.ImageName)
		if err != nil {
			return nil, err
		}
		b.SetImage(dcui.File{Name: name, Reader: bytes.NewReader(data)})
	}
	return b, nil
}

// attachmentName reduces raw to the bare file name the attachment is stored
// under, so the embed reference and the file list agree.
func attachmentName(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "snapshot.png", nil
	}
	name := strings.TrimSpace(filepath.Base(raw))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: imagename %q", ErrInvalidRequest, raw)
	}
	return name, nil
}

// decorate applies the shared style. A non-zero color overrides the kind color.
func (c *Composer) decorate(b *dcui.Builder, kind Kind, author string, color int) {
	if color == 0 {
		color = c.Style.Colors[kind]
	}
	if color != 0 {
		b.SetColor(color)
	}
	b.SetAuthor(author, c.Style.AuthorURL, c.Style.IconURL)
	b.EnableTimestamp(c.Style.Timestamp)
}
