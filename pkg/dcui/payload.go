package dcui

import (
	"fmt"
	"strings"
	"time"
)

// Image is the rendered image reference.
type Image struct {
	URL string `json:"url"`
}

// Payload is the wire form of one embed. Optional keys are omitted when unset;
// Fields is always present.
type Payload struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Author      *Author `json:"author,omitempty"`
	Fields      []Field `json:"fields"`
	Image       *Image  `json:"image,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Color       int     `json:"color,omitempty"`
}

// Payload renders e. now is used for the timestamp when it is enabled.
func (e *Embed) Payload(now time.Time) Payload {
	p := Payload{
		Title:       e.title,
		Description: e.description,
		Author:      e.Author(),
		Fields:      e.Fields(),
		Color:       e.color,
	}
	if p.Fields == nil {
		p.Fields = []Field{}
	}
	if e.image != "" {
		p.Image = &Image{URL: e.image}
	}
	if e.timestamp {
		p.Timestamp = now.UTC().Format(time.RFC3339Nano)
	}
	return p
}

// String renders a human-readable dump of e, for logs and the CLI.
func (e *Embed) String() string {
	var b strings.Builder
	b.WriteString("\n---------------------------------\n")
	if a := e.author; a != nil {
		b.WriteString("~~Author~~~~~~~~~~~~~~~~~~\n")
		fmt.Fprintf(&b, "\tAuthor Name: %s\n", a.Name)
		if a.URL != "" {
			fmt.Fprintf(&b, "\tAuthor Url: %s\n", a.URL)
		}
		if a.IconURL != "" {
			fmt.Fprintf(&b, "\tAuthor Icon: %s\n", a.IconURL)
		}
		b.WriteString("~~~~~~~~~~~~~~~~~~~~~~~~~~\n")
	}
	if e.color != 0 {
		fmt.Fprintf(&b, "Color: %x\n", e.color)
	}
	if e.title != "" {
		fmt.Fprintf(&b, "Title: %s\n", e.title)
	}
	if e.description != "" {
		fmt.Fprintf(&b, "Description: %s\n", e.description)
	}
	for _, f := range e.fields {
		b.WriteString("~~~Field~~~~~~~~~~~~~~~~~~\n")
		fmt.Fprintf(&b, "\tField Name: %s\n", f.Name)
		fmt.Fprintf(&b, "\tField Value: %s\n", f.Value)
		b.WriteString("~~~~~~~~~~~~~~~~~~~~~~~~~~\n")
	}
	if e.image != "" {
		fmt.Fprintf(&b, "Attached image: %s\n", e.image)
	}
	if e.timestamp {
		b.WriteString("Timestamp: enabled\n")
	}
	b.WriteString("---------------------------------\n")
	return b.String()
}
