package dcui

import (
	"io"
	"strings"
)

// Author is the embed author block. Only Name counts toward the budget.
type Author struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

// Field is a single name/value entry.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// File is a named byte stream sent alongside a message.
type File struct {
	Name   string
	Reader io.Reader
}

// Valid reports whether f can be attached.
func (f File) Valid() bool { return strings.TrimSpace(f.Name) != "" && f.Reader != nil }

// AttachmentURL is the reference an embed uses to point at f.
func (f File) AttachmentURL() string { return "attachment://" + f.Name }

// Embed is one bounded card. Every setter either applies the change and
// returns true, or leaves the embed untouched and returns false when the
// change would push the total length past MaxEmbedLength.
//
// Embeds are owned by a Builder; the zero value is an empty embed.
type Embed struct {
	length int

	color       int
	title       string
	description string
	author      *Author
	fields      []Field
	image       string
	files       []File
	timestamp   bool
}

// Len returns the characters currently counted against MaxEmbedLength.
func (e *Embed) Len() int { return e.length }

func (e *Embed) Color() int          { return e.color }
func (e *Embed) Title() string       { return e.title }
func (e *Embed) Description() string { return e.description }
func (e *Embed) Image() string       { return e.image }
func (e *Embed) Timestamp() bool     { return e.timestamp }

// Author returns a copy of the author block, or nil.
func (e *Embed) Author() *Author {
	if e.author == nil {
		return nil
	}
	a := *e.author
	return &a
}

// Fields returns a copy of the fields in insertion order.
func (e *Embed) Fields() []Field { return append([]Field(nil), e.fields...) }

// Files returns the attachments referenced by this embed.
func (e *Embed) Files() []File { return append([]File(nil), e.files...) }

// fits reports whether replacing oldLen characters with newLen stays in budget.
func (e *Embed) fits(oldLen, newLen int) bool {
	return e.length-oldLen+newLen <= MaxEmbedLength
}

// SetTitle replaces the title; "" clears it.
func (e *Embed) SetTitle(title string) bool {
	cur, next := runeLen(e.title), runeLen(title)
	if !e.fits(cur, next) {
		return false
	}
	e.title = title
	e.length += next - cur
	return true
}

// SetDescription replaces the description; "" clears it.
func (e *Embed) SetDescription(description string) bool {
	cur, next := runeLen(e.description), runeLen(description)
	if !e.fits(cur, next) {
		return false
	}
	e.description = description
	e.length += next - cur
	return true
}

// SetAuthor replaces the author block. URL and IconURL are not counted.
func (e *Embed) SetAuthor(a Author) bool {
	cur := 0
	if e.author != nil {
		cur = runeLen(e.author.Name)
	}
	next := runeLen(a.Name)
	if !e.fits(cur, next) {
		return false
	}
	e.author = &a
	e.length += next - cur
	return true
}

// AddField appends f. It fails when MaxFields entries are already present.
func (e *Embed) AddField(f Field) bool {
	if len(e.fields) >= MaxFields {
		return false
	}
	n := runeLen(f.Name) + runeLen(f.Value)
	if !e.fits(0, n) {
		return false
	}
	e.fields = append(e.fields, f)
	e.length += n
	return true
}

// SetImage attaches f as the embed image. Images are not counted against the
// budget; an embed holds at most one.
func (e *Embed) SetImage(f File) bool {
	if e.image != "" || !f.Valid() {
		return false
	}
	e.image = f.AttachmentURL()
	e.files = append(e.files, f)
	return true
}

// stampAuthor replaces the author block without the budget check; the length
// may end up above MaxEmbedLength.
func (e *Embed) stampAuthor(a Author) {
	if e.author != nil {
		e.length -= runeLen(e.author.Name)
	}
	e.author = &a
	e.length += runeLen(a.Name)
}
