package dcui

import (
	"strings"
	"time"
)

// Builder accumulates one logical notification as an ordered list of embeds.
// Whenever the last embed refuses content, a new one is opened and the content
// goes there instead. Color, author and timestamp are shared and applied by
// Embeds.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	embeds    []*Embed
	color     int
	author    *Author
	timestamp bool
}

// NewBuilder returns a builder holding one empty embed, with the info color
// and the timestamp enabled.
func NewBuilder() *Builder {
	return &Builder{
		embeds:    []*Embed{{}},
		color:     ColorInfo,
		timestamp: true,
	}
}

func (b *Builder) last() *Embed { return b.embeds[len(b.embeds)-1] }

// commit applies fn to the last embed, opening a new one if it refuses.
func (b *Builder) commit(fn func(e *Embed) bool) {
	if fn(b.last()) {
		return
	}
	b.embeds = append(b.embeds, &Embed{})
	if !fn(b.last()) {
		panic(ErrCeilingExceedsBudget)
	}
}

// SetColor sets the accent color stamped onto every embed.
func (b *Builder) SetColor(color int) *Builder {
	b.color = color
	return b
}

// SetTitle sets the title of the last embed. An empty title clears it.
func (b *Builder) SetTitle(title string) *Builder {
	title = Truncate(title, MaxTitle)
	b.commit(func(e *Embed) bool { return e.SetTitle(title) })
	return b
}

// SetDescription sets the description of the last embed. An empty
// description clears it.
func (b *Builder) SetDescription(description string) *Builder {
	description = Truncate(description, MaxDescription)
	b.commit(func(e *Embed) bool { return e.SetDescription(description) })
	return b
}

// SetAuthor stores the author applied to every embed by Embeds.
// An empty name clears it.
func (b *Builder) SetAuthor(name, url, iconURL string) *Builder {
	if name == "" {
		b.author = nil
		return b
	}
	b.author = &Author{Name: Truncate(name, MaxTitle), URL: url, IconURL: iconURL}
	return b
}

// AddField appends a field. Empty title or text is replaced by a visible
// placeholder so the mistake shows up in the rendered message.
func (b *Builder) AddField(title, text string, inline bool) *Builder {
	if title == "" {
		title = InvalidFieldTitle
	}
	if text == "" {
		text = InvalidFieldText
	}
	f := Field{
		Name:   Truncate(title, MaxFieldName),
		Value:  Truncate(text, MaxFieldValue),
		Inline: inline,
	}
	b.commit(func(e *Embed) bool { return e.AddField(f) })
	return b
}

// SetImage attaches f as the image of the last embed. Invalid files are ignored.
func (b *Builder) SetImage(f File) *Builder {
	if !f.Valid() {
		return b
	}
	b.commit(func(e *Embed) bool { return e.SetImage(f) })
	return b
}

// EnableTimestamp controls whether the last embed carries a timestamp.
func (b *Builder) EnableTimestamp(enable bool) *Builder {
	b.timestamp = enable
	return b
}

// Embeds finalizes the builder and returns its embeds: every embed gets the
// shared color and author, and only the last one keeps the timestamp.
//
// Stamping the author does not re-check the length budget.
// Calling Embeds again yields the same result. The builder is not frozen:
// mutators called afterwards still apply, and the next Embeds restamps.
func (b *Builder) Embeds() []*Embed {
	lastIdx := len(b.embeds) - 1
	for i, e := range b.embeds {
		e.color = b.color
		e.timestamp = i == lastIdx && b.timestamp
		if b.author != nil {
			e.stampAuthor(*b.author)
		}
	}
	return append([]*Embed(nil), b.embeds...)
}

// Files returns the attachments of every embed, in embed order.
func (b *Builder) Files() []File {
	var out []File
	for _, e := range b.embeds {
		out = append(out, e.files...)
	}
	return out
}

// Message is a rendered notification ready to hand to the messaging client.
type Message struct {
	Embeds []Payload
	Files  []File
}

// Build finalizes the builder and renders its embeds with now as timestamp.
func (b *Builder) Build(now time.Time) Message {
	embeds := b.Embeds()
	out := Message{Embeds: make([]Payload, 0, len(embeds)), Files: b.Files()}
	for _, e := range embeds {
		out.Embeds = append(out.Embeds, e.Payload(now))
	}
	return out
}

// String renders every embed with Embed.String.
func (b *Builder) String() string {
	var sb strings.Builder
	for _, e := range b.Embeds() {
		sb.WriteString(e.String())
	}
	return sb.String()
}
