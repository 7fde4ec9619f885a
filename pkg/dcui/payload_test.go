package dcui

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestPayloadOmitsUnsetKeys(t *testing.T) {
	t.Parallel()
	e := NewBuilder().SetColor(0).EnableTimestamp(false).Embeds()[0]
	b, err := json.Marshal(e.Payload(time.Now()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"fields":[]}` {
		t.Fatalf("payload = %s", b)
	}
}

func TestPayloadFull(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	msg := NewBuilder().
		SetTitle("Done").
		SetDescription("Print finished").
		SetAuthor("Printer", "", "https://example.com/icon.png").
		AddField("Time", "1h", true).
		SetImage(File{Name: "snapshot.png", Reader: bytes.NewReader([]byte("png"))}).
		Build(now)

	if len(msg.Embeds) != 1 || len(msg.Files) != 1 {
		t.Fatalf("embeds=%d files=%d", len(msg.Embeds), len(msg.Files))
	}
	b, err := json.Marshal(msg.Embeds[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"title", "description", "author", "fields", "image", "timestamp", "color"} {
		if _, ok := m[k]; !ok {
			t.Fatalf("missing key %q in %s", k, b)
		}
	}
	if m["timestamp"] != "2024-01-02T02:04:05Z" {
		t.Fatalf("timestamp = %v", m["timestamp"])
	}
	author := m["author"].(map[string]any)
	if _, ok := author["url"]; ok {
		t.Fatalf("empty author url rendered: %s", b)
	}
	if author["icon_url"] != "https://example.com/icon.png" {
		t.Fatalf("author = %v", author)
	}
	if img := m["image"].(map[string]any); img["url"] != "attachment://snapshot.png" {
		t.Fatalf("image = %v", img)
	}
}

func TestEmbedString(t *testing.T) {
	t.Parallel()
	s := NewBuilder().SetAuthor("bot", "", "").SetTitle("Hello").AddField("k", "v", false).String()
	for _, want := range []string{"Author Name: bot", "Color: f2e82b", "Title: Hello", "Field Name: k", "Field Value: v", "Timestamp: enabled"} {
		if !strings.Contains(s, want) {
			t.Fatalf("String() missing %q:\n%s", want, s)
		}
	}
}

func TestPresets(t *testing.T) {
	t.Parallel()
	snap := File{Name: "snapshot.jpg", Reader: bytes.NewReader([]byte("jpg"))}
	tests := []struct {
		name  string
		b     *Builder
		color int
		image string
	}{
		{name: "success", b: Success("bot", "ok", "", File{}), color: ColorSuccess},
		{name: "error", b: Error("bot", "bad", "boom", snap), color: ColorError, image: "attachment://snapshot.jpg"},
		{name: "info", b: Info("", "fyi", "", File{}), color: ColorInfo},
		{name: "simple default color", b: Simple("bot", "t", "", 0, File{}), color: ColorInfo},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			embeds := tt.b.Embeds()
			if len(embeds) != 1 {
				t.Fatalf("embeds = %d", len(embeds))
			}
			if embeds[0].Color() != tt.color {
				t.Fatalf("color = %x, want %x", embeds[0].Color(), tt.color)
			}
			if embeds[0].Image() != tt.image {
				t.Fatalf("image = %q, want %q", embeds[0].Image(), tt.image)
			}
		})
	}
	if a := Info("", "fyi", "", File{}).Embeds()[0].Author(); a != nil {
		t.Fatalf("empty author rendered: %+v", a)
	}
	if d := Success("bot", "ok", "", File{}).Embeds()[0].Description(); d != "" {
		t.Fatalf("description = %q", d)
	}
}
