package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"printbot/internal/notify"
	"printbot/pkg/dcui"
)

// renderedDraft is the JSON form printed by embed and preview.
type renderedDraft struct {
	Kind   string         `json:"kind"`
	Embeds []dcui.Payload `json:"embeds"`
	Files  []string       `json:"files"`
}

func renderDrafts(drafts []notify.Draft, now time.Time) []renderedDraft {
	out := make([]renderedDraft, 0, len(drafts))
	for _, d := range drafts {
		msg := d.Builder.Build(now)
		msg.Files = append(msg.Files, d.Files...)
		rd := renderedDraft{Kind: string(d.Kind), Embeds: msg.Embeds, Files: []string{}}
		for _, f := range msg.Files {
			rd.Files = append(rd.Files, f.Name)
		}
		out = append(out, rd)
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseFields turns "name=value" flags into request fields. A trailing
// "!" on the name marks the field inline.
func parseFields(raw []string) ([]notify.RequestField, error) {
	fields := make([]notify.RequestField, 0, len(raw))
	for _, r := range raw {
		name, value, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("invalid field %q (want name=value)", r)
		}
		inline := strings.HasSuffix(name, "!")
		fields = append(fields, notify.RequestField{
			Name:   strings.TrimSuffix(name, "!"),
			Value:  value,
			Inline: inline,
		})
	}
	return fields, nil
}
