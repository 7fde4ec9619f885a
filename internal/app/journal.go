package app

import (
	"context"

	"printbot/internal/notify"
	"printbot/internal/storage"
)

// journal records dispatches into the configured store.
type journal struct{ store storage.Store }

func (j journal) Record(ctx context.Context, it notify.HistoryItem) error {
	return j.store.Append(ctx, storage.Record{
		At:     it.At,
		ID:     it.ID,
		Kind:   string(it.Kind),
		Title:  it.Title,
		Embeds: it.Embeds,
		Files:  it.Files,
		Error:  it.Error,
	})
}
