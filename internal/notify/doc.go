// Package notify turns host notification requests into rendered messages and
// hands them to a Sender.
//
// # Composition
//
// A Request mirrors what the host application emits (title, author,
// description, color, base64 image, optional file path). Composer expands it
// into one or two drafts: the embed itself and, when a file is attached, the
// upload description with its parts.
//
// # Dispatch
//
// Dispatcher finalizes drafts, stamps an id and timestamp, and passes them to
// the Sender. Progress notifications are coalesced locally so a chatty host
// does not flood the outbox; every other kind always goes through.
package notify
