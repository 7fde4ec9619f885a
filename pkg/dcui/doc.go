// Package dcui builds Discord embeds that respect the platform's size limits:
//   - Embed is one bounded card with a running character budget
//   - Builder spreads one logical notification across as many embeds as needed
//   - Simple/Success/Error/Info cover the common one-card notifications
//
// Design goals:
//   - Never produce an embed the platform would reject
//   - Keep caller mistakes visible in the rendered output instead of dropping them
//   - Render only the keys that were actually set
package dcui
