package dcui

import "errors"

// Discord embed limits, counted in characters (runes).
const (
	MaxTitle       = 256
	MaxDescription = 2048
	MaxFieldName   = 256
	MaxFieldValue  = 1024
	MaxEmbedLength = 6000
	MaxFields      = 25
)

// MaxFileSize is the largest single attachment accepted per message.
const MaxFileSize = 5 * 1024 * 1024

// Accent colors used by the presets.
const (
	ColorSuccess = 0x00AE86
	ColorError   = 0xE84A4A
	ColorInfo    = 0xF2E82B
)

// Placeholders stored in place of empty field input.
const (
	InvalidFieldTitle = "DEVERROR: Passed an invalid title"
	InvalidFieldText  = "DEVERROR: Passed an invalid text"
)

// ErrCeilingExceedsBudget is raised (via panic) when content rejected by a full
// embed is also rejected by a freshly opened one. It means a truncation ceiling
// is larger than MaxEmbedLength.
var ErrCeilingExceedsBudget = errors.New("dcui: truncation ceiling exceeds embed budget")
