package dcui

// Simple builds a one-card notification. Empty arguments are skipped, and a
// zero color keeps the builder default. snapshot is attached as the image when
// valid.
func Simple(author, title, description string, color int, snapshot File) *Builder {
	b := NewBuilder()
	if color != 0 {
		b.SetColor(color)
	}
	if title != "" {
		b.SetTitle(title)
	}
	if description != "" {
		b.SetDescription(description)
	}
	b.SetImage(snapshot)
	b.SetAuthor(author, "", "")
	return b
}

// Success is Simple with ColorSuccess.
func Success(author, title, description string, snapshot File) *Builder {
	return Simple(author, title, description, ColorSuccess, snapshot)
}

// Error is Simple with ColorError.
func Error(author, title, description string, snapshot File) *Builder {
	return Simple(author, title, description, ColorError, snapshot)
}

// Info is Simple with ColorInfo.
func Info(author, title, description string, snapshot File) *Builder {
	return Simple(author, title, description, ColorInfo, snapshot)
}
