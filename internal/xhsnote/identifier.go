package xhsnote

import "regexp"

// noteIDPattern matches a path segment of word characters that ends the
// URL (optionally before one trailing newline) or is followed by a query
// string
var noteIDPattern = regexp.MustCompile(`/(\w+)(?:\?|\n?\z)`)

// ExtractNoteID extracts a note ID from a share link.
// It returns false if no segment matches.
func ExtractNoteID(shareURL string) (string, bool) {
	m := noteIDPattern.FindStringSubmatch(shareURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ResolveIdentifier returns the note ID to query. NoteID takes precedence
// over ShareURL.
func ResolveIdentifier(req FetchRequest) (string, error) {
	if req.NoteID != "" {
		return req.NoteID, nil
	}
	if req.ShareURL == "" {
		return "", newMissingParameterError()
	}
	id, ok := ExtractNoteID(req.ShareURL)
	if !ok {
		return "", newExtractionError(req.ShareURL)
	}
	return id, nil
}
