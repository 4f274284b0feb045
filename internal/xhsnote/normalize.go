package xhsnote

// Normalize maps upstream notes to the normalized shape, preserving order.
// Missing fields take their defaults; no field is required.
func Normalize(notes []RawNote) []NormalizedNote {
	out := make([]NormalizedNote, 0, len(notes))
	for _, n := range notes {
		out = append(out, normalizeNote(n))
	}
	return out
}

func normalizeNote(n RawNote) NormalizedNote {
	noteID := n.ID.Or("")

	images := make([]string, 0, len(n.ImagesList))
	for _, img := range n.ImagesList {
		images = append(images, img.URL.Or(""))
	}

	return NormalizedNote{
		NoteID: noteID,
		Title:  n.Title.Or(DefaultTitle),
		Author: Author{
			UserID:   n.User.UserID.Or(""),
			Nickname: n.User.Nickname.Or(""),
			Avatar:   n.User.Image.Or(""),
		},
		Content: Content{
			Text:   n.Desc.Or(""),
			Images: images,
		},
		Statistics: Statistics{
			Likes:    int64(n.LikedCount),
			Collects: int64(n.CollectedCount),
			Comments: int64(n.CommentsCount),
			Shares:   int64(n.SharedCount),
		},
		Time: n.Time,
		URL:  n.ShareInfo.Link.Or(CanonicalURL(noteID)),
	}
}

// CanonicalURL returns the public web link of a note
func CanonicalURL(noteID string) string {
	return CanonicalURLPrefix + noteID
}
