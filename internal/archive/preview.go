package archive

// String returns the string bound at key in a flattened archive.
func String(flat map[string]interface{}, key string) (string, bool) {
	s, ok := flat[key].(string)
	return s, ok
}

// URLPreview carries the fields a link balloon renders. Absent fields are
// empty strings.
type URLPreview struct {
	URL         string
	OriginalURL string
	Title       string
	Summary     string
	SiteName    string
}

// URLPreviewFrom extracts a link preview from a flattened archive. When the
// resolved URL is missing it falls back to the original request URL.
func URLPreviewFrom(flat map[string]interface{}) URLPreview {
	p := URLPreview{}
	p.URL, _ = String(flat, "URL")
	p.OriginalURL, _ = String(flat, "originalURL")
	p.Title, _ = String(flat, "title")
	p.Summary, _ = String(flat, "summary")
	p.SiteName, _ = String(flat, "siteName")
	if p.URL == "" {
		p.URL = p.OriginalURL
	}
	return p
}

// Empty reports whether the preview carries nothing worth rendering.
func (p URLPreview) Empty() bool {
	return p.URL == "" && p.Title == "" && p.Summary == ""
}

// MusicPreview carries the fields a music-share balloon renders.
type MusicPreview struct {
	Title  string
	Artist string
	Album  string
	URL    string
}

// MusicPreviewFrom extracts a music share from a flattened archive.
func MusicPreviewFrom(flat map[string]interface{}) MusicPreview {
	p := MusicPreview{}
	p.Title, _ = String(flat, "title")
	p.Artist, _ = String(flat, "artist")
	p.Album, _ = String(flat, "album")
	p.URL, _ = String(flat, "URL")
	return p
}
