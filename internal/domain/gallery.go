package domain

// GalleryEntry pairs a stored image with its metadata for the browser
// pages and exports. Approved is nil when the metadata object is
// missing or unparsable.
type GalleryEntry struct {
	Name        string `json:"name"        csv:"name"`
	URL         string `json:"url"         csv:"url"`
	Description string `json:"description" csv:"description"`
	Note        string `json:"note"        csv:"note"`
	Approved    *bool  `json:"approved"    csv:"approved"`
	Timestamp   string `json:"timestamp"   csv:"timestamp"`
}
