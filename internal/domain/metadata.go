package domain

// Metadata is the feedback blob stored next to an image under
// "<key>.metadata.json". The key set and value types are a fixed
// convention shared with every consumer of the bucket.
type Metadata struct {
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
	Approved    bool   `json:"approved"`
	Note        string `json:"note"`
}
