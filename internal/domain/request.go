package domain

// Request tracks one image submission through its lifecycle.
// Records are mutated only through the tracker.
type Request struct {
	ID          string `json:"id"`
	Status      Status `json:"status"`
	TempPath    string `json:"temp_path,omitempty"`
	CloudKey    string `json:"cloud_key,omitempty"`
	Description string `json:"description,omitempty"`
	Feedback    *bool  `json:"feedback,omitempty"`
	Note        string `json:"note,omitempty"`
}

// RequestUpdate is a partial update: nil fields are left untouched.
// CloudKey and Description are write-once, the tracker ignores them
// once the record already holds a non-empty value.
type RequestUpdate struct {
	Status      *Status
	TempPath    *string
	CloudKey    *string
	Description *string
	Feedback    *bool
	Note        *string
}
