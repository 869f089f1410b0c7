package domain

type Status string

const (
	StatusCreated          Status = "created"
	StatusImageReceived    Status = "image_received"
	StatusUploadedToCloud  Status = "uploaded_to_cloud"
	StatusAnalyzed         Status = "analyzed"
	StatusFeedbackReceived Status = "feedback_received"
	StatusCompleted        Status = "completed"
)
