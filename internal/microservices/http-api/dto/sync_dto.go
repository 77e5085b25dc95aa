package dto

// SyncRequest used for POST /api/sync
type SyncRequest struct {
	Year   int    `json:"year" binding:"required,min=1917,max=2100"`
	Season string `json:"season" binding:"required,oneof=winter spring summer fall"`
	Page   int    `json:"page" binding:"omitempty,min=1"`
}

// EnrichResponse reports whether POST /api/titles/:id/enrich queued a job.
type EnrichResponse struct {
	TitleID uint `json:"title_id"`
	Queued  bool `json:"queued"`
}
