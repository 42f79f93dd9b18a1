package internship

import "time"

// Internship is one tracked internship posting owned by a single user.
type Internship struct {
	ID              int64  `json:"id"`
	UserID          string `json:"user_id"`
	JobTitle        string `json:"job_title"`
	CompanyName     string `json:"company_name"`
	JobDescription  string `json:"job_description,omitempty"`
	ApplicationLink string `json:"application_link,omitempty"`
	SourceURL       string `json:"source_url,omitempty"`
	SourceSite      string `json:"source_site,omitempty"`
	Status          Status `json:"status"`
	// CreatedAt is kept as stored; use Created for ordering.
	CreatedAt string `json:"created_at"`
}

// Created returns the parsed creation time, or the zero time when the stored
// value cannot be parsed.
func (i Internship) Created() time.Time {
	t, _ := ParseTimestamp(i.CreatedAt)
	return t
}

// Stats holds per-status counts over a collection.
type Stats struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	Applied  int `json:"applied"`
	Rejected int `json:"rejected"`
	Other    int `json:"other,omitempty"`
}
