package intake

import "github.com/rpggio/interntrack/internal/domain/internship"

// Posting is one scraped job posting.
type Posting struct {
	JobTitle        string `json:"job_title"`
	CompanyName     string `json:"company_name"`
	JobDescription  string `json:"job_description,omitempty"`
	ApplicationLink string `json:"application_link,omitempty"`
	SourceURL       string `json:"source_url,omitempty"`
	SourceSite      string `json:"source_site,omitempty"`
}

// Report summarizes one intake batch.
type Report struct {
	Received   int                     `json:"received"`
	Duplicates int                     `json:"duplicates"`
	Invalid    int                     `json:"invalid"`
	Created    []internship.Internship `json:"created"`
	// Notified is the number of Telegram messages delivered.
	Notified    int  `json:"notified"`
	Invalidated bool `json:"invalidated"`
}
