package intake

import (
	"fmt"
	"strings"

	"github.com/rpggio/interntrack/internal/domain/internship"
)

const maxDescriptionRunes = 500

func postingMessage(rec internship.Internship) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New internship: %s\n", rec.JobTitle)
	fmt.Fprintf(&b, "Company: %s\n", rec.CompanyName)
	if rec.ApplicationLink != "" {
		fmt.Fprintf(&b, "Apply here: %s\n", rec.ApplicationLink)
	}
	if desc := shortDescription(rec.JobDescription); desc != "" {
		b.WriteString("\n")
		b.WriteString(desc)
	}
	return strings.TrimRight(b.String(), "\n")
}

func summaryMessage(created []internship.Internship) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d new internships!\n\n", len(created))
	for i, rec := range created {
		fmt.Fprintf(&b, "%d. %s at %s\n", i+1, rec.JobTitle, rec.CompanyName)
	}
	return strings.TrimRight(b.String(), "\n")
}

// shortDescription drops the scraper's "Posted ..." trailer and caps length.
func shortDescription(desc string) string {
	if i := strings.Index(desc, "Posted"); i >= 0 {
		desc = desc[:i]
	}
	desc = strings.TrimSpace(desc)
	runes := []rune(desc)
	if len(runes) > maxDescriptionRunes {
		desc = string(runes[:maxDescriptionRunes]) + "..."
	}
	return desc
}
