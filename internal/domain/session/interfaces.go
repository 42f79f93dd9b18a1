package session

import (
	"github.com/rpggio/interntrack/internal/domain/listing"
)

// InternshipRepository provides the listing data loaded into session caches.
type InternshipRepository interface {
	listing.Store
}
