package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	InternshipID *int64
	SessionID    *string
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
