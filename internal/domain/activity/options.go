package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	ProjectPath  string
	ClassName    *string
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
