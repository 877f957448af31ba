package visits

// Defaults applied to missing request fields
const (
	DefaultPagePath  = "/"
	UnknownIPAddress = "0.0.0.0"

	statDateLayout = "2006-01-02"
)
