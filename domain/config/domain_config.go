package config

// GuestUserID is the only identity allowed to create spaces until accounts exist
const GuestUserID = "guest"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Space constraints
	MaxSpaceNameLength int
	MaxBreadcrumbDepth int
	GuestUserID        string

	// Note constraints
	MaxNoteNameLength    int
	MaxNoteContentLength int
	DefaultNoteName      string
	DefaultSpaceName     string

	// Canvas geometry
	NodeFootprint float64
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxSpaceNameLength: 100,
		MaxBreadcrumbDepth: 64,
		GuestUserID:        GuestUserID,

		MaxNoteNameLength:    200,
		MaxNoteContentLength: 500000,
		DefaultNoteName:      "Untitled",
		DefaultSpaceName:     "Untitled space",

		NodeFootprint: 128,
	}
}
