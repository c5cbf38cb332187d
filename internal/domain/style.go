package domain

// StyleDescriptor is one entry of the style catalog. InternalName is the
// value the remote generation service recognizes; everything else is
// presentation metadata.
type StyleDescriptor struct {
	ID           int    `json:"id"`
	InternalName string `json:"internal_name"`
	DisplayName  string `json:"display_name"`
	PreviewURL   string `json:"preview_url,omitempty"`
	Category     string `json:"category,omitempty"`
}
