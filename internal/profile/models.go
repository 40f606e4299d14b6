package profile

// Document is the enrichment record for one subject. Presentation only; it
// never feeds back into session, verification, or policy decisions.
type Document struct {
	SubjectKey  string            `json:"subjectKey"`
	DisplayName string            `json:"displayName"`
	AvatarURL   string            `json:"avatarUrl,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}
