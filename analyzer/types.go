package analyzer

// SkippedFile is a file left out of the graph because it could not be analyzed
type SkippedFile struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}
