package model

// Package is the subset of a gemspec this tool reads.
type Package struct {
	Name     string
	Homepage string
	Metadata map[string]string
	// Path is the gemspec file, relative to the repository root.
	Path string
}

// Gemspec metadata keys scanned for the GitHub repository, in priority order.
const (
	MetadataSourceCodeURI = "source_code_uri"
	MetadataHomepageURI   = "homepage_uri"
	MetadataBugTrackerURI = "bug_tracker_uri"
)

// RepositoryCandidates returns the URIs that may name the GitHub repository,
// in the order they are consulted. Empty values are skipped.
func (p Package) RepositoryCandidates() []string {
	all := []string{
		p.Metadata[MetadataSourceCodeURI],
		p.Metadata[MetadataHomepageURI],
		p.Metadata[MetadataBugTrackerURI],
		p.Homepage,
	}
	candidates := make([]string, 0, len(all))
	for _, uri := range all {
		if uri != "" {
			candidates = append(candidates, uri)
		}
	}
	return candidates
}
