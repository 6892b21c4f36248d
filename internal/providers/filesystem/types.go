package filesystem

// Entry types
const (
	EntryDirectory = "directory"
	EntryFile      = "file"
)

// DefaultSearchLimit caps filesystem.search results when no limit is given.
const DefaultSearchLimit = 500

// Entry is one child of a listed directory.
type Entry struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// SearchResult holds matches relative to the searched root.
type SearchResult struct {
	Root      string   `json:"root"`
	Matches   []string `json:"matches"`
	Truncated bool     `json:"truncated"`
}
