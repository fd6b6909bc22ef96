package sources

// Kind selects how a discovery source is parsed.
type Kind string

const (
	KindRSS  Kind = "rss"
	KindHTML Kind = "html"
)

// Source is one curated page or feed scanned by discovery.
type Source struct {
	Name         string   `yaml:"name" json:"name"`
	URL          string   `yaml:"url" json:"url"`
	Kind         Kind     `yaml:"kind" json:"kind"`
	ProviderHint string   `yaml:"providerHint" json:"providerHint"`
	Category     []string `yaml:"category" json:"category"`
	Stage        []string `yaml:"stage" json:"stage"`
}

// Seed is a hand-curated suggestion waiting to be filed.
type Seed struct {
	Title          string   `yaml:"title" json:"title"`
	SuggestionType string   `yaml:"suggestionType" json:"suggestionType"`
	ProgramURL     string   `yaml:"programUrl" json:"programUrl"`
	Provider       string   `yaml:"provider" json:"provider"`
	Category       []string `yaml:"category" json:"category"`
	Stage          []string `yaml:"stage" json:"stage"`
	EvidenceURL    string   `yaml:"evidenceUrl" json:"evidenceUrl"`
	Notes          string   `yaml:"notes" json:"notes"`
}
