package privacy

// Category is a class of PII handled by one matcher
type Category string

const (
	CategoryEmail      Category = "email"
	CategoryPhone      Category = "phone"
	CategoryName       Category = "name"
	CategoryIdentifier Category = "identifier"
)

// Categories lists every category in pipeline order
var Categories = []Category{
	CategoryEmail,
	CategoryPhone,
	CategoryName,
	CategoryIdentifier,
}

// Finding summarises the replacements made for one category in one call
type Finding struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
	New      int      `json:"new"` // first-seen values added to the mapping table
}

// ProcessResult contains the result of processing text through the engine
type ProcessResult struct {
	Text     string    `json:"text"`
	Findings []Finding `json:"findings"`
}

// Total returns the number of replaced spans across all categories
func (r ProcessResult) Total() int {
	total := 0
	for _, f := range r.Findings {
		total += f.Count
	}
	return total
}

// Mapping is one entry of a category mapping table
type Mapping struct {
	Original    string
	Replacement string
}

// CategoryStats describes the accumulated state of one category
type CategoryStats struct {
	Category Category `json:"category"`
	Enabled  bool     `json:"enabled"`
	Mappings int      `json:"mappings"`
	Counter  int      `json:"counter"`
}

// Stats describes the accumulated state of an engine
type Stats struct {
	Documents  int             `json:"documents"`
	Categories []CategoryStats `json:"categories"`
}
