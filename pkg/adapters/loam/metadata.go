package loam

// TreeMetadata is the front matter of a decision tree stored in a Loam repository.
// Sections are kept loosely typed so that both YAML front matter and JSON
// documents decode into it; document.FromMap applies the schema.
type TreeMetadata struct {
	ID          string         `json:"id" mapstructure:"id"`
	Name        string         `json:"name" mapstructure:"name"`
	Description string         `json:"description" mapstructure:"description"`
	InputTypes  []any          `json:"input-types" mapstructure:"input-types"`
	ResultType  map[string]any `json:"result-type" mapstructure:"result-type"`
	Tree        []any          `json:"tree" mapstructure:"tree"`
}

// toMap rebuilds the raw document map expected by document.FromMap.
func (m TreeMetadata) toMap() map[string]any {
	raw := map[string]any{
		"name":        m.Name,
		"description": m.Description,
		"input-types": m.InputTypes,
		"tree":        m.Tree,
	}
	if m.ResultType != nil {
		raw["result-type"] = m.ResultType
	}
	return raw
}
