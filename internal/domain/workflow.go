package domain

// Workflow represents a named, ordered pipeline template. Node order
// defines execution order.
type Workflow struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags"`
	Nodes       []Node   `json:"nodes"`
}

// Node is one step inside a workflow template.
type Node struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Icon        string          `json:"icon,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  []ParameterSpec `json:"parameters"`
}

// ParameterSpec describes a single configurable workflow parameter.
type ParameterSpec struct {
	ID      string            `json:"id"`
	Label   string            `json:"label,omitempty"`
	Type    string            `json:"type"`
	Default any               `json:"default,omitempty"`
	Options []ParameterOption `json:"options,omitempty"`
}

// ParameterOption is one selectable value for a select-style parameter.
type ParameterOption struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// ParameterIDs returns the union of all node parameter ids across the
// workflow, in node order. A job's parameter map is keyed by this set.
func (w Workflow) ParameterIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, n := range w.Nodes {
		for _, p := range n.Parameters {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			ids = append(ids, p.ID)
		}
	}
	return ids
}
