package scigraph

// bbopGraph is the graph document SciGraph returns for node and
// neighborhood requests.
type bbopGraph struct {
	Nodes []bbopNode `json:"nodes"`
	Edges []bbopEdge `json:"edges"`
}

type bbopNode struct {
	ID    string   `json:"id"`
	Label string   `json:"lbl"`
	Meta  bbopMeta `json:"meta"`
}

type bbopMeta struct {
	Category   []string `json:"category"`
	Definition []string `json:"definition"`
}

type bbopEdge struct {
	Subject   string `json:"sub"`
	Predicate string `json:"pred"`
	Object    string `json:"obj"`
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
