package neo4j

import (
	"fmt"
	"regexp"
)

const (
	keyNode = "n"
	keyPath = "p"

	cypherListSpecies = "MATCH (n:Species) RETURN n"

	cypherGeneToPhenotype = "MATCH p = (g:Gene)-->(t:Phenotype) WHERE g.primaryKey = $primaryKey RETURN p"

	cypherNeighborhood = "MATCH p = (s {primaryKey: $primaryKey})-[r]-(o) RETURN p"
)

var labelPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// findByPrimaryKeyCypher builds the entity lookup. The label is spliced
// into the pattern since Cypher cannot parameterise labels, so it must pass
// labelPattern first.
func findByPrimaryKeyCypher(label string) (string, error) {
	if label == "" {
		return "MATCH (n {primaryKey: $primaryKey}) RETURN n", nil
	}
	if !labelPattern.MatchString(label) {
		return "", fmt.Errorf("invalid node label %q", label)
	}
	return fmt.Sprintf("MATCH (n:`%s` {primaryKey: $primaryKey}) RETURN n", label), nil
}

// neighborhoodCypher appends a LIMIT clause when limit is positive
func neighborhoodCypher(limit int) (string, map[string]any) {
	params := map[string]any{}
	if limit <= 0 {
		return cypherNeighborhood, params
	}
	params["limit"] = int64(limit)
	return cypherNeighborhood + " LIMIT $limit", params
}
