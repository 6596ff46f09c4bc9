package services

// Node and relationship property names used by the graph store schema.
const (
	propPrimaryKey = "primaryKey"
	propName       = "name"
	propSymbol     = "symbol"
	propType       = "type"
	propTaxonID    = "taxonId"
	propDefinition = "definition"
	propUUID       = "uuid"
)
