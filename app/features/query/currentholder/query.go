package currentholder

import (
	"github.com/google/uuid"
)

const (
	queryType = "CurrentHolder"
)

// Query represents the intent to find out who holds an item.
type Query struct {
	ItemID uuid.UUID
}

// BuildQuery creates a new Query with the provided item ID.
func BuildQuery(itemID uuid.UUID) Query {
	return Query{ItemID: itemID}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
