package listitems

import (
	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// Items is the query result.
type Items struct {
	Items []ledger.Item
	Count int
}
