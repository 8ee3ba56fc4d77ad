package itemdetail

import (
	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// ItemDetail is the query result.
type ItemDetail struct {
	Item   ledger.Item
	Rating ledger.Rating
}
