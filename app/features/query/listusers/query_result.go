package listusers

import (
	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// Users is the query result.
type Users struct {
	Users []ledger.User
	Count int
}
