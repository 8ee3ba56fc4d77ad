package userdetail

import (
	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// UserDetail is the query result.
type UserDetail struct {
	User         ledger.User
	PastLoans    []ledger.PastLoan
	CurrentLoans []ledger.CurrentLoan
}
