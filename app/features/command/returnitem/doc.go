// Package returnitem implements the Return Item use case.
//
// Only the user holding the item can return it, and the return closes exactly that
// user's open entry with a score. When no open entry exists for the (user, item) pair
// the command is rejected. No history is ever synthesized to make a return succeed.
package returnitem
