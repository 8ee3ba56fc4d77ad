// Package simulation drives realistic lending traffic through the command handlers.
//
// It registers a population of users and items, then lets workers borrow and return
// random items concurrently. A small share of operations is deliberately wrong (returning
// an item someone else holds, borrowing a held item) so rejections show up in the
// metrics the same way they would in production.
package simulation
