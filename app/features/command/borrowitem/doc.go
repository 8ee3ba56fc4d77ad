// Package borrowitem implements the Borrow Item use case.
//
// A registered user borrows a registered item that nobody currently holds. The command
// handler runs Read -> Decide -> Write inside one store transaction: it locks the item
// row before reading the item's open entry, so two concurrent borrows of the same item
// are serialized and the second one observes the first one's entry.
//
// The business rules live in the pure Decide function.
package borrowitem
