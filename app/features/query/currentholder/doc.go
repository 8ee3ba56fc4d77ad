// Package currentholder implements the Current Holder query use case.
//
// Availability is derived from the history: an item is borrowed exactly when it has an open entry.
package currentholder
