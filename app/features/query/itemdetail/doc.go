// Package itemdetail implements the Item Detail query use case, which includes the item's rating.
//
// The rating is the mean score over closed loans only, rounded half away from zero to two
// decimals. An item nobody has returned yet has no rating, which is distinct from a rating of 0.
package itemdetail
