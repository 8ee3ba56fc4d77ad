// Package listusers implements the List Users query use case.
//
// It returns every registered user in registration order.
package listusers
