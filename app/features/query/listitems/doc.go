// Package listitems implements the List Items query use case.
//
// It returns every registered item in registration order.
package listitems
