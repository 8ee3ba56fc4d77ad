// Package core holds the pure building blocks shared by the lending features.
//
// Nothing in here performs I/O. Decide functions in the feature packages return a
// DecisionResult and the command handlers in the shell turn it into a write.
package core
