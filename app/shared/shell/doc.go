// Package shell contains the imperative glue shared by the lending features:
// handler contracts, and the observability helpers the observable wrappers use.
package shell
