// Package observable decorates command and query handlers with metrics, tracing, and logging.
//
// The wrappers never change what a handler returns. They only classify the outcome
// (success, rejected, error, canceled, timeout) and report it to whichever collectors were configured.
package observable
