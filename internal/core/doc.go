// Package core provides the internal implementation of impfunc's real and fake
// function gateways.
//
// FakeFunctions decides, per function name, whether to delegate to the real
// implementation, return a configured value, take the next entry of a Stack, invoke
// a Static func, or fail with a named error. Every accepted call is recorded in a
// Ledger for later assertions.
package core
