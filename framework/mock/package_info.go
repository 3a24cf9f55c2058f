// Package mock provides the test doubles that test bodies use through T.Vi(): a virtual
// clock with fake timers, and spies that record how a function was called.
//
// The clock and the spy registry belong to one run of one root module. They are shared by
// all of that module's tests, including concurrent ones, so every method is safe for
// concurrent use; the runner resets them between modules.
package mock
