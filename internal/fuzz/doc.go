// Package fuzztests houses Go fuzz harnesses for the body-file reader and
// the move gatherer. They guard against panics and hangs on arbitrary
// input: a body file either fails to load with an error, or loads, survives
// a canonical re-encoding, and is gathered without any panic other than an
// analyzer internal error.
package fuzztests
