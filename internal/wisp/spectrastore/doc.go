// Package spectrastore keeps named spectral pools in a SQLite database.
//
// A collection is the amplitude and phase pools extracted from one set of
// curves. Collections are keyed by name, identified by a UUID, and loaded
// back as a spectral.Library ready for synthesis. The schema is embedded in
// the binary and brought up to date by golang-migrate when the store opens.
package spectrastore
