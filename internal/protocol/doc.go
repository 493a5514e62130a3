// Package protocol owns the field message model and its wire codec.
//
// Ownership boundary:
// - typed values and the line grammar that produces them
// - message insertion rules (unique field numbers below the bitmap width)
// - bitmap + value serialization and the schema driven decoder
package protocol
