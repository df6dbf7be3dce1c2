// Package types provides the fixed-width primitive values shared by every
// layer of the plugin format: record type signatures, form identifiers,
// packed edit dates, and packed version-control user pairs.
//
// All values are plain comparable Go values. Conversions to and from their
// wire form never fail.
package types
