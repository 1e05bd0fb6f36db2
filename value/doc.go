// Package value maps spec-test literals to engine call values and back.
//
// A Value is a tagged bit container: integers and floats alike keep their
// exact bit pattern, so NaN payloads and signed zeros survive translation.
// Engine arguments are uint64 stack slots (ToEngine). Engine results arrive
// as an untyped Return and are reinterpreted by whatever type the caller
// expects (Return.As); the translator never infers a kind on its own.
package value
