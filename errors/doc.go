// Package errors provides the structured error taxonomy for the spectest harness.
//
// Errors are categorized by Phase (where the error occurred) and Kind. Engine
// errors carry a class Kind (deserialization, validation, link, instantiation,
// trap, unsupported_feature, ...), runtime traps additionally carry a TrapKind.
// The command interpreter wraps engine errors in a harness reason
// (unexpected_success, unexpected_failure, incorrect_result,
// unsupported_command, unsupported_feature) with Phase "interpret", so a single
// chain keeps both the classification used for branching and the full detail
// used for reporting:
//
//	err := errors.UnexpectedFailure(engineErr, "expected validation error")
//	errors.ReasonOf(err) // unexpected_failure
//	errors.ClassOf(err)  // e.g. link
//
// Use the Builder for structured construction:
//
//	err := errors.New(errors.PhaseInvoke, errors.KindTrap).
//		Trap(errors.TrapStackOverflow).
//		Detail("invoke %q", "fac").
//		Build()
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
