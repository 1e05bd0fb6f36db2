// Package engine binds the harness to a WebAssembly runtime.
//
// The Engine and Instance interfaces are what the instance registry and the
// command interpreter consume. WazeroEngine implements them on wazero.
//
// # Instantiation Flow
//
//  1. wasm.Scan checks binary framing (deserialization errors)
//  2. wazero CompileModule validates the module as given (validation or unsupported feature)
//  3. import module names are resolved (link) and, when any changes, rewritten
//     to internal names and compiled again
//  4. imported functions and memories are checked against providers (link)
//  5. wazero InstantiateModule links and runs initialization (link or instantiation)
//
// Every failure is an *errors.Error whose Kind the interpreter branches on.
// Runtime traps carry an errors.TrapKind parsed from the wazero message.
//
// # Spectest Module
//
// Unless disabled, every engine provides the "spectest" import module with the
// functions, globals, table and memory the official test suite expects:
//
//	print print_i32 print_i64 print_f32 print_f64 print_i32_f32 print_f64_f64
//	global_i32 global_i64 global_f32 global_f64   (666 / 666.6)
//	table   (10..20 funcref)
//	memory  (1..2 pages)
//
// Calls to the print functions are logged at debug level to Config.Logger.
package engine
