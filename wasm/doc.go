// Package wasm provides low-level WebAssembly binary utilities for the harness.
//
// It does not validate instruction bodies. The engine does that. What it does
// is check binary framing so that malformed encodings can be told apart from
// invalid but well-formed modules, rewrite import module names so registered
// aliases resolve to live instances, and assemble small module binaries.
//
// # Encoding
//
// LEB128 (Little Endian Base 128) encoding for WebAssembly integers:
//
//	encoded := wasm.EncodeULEB128(300)   // unsigned
//	encoded := wasm.EncodeSLEB128(-100)  // signed
//
// # Scanning
//
// Check framing and list imports and exports:
//
//	mod, err := wasm.Scan(bin)
//	for _, name := range mod.ImportModules() { ... }
//
// # Rewriting
//
// Point imports at the internal name of an aliased instance:
//
//	out := wasm.RewriteImportModules(bin, mod, map[string]string{"M": "$3"})
//
// # Building
//
//	b := wasm.NewBuilder()
//	f := b.AddFunc(nil, []wasm.ValType{wasm.ValI32}, nil, wasm.I32Const(42))
//	b.Export("answer", wasm.KindFunc, f)
//	bin := b.Build()
package wasm
