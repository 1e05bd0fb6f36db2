// Package script models spec test scripts as a closed set of commands and
// loads them from wast2json output.
//
// A wast2json run turns a .wast file into a JSON command list plus one .wasm
// file per module. Load reads both:
//
//	s, err := script.Load("testdata/i32.json")
//	for _, cmd := range s.Commands {
//		switch c := cmd.(type) {
//		case script.AssertReturn:
//			...
//		}
//	}
//
// Command shapes the harness cannot represent (text modules, SIMD and
// reference values, unknown command types) load as Unsupported so the run
// can skip them. Structural problems in the JSON, or a missing module file,
// fail the whole load.
package script
