// Package spectest runs WebAssembly specification test scripts against wazero.
//
// Scripts are the JSON output of wast2json: a list of commands with the
// module binaries they reference. Each command is judged pass, skip or fail.
//
// # Architecture Overview
//
//	spectest/           Root package with RunFile and Run
//	├── script/         Command model, wast2json loader, command descriptions
//	├── value/          Test values, engine translation, NaN classes
//	├── wasm/           Binary framing scan, import rewrite, module builder
//	├── engine/         Engine interfaces, wazero binding, spectest host module
//	├── registry/       Named and aliased instances of one script run
//	├── interp/         Per-command acceptance rules
//	├── result/         Outcomes and aggregate counts
//	├── runner/         Script loop and parallel multi-script runs
//	├── config/         spectest.yaml
//	└── errors/         Structured error types for classification
//
// # Quick Start
//
//	res, err := spectest.RunFile(ctx, "testdata/i32.json", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c := res.Counts()
//	fmt.Printf("%d passed, %d skipped, %d failed\n", c.Passed, c.Skipped, c.Failed)
//	for _, f := range res.Failures() {
//	    fmt.Println(f)
//	}
//
// # Outcomes
//
// A command passes when the engine's report matches what its kind requires.
// Commands the harness cannot represent, such as get actions or text
// modules, and modules using features the engine has disabled are skipped.
// Skips never count as failures.
//
// # Thread Safety
//
// Commands within a script run sequentially because later commands depend on
// instances and registrations created by earlier ones. Separate scripts share
// nothing and Run executes them in parallel.
package spectest
