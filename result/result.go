// Package result accumulates per-command outcomes of script runs.
package result

import (
	"fmt"
	"time"

	"github.com/wippyai/wasm-spectest/errors"
	"github.com/wippyai/wasm-spectest/script"
)

// Status is the harness verdict on one command.
type Status uint8

const (
	StatusPass Status = iota
	StatusSkip
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusSkip:
		return "skip"
	case StatusFail:
		return "fail"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Outcome is the verdict on one command. Reason and Err are empty for passes.
type Outcome struct {
	Command script.Command
	Err     error
	Reason  errors.Kind
	Status  Status
}

// Description is the one-line report form: the command followed by the
// error's context chain.
func (o Outcome) Description() string {
	if o.Err == nil {
		return script.Describe(o.Command)
	}
	return fmt.Sprintf("%s: %v", script.Describe(o.Command), o.Err)
}

// Counts holds aggregate totals.
type Counts struct {
	Total   int
	Passed  int
	Skipped int
	Failed  int
}

// Add accumulates other into c.
func (c *Counts) Add(other Counts) {
	c.Total += other.Total
	c.Passed += other.Passed
	c.Skipped += other.Skipped
	c.Failed += other.Failed
}

// ScriptResult holds the outcomes of one script in script order.
type ScriptResult struct {
	// Err is set when the script could not run at all, e.g. it failed to
	// load. Outcomes is empty then.
	Err      error
	Name     string
	Path     string
	RunID    string
	Outcomes []Outcome
	Duration time.Duration
	counts   Counts
}

// New creates an empty result for the named script.
func New(name, path string) *ScriptResult {
	return &ScriptResult{Name: name, Path: path}
}

// Pass records a passing command.
func (r *ScriptResult) Pass(cmd script.Command) {
	r.add(Outcome{Command: cmd, Status: StatusPass})
}

// Skip records a command the harness declined to judge.
func (r *ScriptResult) Skip(cmd script.Command, err error) {
	r.add(Outcome{Command: cmd, Status: StatusSkip, Err: err, Reason: reasonOf(err)})
}

// Fail records a failing command.
func (r *ScriptResult) Fail(cmd script.Command, err error) {
	r.add(Outcome{Command: cmd, Status: StatusFail, Err: err, Reason: reasonOf(err)})
}

// Record classifies the error returned for cmd: nil passes, unsupported
// reasons skip and everything else fails.
func (r *ScriptResult) Record(cmd script.Command, err error) Status {
	switch {
	case err == nil:
		r.Pass(cmd)
		return StatusPass
	case errors.IsSkip(errors.ReasonOf(err)):
		r.Skip(cmd, err)
		return StatusSkip
	default:
		r.Fail(cmd, err)
		return StatusFail
	}
}

func (r *ScriptResult) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.counts.Total++
	switch o.Status {
	case StatusPass:
		r.counts.Passed++
	case StatusSkip:
		r.counts.Skipped++
	case StatusFail:
		r.counts.Failed++
	}
}

// Counts returns the aggregate totals.
func (r *ScriptResult) Counts() Counts {
	return r.counts
}

// Failed reports whether any command failed or the script did not run.
func (r *ScriptResult) Failed() bool {
	return r.Err != nil || r.counts.Failed > 0
}

// Failures returns the description of every failed command.
func (r *ScriptResult) Failures() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Status == StatusFail {
			out = append(out, o.Description())
		}
	}
	return out
}

// Filter returns the outcomes with the given status.
func (r *ScriptResult) Filter(s Status) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == s {
			out = append(out, o)
		}
	}
	return out
}

func reasonOf(err error) errors.Kind {
	if k := errors.ReasonOf(err); k != "" {
		return k
	}
	return errors.ClassOf(err)
}

// Summary aggregates the results of several scripts in input order.
type Summary struct {
	Scripts []*ScriptResult
	Counts  Counts
	// Errored counts scripts that failed to run.
	Errored int
}

// Add appends r to the summary.
func (s *Summary) Add(r *ScriptResult) {
	s.Scripts = append(s.Scripts, r)
	s.Counts.Add(r.Counts())
	if r.Err != nil {
		s.Errored++
	}
}

// Failed reports whether any script failed.
func (s *Summary) Failed() bool {
	return s.Counts.Failed > 0 || s.Errored > 0
}
