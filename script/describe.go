package script

import (
	"fmt"
	"strings"

	"github.com/wippyai/wasm-spectest/value"
)

// Describe returns a one-line human-readable description of cmd for reports
// and logs.
func Describe(cmd Command) string {
	var b strings.Builder
	loc := cmd.Location()
	if loc.File != "" {
		fmt.Fprintf(&b, "%s:%d: ", loc.File, loc.Line)
	} else {
		fmt.Fprintf(&b, "line %d: ", loc.Line)
	}
	b.WriteString(cmd.Kind().String())

	switch c := cmd.(type) {
	case DefineModule:
		if c.Name != "" {
			fmt.Fprintf(&b, " %s", c.Name)
		}
		fmt.Fprintf(&b, " (%s)", c.Filename)
	case AssertInvalid:
		describeModule(&b, c.Module, c.Text)
	case AssertMalformed:
		describeModule(&b, c.Module, c.Text)
	case AssertUninstantiable:
		describeModule(&b, c.Module, c.Text)
	case AssertUnlinkable:
		describeModule(&b, c.Module, c.Text)
	case Register:
		name := c.Name
		if name == "" {
			name = "<latest>"
		}
		fmt.Fprintf(&b, " %s as %q", name, c.As)
	case PerformAction:
		describeAction(&b, c.Action)
	case AssertExhaustion:
		describeAction(&b, c.Action)
		describeText(&b, c.Text)
	case AssertReturn:
		describeAction(&b, c.Action)
		b.WriteString(" -> [")
		writeValues(&b, c.Expected)
		b.WriteByte(']')
	case AssertReturnCanonicalNaN:
		describeAction(&b, c.Action)
		b.WriteString(" -> nan:canonical")
	case AssertReturnArithmeticNaN:
		describeAction(&b, c.Action)
		b.WriteString(" -> nan:arithmetic")
	case AssertTrap:
		describeAction(&b, c.Action)
		describeText(&b, c.Text)
	case Unsupported:
		fmt.Fprintf(&b, " %s: %s", c.Type, c.Reason)
	}
	return b.String()
}

// DescribeAction formats an action as module.field(args).
func DescribeAction(a Action) string {
	var b strings.Builder
	describeAction(&b, a)
	return strings.TrimPrefix(b.String(), " ")
}

func describeModule(b *strings.Builder, m Module, text string) {
	fmt.Fprintf(b, " (%s)", m.Filename)
	describeText(b, text)
}

func describeText(b *strings.Builder, text string) {
	if text != "" {
		fmt.Fprintf(b, " %q", text)
	}
}

func describeAction(b *strings.Builder, a Action) {
	b.WriteByte(' ')
	b.WriteString(a.Type.String())
	b.WriteByte(' ')
	if a.Module != "" {
		b.WriteString(a.Module)
		b.WriteByte('.')
	}
	fmt.Fprintf(b, "%q", a.Field)
	if a.Type == ActionGet {
		return
	}
	b.WriteByte('(')
	writeValues(b, a.Args)
	b.WriteByte(')')
}

func writeValues(b *strings.Builder, vals []value.Value) {
	for i, v := range vals {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
}
