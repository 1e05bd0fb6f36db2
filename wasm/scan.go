package wasm

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"
)

// DecodeError reports a malformed binary encoding.
type DecodeError struct {
	Err     error
	Offset  int
	Section byte
}

func (e *DecodeError) Error() string {
	if e.Offset < 8 {
		return fmt.Sprintf("offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("%s section at offset %d: %v", SectionName(e.Section), e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var (
	ErrMagic             = errors.New("magic header not detected")
	ErrVersion           = errors.New("unknown binary version")
	ErrSectionID         = errors.New("malformed section id")
	ErrSectionOrder      = errors.New("unexpected content after last section")
	ErrSectionSize       = errors.New("section size mismatch")
	ErrLengthOutOfBounds = errors.New("length out of bounds")
	ErrMalformedUTF8     = errors.New("malformed UTF-8 encoding")
	ErrImportKind        = errors.New("malformed import kind")
	ErrExportKind        = errors.New("malformed export kind")
	ErrLimitsFlag        = errors.New("integer too large")
	ErrMutability        = errors.New("malformed mutability")
	ErrFuncCodeCount     = errors.New("function and code section have inconsistent lengths")
)

// Section locates one section payload inside a module binary.
type Section struct {
	ID     byte
	Start  int // first payload byte
	End    int // one past the last payload byte
	Header int // offset of the section id byte
}

// Limits describes size constraints for tables and memories.
type Limits struct {
	Min    uint64
	Max    uint64
	HasMax bool
	Shared bool
}

// Import is one entry of the import section. Desc keeps the raw descriptor
// bytes following the kind byte.
type Import struct {
	Module  string
	Name    string
	Desc    []byte
	Limits  Limits
	TypeIdx uint32
	Kind    byte
	ValType ValType
	Mutable bool
}

// Export is one entry of the export section.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// Module is the framing-level view of a binary: where its sections are and
// what it imports and exports. Instruction bodies are not decoded.
type Module struct {
	Sections  []Section
	Imports   []Import
	Exports   []Export
	FuncCount uint32
	CodeCount uint32
}

// ImportModules returns the distinct import module names in first-seen order.
func (m *Module) ImportModules() []string {
	seen := make(map[string]bool, len(m.Imports))
	var names []string
	for _, imp := range m.Imports {
		if !seen[imp.Module] {
			seen[imp.Module] = true
			names = append(names, imp.Module)
		}
	}
	return names
}

// Section returns the first section with the given id.
func (m *Module) Section(id byte) (Section, bool) {
	for _, s := range m.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Scan checks the binary framing of a module: preamble, section ids, order
// and sizes, import and export entries, custom section names and the
// function/code count agreement. Any error returned is a *DecodeError.
func Scan(bin []byte) (*Module, error) {
	if len(bin) < 4 || !bytes.Equal(bin[:4], Magic) {
		return nil, &DecodeError{Offset: 0, Err: ErrMagic}
	}
	if len(bin) < 8 || !bytes.Equal(bin[4:8], Version) {
		return nil, &DecodeError{Offset: 4, Err: ErrVersion}
	}

	m := &Module{}
	lastRank := 0
	var hasFunc, hasCode bool

	pos := 8
	for pos < len(bin) {
		header := pos
		id := bin[pos]
		pos++

		size, n, err := DecodeULEB128(bin[pos:])
		if err != nil {
			return nil, &DecodeError{Offset: pos, Section: id, Err: err}
		}
		pos += n
		end := pos + int(size)
		if end > len(bin) || end < pos {
			return nil, &DecodeError{Offset: pos, Section: id, Err: ErrUnexpectedEOF}
		}

		if id != SectionCustom {
			rank, ok := sectionOrder[id]
			if !ok {
				return nil, &DecodeError{Offset: header, Section: id, Err: ErrSectionID}
			}
			if rank <= lastRank {
				return nil, &DecodeError{Offset: header, Section: id, Err: ErrSectionOrder}
			}
			lastRank = rank
		}

		sec := Section{ID: id, Start: pos, End: end, Header: header}
		r := &reader{buf: bin[:end], pos: pos, section: id}

		switch id {
		case SectionCustom:
			if _, err := r.name(); err != nil {
				return nil, err
			}
			r.pos = end
		case SectionImport:
			imports, err := r.imports()
			if err != nil {
				return nil, err
			}
			m.Imports = imports
		case SectionFunction:
			hasFunc = true
			count, err := r.u32()
			if err != nil {
				return nil, err
			}
			for i := uint32(0); i < count; i++ {
				if _, err := r.u32(); err != nil {
					return nil, err
				}
			}
			m.FuncCount = count
		case SectionExport:
			exports, err := r.exports()
			if err != nil {
				return nil, err
			}
			m.Exports = exports
		case SectionCode:
			hasCode = true
			count, err := r.u32()
			if err != nil {
				return nil, err
			}
			for i := uint32(0); i < count; i++ {
				bodySize, err := r.u32()
				if err != nil {
					return nil, err
				}
				if err := r.skip(int(bodySize)); err != nil {
					return nil, err
				}
			}
			m.CodeCount = count
		default:
			r.pos = end
		}

		if r.pos != end {
			return nil, &DecodeError{Offset: r.pos, Section: id, Err: ErrSectionSize}
		}
		m.Sections = append(m.Sections, sec)
		pos = end
	}

	if (hasFunc || hasCode) && m.FuncCount != m.CodeCount {
		return nil, &DecodeError{Offset: len(bin), Section: SectionCode, Err: ErrFuncCodeCount}
	}
	return m, nil
}

// reader walks one section payload.
type reader struct {
	buf     []byte
	pos     int
	section byte
}

func (r *reader) fail(err error) error {
	return &DecodeError{Offset: r.pos, Section: r.section, Err: err}
}

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, r.fail(ErrUnexpectedEOF)
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) u32() (uint32, error) {
	v, n, err := DecodeULEB128(r.buf[r.pos:])
	if err != nil {
		return 0, r.fail(err)
	}
	r.pos += n
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	v, n, err := DecodeULEB128u64(r.buf[r.pos:])
	if err != nil {
		return 0, r.fail(err)
	}
	r.pos += n
	return v, nil
}

func (r *reader) skip(n int) error {
	if n < 0 || r.pos+n > len(r.buf) {
		return r.fail(ErrUnexpectedEOF)
	}
	r.pos += n
	return nil
}

func (r *reader) name() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	if int(n) > len(r.buf)-r.pos {
		return "", r.fail(ErrLengthOutOfBounds)
	}
	s := r.buf[r.pos : r.pos+int(n)]
	if !utf8.Valid(s) {
		return "", r.fail(ErrMalformedUTF8)
	}
	r.pos += int(n)
	return string(s), nil
}

func (r *reader) limits() (Limits, error) {
	flag, err := r.readByte()
	if err != nil {
		return Limits{}, err
	}
	if flag > 0x07 {
		return Limits{}, r.fail(ErrLimitsFlag)
	}
	var l Limits
	l.HasMax = flag&0x01 != 0
	l.Shared = flag&0x02 != 0
	read := r.u64
	if flag&0x04 == 0 {
		read = func() (uint64, error) {
			v, err := r.u32()
			return uint64(v), err
		}
	}
	if l.Min, err = read(); err != nil {
		return Limits{}, err
	}
	if l.HasMax {
		if l.Max, err = read(); err != nil {
			return Limits{}, err
		}
	}
	return l, nil
}

func (r *reader) imports() ([]Import, error) {
	count, err := r.u32()
	if err != nil {
		return nil, err
	}
	var imports []Import
	for i := uint32(0); i < count; i++ {
		var imp Import
		if imp.Module, err = r.name(); err != nil {
			return nil, err
		}
		if imp.Name, err = r.name(); err != nil {
			return nil, err
		}
		if imp.Kind, err = r.readByte(); err != nil {
			return nil, err
		}
		descStart := r.pos
		switch imp.Kind {
		case KindFunc:
			if imp.TypeIdx, err = r.u32(); err != nil {
				return nil, err
			}
		case KindTable:
			elem, err := r.readByte()
			if err != nil {
				return nil, err
			}
			imp.ValType = ValType(elem)
			if imp.Limits, err = r.limits(); err != nil {
				return nil, err
			}
		case KindMemory:
			if imp.Limits, err = r.limits(); err != nil {
				return nil, err
			}
		case KindGlobal:
			vt, err := r.readByte()
			if err != nil {
				return nil, err
			}
			imp.ValType = ValType(vt)
			mut, err := r.readByte()
			if err != nil {
				return nil, err
			}
			if mut > 1 {
				return nil, r.fail(ErrMutability)
			}
			imp.Mutable = mut == 1
		case KindTag:
			if _, err := r.readByte(); err != nil {
				return nil, err
			}
			if imp.TypeIdx, err = r.u32(); err != nil {
				return nil, err
			}
		default:
			return nil, r.fail(ErrImportKind)
		}
		imp.Desc = r.buf[descStart:r.pos]
		imports = append(imports, imp)
	}
	return imports, nil
}

func (r *reader) exports() ([]Export, error) {
	count, err := r.u32()
	if err != nil {
		return nil, err
	}
	var exports []Export
	for i := uint32(0); i < count; i++ {
		var exp Export
		if exp.Name, err = r.name(); err != nil {
			return nil, err
		}
		if exp.Kind, err = r.readByte(); err != nil {
			return nil, err
		}
		if exp.Kind > KindTag {
			return nil, r.fail(ErrExportKind)
		}
		if exp.Idx, err = r.u32(); err != nil {
			return nil, err
		}
		exports = append(exports, exp)
	}
	return exports, nil
}
