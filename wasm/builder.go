package wasm

import (
	"encoding/binary"
)

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (t FuncType) equal(o FuncType) bool {
	if len(t.Params) != len(o.Params) || len(t.Results) != len(o.Results) {
		return false
	}
	for i := range t.Params {
		if t.Params[i] != o.Params[i] {
			return false
		}
	}
	for i := range t.Results {
		if t.Results[i] != o.Results[i] {
			return false
		}
	}
	return true
}

type builderImport struct {
	module string
	name   string
	desc   []byte
	kind   byte
}

type builderFunc struct {
	locals  []ValType
	body    []byte
	typeIdx uint32
}

type builderTable struct {
	limits Limits
	elem   ValType
}

type builderGlobal struct {
	init    uint64
	typ     ValType
	mutable bool
}

type builderData struct {
	bytes  []byte
	offset uint32
}

// Builder assembles module binaries. Imports must be added before the
// definitions of the same kind since imported entries occupy the low end of
// each index space.
type Builder struct {
	types    []FuncType
	imports  []builderImport
	funcs    []builderFunc
	tables   []builderTable
	memories []Limits
	globals  []builderGlobal
	exports  []Export
	data     []builderData
	start    *uint32

	importedFuncs    uint32
	importedTables   uint32
	importedMemories uint32
	importedGlobals  uint32
}

// NewBuilder creates an empty module builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) typeIndex(ft FuncType) uint32 {
	for i, t := range b.types {
		if t.equal(ft) {
			return uint32(i)
		}
	}
	b.types = append(b.types, ft)
	return uint32(len(b.types) - 1)
}

// AddImportFunc imports a function and returns its function index.
func (b *Builder) AddImportFunc(module, name string, params, results []ValType) uint32 {
	idx := b.typeIndex(FuncType{Params: params, Results: results})
	b.imports = append(b.imports, builderImport{
		module: module,
		name:   name,
		kind:   KindFunc,
		desc:   EncodeULEB128(idx),
	})
	b.importedFuncs++
	return b.importedFuncs - 1
}

// AddImportMemory imports a memory and returns its memory index.
func (b *Builder) AddImportMemory(module, name string, limits Limits) uint32 {
	b.imports = append(b.imports, builderImport{
		module: module,
		name:   name,
		kind:   KindMemory,
		desc:   appendLimits(nil, limits),
	})
	b.importedMemories++
	return b.importedMemories - 1
}

// AddImportTable imports a table and returns its table index.
func (b *Builder) AddImportTable(module, name string, elem ValType, limits Limits) uint32 {
	b.imports = append(b.imports, builderImport{
		module: module,
		name:   name,
		kind:   KindTable,
		desc:   appendLimits([]byte{byte(elem)}, limits),
	})
	b.importedTables++
	return b.importedTables - 1
}

// AddImportGlobal imports a global and returns its global index.
func (b *Builder) AddImportGlobal(module, name string, typ ValType, mutable bool) uint32 {
	b.imports = append(b.imports, builderImport{
		module: module,
		name:   name,
		kind:   KindGlobal,
		desc:   []byte{byte(typ), boolByte(mutable)},
	})
	b.importedGlobals++
	return b.importedGlobals - 1
}

// AddFunc defines a function. body holds the instructions without the
// trailing end opcode.
func (b *Builder) AddFunc(params, results, locals []ValType, body []byte) uint32 {
	b.funcs = append(b.funcs, builderFunc{
		typeIdx: b.typeIndex(FuncType{Params: params, Results: results}),
		locals:  locals,
		body:    body,
	})
	return b.importedFuncs + uint32(len(b.funcs)-1)
}

// AddTable defines a table.
func (b *Builder) AddTable(elem ValType, limits Limits) uint32 {
	b.tables = append(b.tables, builderTable{elem: elem, limits: limits})
	return b.importedTables + uint32(len(b.tables)-1)
}

// AddMemory defines a memory.
func (b *Builder) AddMemory(limits Limits) uint32 {
	b.memories = append(b.memories, limits)
	return b.importedMemories + uint32(len(b.memories)-1)
}

// AddGlobal defines a global initialized with the bit pattern init.
func (b *Builder) AddGlobal(typ ValType, mutable bool, init uint64) uint32 {
	b.globals = append(b.globals, builderGlobal{typ: typ, mutable: mutable, init: init})
	return b.importedGlobals + uint32(len(b.globals)-1)
}

// AddData places an active data segment into memory 0.
func (b *Builder) AddData(offset uint32, data []byte) {
	b.data = append(b.data, builderData{offset: offset, bytes: data})
}

// Export exports the entity of the given kind and index.
func (b *Builder) Export(name string, kind byte, idx uint32) {
	b.exports = append(b.exports, Export{Name: name, Kind: kind, Idx: idx})
}

// SetStart designates the start function.
func (b *Builder) SetStart(funcIdx uint32) {
	b.start = &funcIdx
}

// Build generates the module bytes.
func (b *Builder) Build() []byte {
	wasm := make([]byte, 0, 64)
	wasm = append(wasm, Magic...)
	wasm = append(wasm, Version...)

	if len(b.types) > 0 {
		wasm = appendSection(wasm, SectionType, b.buildTypeSection())
	}
	if len(b.imports) > 0 {
		wasm = appendSection(wasm, SectionImport, b.buildImportSection())
	}
	if len(b.funcs) > 0 {
		section := EncodeULEB128(uint32(len(b.funcs)))
		for _, f := range b.funcs {
			section = append(section, EncodeULEB128(f.typeIdx)...)
		}
		wasm = appendSection(wasm, SectionFunction, section)
	}
	if len(b.tables) > 0 {
		section := EncodeULEB128(uint32(len(b.tables)))
		for _, t := range b.tables {
			section = append(section, byte(t.elem))
			section = appendLimits(section, t.limits)
		}
		wasm = appendSection(wasm, SectionTable, section)
	}
	if len(b.memories) > 0 {
		section := EncodeULEB128(uint32(len(b.memories)))
		for _, m := range b.memories {
			section = appendLimits(section, m)
		}
		wasm = appendSection(wasm, SectionMemory, section)
	}
	if len(b.globals) > 0 {
		wasm = appendSection(wasm, SectionGlobal, b.buildGlobalSection())
	}
	if len(b.exports) > 0 {
		section := EncodeULEB128(uint32(len(b.exports)))
		for _, e := range b.exports {
			section = appendName(section, e.Name)
			section = append(section, e.Kind)
			section = append(section, EncodeULEB128(e.Idx)...)
		}
		wasm = appendSection(wasm, SectionExport, section)
	}
	if b.start != nil {
		wasm = appendSection(wasm, SectionStart, EncodeULEB128(*b.start))
	}
	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, SectionCode, b.buildCodeSection())
	}
	if len(b.data) > 0 {
		section := EncodeULEB128(uint32(len(b.data)))
		for _, d := range b.data {
			section = append(section, 0x00)
			section = append(section, I32Const(int32(d.offset))...)
			section = append(section, OpEnd)
			section = append(section, EncodeULEB128(uint32(len(d.bytes)))...)
			section = append(section, d.bytes...)
		}
		wasm = appendSection(wasm, SectionData, section)
	}

	return wasm
}

func (b *Builder) buildTypeSection() []byte {
	section := EncodeULEB128(uint32(len(b.types)))
	for _, t := range b.types {
		section = append(section, FuncTypeForm)
		section = append(section, EncodeULEB128(uint32(len(t.Params)))...)
		for _, p := range t.Params {
			section = append(section, byte(p))
		}
		section = append(section, EncodeULEB128(uint32(len(t.Results)))...)
		for _, r := range t.Results {
			section = append(section, byte(r))
		}
	}
	return section
}

func (b *Builder) buildImportSection() []byte {
	section := EncodeULEB128(uint32(len(b.imports)))
	for _, imp := range b.imports {
		section = appendName(section, imp.module)
		section = appendName(section, imp.name)
		section = append(section, imp.kind)
		section = append(section, imp.desc...)
	}
	return section
}

func (b *Builder) buildGlobalSection() []byte {
	section := EncodeULEB128(uint32(len(b.globals)))
	for _, g := range b.globals {
		section = append(section, byte(g.typ), boolByte(g.mutable))
		switch g.typ {
		case ValI64:
			section = append(section, I64Const(int64(g.init))...)
		case ValF32:
			section = append(section, F32Const(uint32(g.init))...)
		case ValF64:
			section = append(section, F64Const(g.init)...)
		default:
			section = append(section, I32Const(int32(uint32(g.init)))...)
		}
		section = append(section, OpEnd)
	}
	return section
}

func (b *Builder) buildCodeSection() []byte {
	section := EncodeULEB128(uint32(len(b.funcs)))
	for _, f := range b.funcs {
		body := EncodeULEB128(uint32(len(f.locals)))
		for _, l := range f.locals {
			body = append(body, 0x01, byte(l))
		}
		body = append(body, f.body...)
		body = append(body, OpEnd)

		section = append(section, EncodeULEB128(uint32(len(body)))...)
		section = append(section, body...)
	}
	return section
}

func appendSection(dst []byte, id byte, payload []byte) []byte {
	dst = append(dst, id)
	dst = append(dst, EncodeULEB128(uint32(len(payload)))...)
	return append(dst, payload...)
}

func appendLimits(dst []byte, l Limits) []byte {
	var flag byte
	if l.HasMax {
		flag |= 0x01
	}
	if l.Shared {
		flag |= 0x02
	}
	dst = append(dst, flag)
	dst = append(dst, EncodeULEB128(uint32(l.Min))...)
	if l.HasMax {
		dst = append(dst, EncodeULEB128(uint32(l.Max))...)
	}
	return dst
}

func boolByte(v bool) byte {
	if v {
		return 0x01
	}
	return 0x00
}

// Instruction encoders for building function bodies.

// I32Const encodes i32.const v.
func I32Const(v int32) []byte {
	return append([]byte{OpI32Const}, EncodeSLEB128(v)...)
}

// I64Const encodes i64.const v.
func I64Const(v int64) []byte {
	return append([]byte{OpI64Const}, EncodeSLEB128(v)...)
}

// F32Const encodes f32.const with the given bit pattern.
func F32Const(bits uint32) []byte {
	return binary.LittleEndian.AppendUint32([]byte{OpF32Const}, bits)
}

// F64Const encodes f64.const with the given bit pattern.
func F64Const(bits uint64) []byte {
	return binary.LittleEndian.AppendUint64([]byte{OpF64Const}, bits)
}

// LocalGet encodes local.get idx.
func LocalGet(idx uint32) []byte {
	return append([]byte{OpLocalGet}, EncodeULEB128(idx)...)
}

// GlobalGet encodes global.get idx.
func GlobalGet(idx uint32) []byte {
	return append([]byte{OpGlobalGet}, EncodeULEB128(idx)...)
}

// Call encodes call idx.
func Call(idx uint32) []byte {
	return append([]byte{OpCall}, EncodeULEB128(idx)...)
}

// Concat joins instruction encodings into one body.
func Concat(instrs ...[]byte) []byte {
	var body []byte
	for _, in := range instrs {
		body = append(body, in...)
	}
	return body
}
