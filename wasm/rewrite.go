package wasm

// RewriteImportModules returns a copy of bin where import module names found
// in renames are replaced with their mapped values. mod must be the result of
// Scan on the same bytes. The original slice is returned when nothing changes.
func RewriteImportModules(bin []byte, mod *Module, renames map[string]string) []byte {
	if !needsRewrite(mod, renames) {
		return bin
	}

	sec, ok := mod.Section(SectionImport)
	if !ok {
		return bin
	}

	section := EncodeULEB128(uint32(len(mod.Imports)))
	for _, imp := range mod.Imports {
		name := imp.Module
		if to, ok := renames[name]; ok {
			name = to
		}
		section = appendName(section, name)
		section = appendName(section, imp.Name)
		section = append(section, imp.Kind)
		section = append(section, imp.Desc...)
	}

	result := make([]byte, 0, len(bin)+len(section)-(sec.End-sec.Start))
	result = append(result, bin[:sec.Header]...)
	result = append(result, SectionImport)
	result = append(result, EncodeULEB128(uint32(len(section)))...)
	result = append(result, section...)
	result = append(result, bin[sec.End:]...)
	return result
}

func needsRewrite(mod *Module, renames map[string]string) bool {
	if mod == nil || len(renames) == 0 {
		return false
	}
	for _, imp := range mod.Imports {
		if to, ok := renames[imp.Module]; ok && to != imp.Module {
			return true
		}
	}
	return false
}
