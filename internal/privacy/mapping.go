package privacy

// mappingTable remembers the replacement assigned to each original value.
// Entries are kept in insertion order and never removed.
type mappingTable struct {
	replacements map[string]string
	order        []string
}

func newMappingTable() *mappingTable {
	return &mappingTable{replacements: make(map[string]string)}
}

func (m *mappingTable) lookup(original string) (string, bool) {
	replacement, ok := m.replacements[original]
	return replacement, ok
}

func (m *mappingTable) store(original, replacement string) {
	if _, exists := m.replacements[original]; exists {
		return
	}
	m.replacements[original] = replacement
	m.order = append(m.order, original)
}

func (m *mappingTable) len() int {
	return len(m.order)
}

func (m *mappingTable) entries() []Mapping {
	out := make([]Mapping, 0, len(m.order))
	for _, original := range m.order {
		out = append(out, Mapping{Original: original, Replacement: m.replacements[original]})
	}
	return out
}

// passStats counts what one category pass did
type passStats struct {
	count int
	new   int
}

// resolve returns the cached replacement for original, or assigns one with
// assign and caches it.
func (m *mappingTable) resolve(original string, stats *passStats, assign func() string) string {
	stats.count++
	if replacement, ok := m.lookup(original); ok {
		return replacement
	}
	replacement := assign()
	m.store(original, replacement)
	stats.new++
	return replacement
}
