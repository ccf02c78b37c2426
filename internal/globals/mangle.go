package globals

import (
	"strings"

	"github.com/cwbudde/irc/internal/term"
)

// contDigits/termDigits implement spec §4.5.1's base-31 number encoding:
// every digit but the last is drawn from the 31-symbol continuation
// alphabet; the final digit is drawn from the disjoint 10-symbol
// terminator alphabet, so a decoder can recognise the end of a number
// without a separator.
const (
	contDigits = "0123456789ABCDEFGHIJKLMNOPQRSTU"
	termDigits = "VWXYZvwxyz"
)

// encodeBase31 renders n using the continuation/terminator alphabet pair.
func encodeBase31(n int) string {
	if n < 0 {
		panic("globals: encodeBase31 of negative number")
	}
	q, r := n/10, n%10
	var cont []byte
	for q > 0 {
		cont = append(cont, contDigits[q%31])
		q /= 31
	}
	for i, j := 0, len(cont)-1; i < j; i, j = i+1, j-1 {
		cont[i], cont[j] = cont[j], cont[i]
	}
	return string(cont) + string(termDigits[r])
}

// Mangler assigns deterministic names to module-globals from their
// logical source-location path (spec §4.5.1): a trie-based
// structural-sharing scheme where a previously seen path prefix is
// emitted once and later occurrences back-reference it by index, plus a
// per-context counter suffix for local-linkage symbols.
type Mangler struct {
	index  map[string]int
	next   int
	locals map[string]int
	names  map[string]string // full path -> name first emitted for it
}

// NewMangler returns an empty mangler; one Mangler should be shared
// across every symbol of a single module so that prefix sharing and
// local-linkage counters are consistent module-wide.
func NewMangler() *Mangler {
	return &Mangler{index: make(map[string]int), locals: make(map[string]int), names: make(map[string]string)}
}

// Mangle returns path's mangled name. path is a chain of enclosing scope
// names from outermost to innermost (e.g. ["Module", "MyStruct",
// "Method"]). linkage selects whether a local-linkage disambiguating
// counter is appended. Mangling a full path that was already mangled
// returns the name emitted the first time.
func (m *Mangler) Mangle(path []string, linkage term.Linkage) string {
	key := strings.Join(path, ".")
	name, seen := m.names[key]
	var sb strings.Builder
	acc := ""
	for i, seg := range path {
		if seen {
			break
		}
		if acc == "" {
			acc = seg
		} else {
			acc = acc + "." + seg
		}
		if idx, ok := m.index[acc]; ok {
			sb.Reset()
			sb.WriteByte('S')
			sb.WriteString(encodeBase31(idx))
			continue
		}
		if i > 0 {
			sb.WriteByte('_')
		}
		sb.WriteString(encodeBase31(len(seg)))
		sb.WriteString(seg)
		m.index[acc] = m.next
		m.next++
	}
	if !seen {
		name = sb.String()
		m.names[key] = name
	}
	if linkage == term.LinkageLocal {
		n := m.locals[name]
		m.locals[name] = n + 1
		name = name + "$" + encodeBase31(n)
	}
	return name
}
