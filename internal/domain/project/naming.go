package project

import "strings"

// FolderName is the directory a new project named name is created in.
func FolderName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

// NaturalLess orders strings case-insensitively with digit runs compared
// by value, so "clip2" sorts before "clip10". Names with equal values,
// such as "clip02" and "Clip2", are ordered by their lowercased text.
func NaturalLess(a, b string) bool {
	ra, rb := []rune(strings.ToLower(a)), []rune(strings.ToLower(b))
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		if isDigit(ra[i]) && isDigit(rb[j]) {
			si := i
			for i < len(ra) && isDigit(ra[i]) {
				i++
			}
			sj := j
			for j < len(rb) && isDigit(rb[j]) {
				j++
			}
			na := strings.TrimLeft(string(ra[si:i]), "0")
			nb := strings.TrimLeft(string(rb[sj:j]), "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		if ra[i] != rb[j] {
			return ra[i] < rb[j]
		}
		i++
		j++
	}
	if len(ra)-i != len(rb)-j {
		return len(ra)-i < len(rb)-j
	}
	// equal natural keys: fall back to the lowercased then the raw text
	if la, lb := strings.ToLower(a), strings.ToLower(b); la != lb {
		return la < lb
	}
	return a < b
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
