package citation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type name struct {
	family string
	given  string
}

func parseAuthors(raw []string) []name {
	var out []name
	for _, a := range raw {
		a = strings.Join(strings.Fields(a), " ")
		if a == "" {
			continue
		}
		if family, given, ok := strings.Cut(a, ","); ok {
			out = append(out, name{family: strings.TrimSpace(family), given: strings.TrimSpace(given)})
			continue
		}
		i := strings.LastIndex(a, " ")
		if i < 0 {
			out = append(out, name{family: a})
			continue
		}
		out = append(out, name{family: a[i+1:], given: a[:i]})
	}
	return out
}

// inverted is "Family, Given".
func (n name) inverted() string {
	return join(", ", n.family, n.given)
}

// natural is "Given Family".
func (n name) natural() string {
	return join(" ", n.given, n.family)
}

// initials is "Family, G. M." as APA lists authors.
func (n name) initials() string {
	var parts []string
	for _, g := range strings.FieldsFunc(n.given, func(r rune) bool { return r == ' ' || r == '.' }) {
		r, _ := utf8.DecodeRuneInString(g)
		parts = append(parts, string(unicode.ToUpper(r))+".")
	}
	return join(", ", n.family, strings.Join(parts, " "))
}

func apaAuthors(ns []name) string {
	list := make([]string, 0, len(ns))
	for _, n := range ns {
		list = append(list, n.initials())
	}
	switch len(list) {
	case 0:
		return ""
	case 1:
		return list[0]
	case 2:
		return list[0] + ", & " + list[1]
	}
	return strings.Join(list[:len(list)-1], ", ") + ", & " + list[len(list)-1]
}

func mlaAuthors(ns []name) string {
	switch len(ns) {
	case 0:
		return ""
	case 1:
		return ns[0].inverted()
	case 2:
		return ns[0].inverted() + ", and " + ns[1].natural()
	}
	return ns[0].inverted() + ", et al"
}

func chicagoAuthors(ns []name) string {
	switch len(ns) {
	case 0:
		return ""
	case 1:
		return ns[0].inverted()
	case 2:
		return ns[0].inverted() + ", and " + ns[1].natural()
	}
	list := []string{ns[0].inverted()}
	for _, n := range ns[1 : len(ns)-1] {
		list = append(list, n.natural())
	}
	return strings.Join(list, ", ") + ", and " + ns[len(ns)-1].natural()
}
