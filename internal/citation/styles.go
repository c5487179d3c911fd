package citation

// prefixed returns prefix+v, or "" when v is empty.
func prefixed(prefix, v string) string {
	if v == "" {
		return ""
	}
	return prefix + v
}

func apa(s Source, ns []name) string {
	d, _ := parseDate(s.Date)
	when := d.apa()
	if s.Kind != Website && d.year != 0 {
		when = d.yearString()
	}
	when = "(" + when + ")."
	var head string
	if a := apaAuthors(ns); a != "" {
		head = join(" ", period(a), when, period(s.Title))
	} else {
		head = join(" ", period(s.Title), when)
	}
	switch s.Kind {
	case Book:
		return join(" ", head, period(s.Publisher), s.DOI)
	case Journal:
		vol := s.Volume
		if s.Issue != "" {
			vol += "(" + s.Issue + ")"
		}
		return join(" ", head, period(join(", ", s.Journal, vol, s.Pages)), s.DOI)
	}
	tail := s.URL
	if acc, ok := parseDate(s.AccessDate); ok && s.URL != "" && acc.day > 0 {
		tail = "Retrieved " + acc.chicago() + ", from " + s.URL
	}
	return join(" ", head, period(s.SiteName), tail, s.DOI)
}

func mla(s Source, ns []name) string {
	d, _ := parseDate(s.Date)
	head := period(mlaAuthors(ns))
	switch s.Kind {
	case Book:
		return join(" ", head, period(s.Title), period(join(", ", s.Publisher, d.yearString())), period(s.DOI))
	case Journal:
		container := join(", ",
			s.Journal,
			prefixed("vol. ", s.Volume),
			prefixed("no. ", s.Issue),
			d.mla(),
			prefixed("pp. ", s.Pages),
		)
		return join(" ", head, quoted(s.Title), period(container), period(s.DOI))
	}
	accessed := ""
	if acc, ok := parseDate(s.AccessDate); ok {
		accessed = "Accessed " + period(acc.mla())
	}
	return join(" ", head, quoted(s.Title), period(join(", ", s.SiteName, d.mla(), s.URL)), accessed)
}

func chicago(s Source, ns []name) string {
	d, _ := parseDate(s.Date)
	head := period(chicagoAuthors(ns))
	switch s.Kind {
	case Book:
		return join(" ", head, period(s.Title), period(join(", ", s.Publisher, d.yearString())), period(s.DOI))
	case Journal:
		container := join(" ", s.Journal, s.Volume)
		container = join(", ", container, prefixed("no. ", s.Issue))
		if y := d.yearString(); y != "" {
			container = join(" ", container, "("+y+")")
		}
		if s.Pages != "" {
			container += ": " + s.Pages
		}
		return join(" ", head, quoted(s.Title), period(container), period(s.DOI))
	}
	accessed := ""
	if acc, ok := parseDate(s.AccessDate); ok {
		accessed = "Accessed " + period(acc.chicago())
	}
	return join(" ", head, quoted(s.Title), period(s.SiteName), period(d.chicago()), accessed, period(s.URL))
}
