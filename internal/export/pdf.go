package export

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/gosummarize/internal/report"
)

var linkRe = regexp.MustCompile(`\[((?:\\.|[^\]])+)\]\(([^)]+)\)`)

// PDF renders the Markdown form of r as a simple A4 document and writes it
// to w. Headings become bold lines and Markdown links become clickable.
func PDF(r report.Report, includeSummaries bool, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Search Results for: "+r.Query, true)
	pdf.SetCreator(appName, true)
	pdf.SetCreationDate(r.CreatedAt)
	// Core fonts are cp1252; translate UTF-8 input.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	scanner := bufio.NewScanner(strings.NewReader(Markdown(r, includeSummaries)))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		switch {
		case s == "":
			pdf.Ln(3)
		case s == "---":
			x, y := pdf.GetX(), pdf.GetY()
			pdf.Line(x, y, 200, y)
			pdf.Ln(3)
		case strings.HasPrefix(s, "#"):
			level := len(s) - len(strings.TrimLeft(s, "#"))
			text := strings.TrimSpace(s[level:])
			size := 16.0
			switch level {
			case 2:
				size = 13
			case 3:
				size = 11
			}
			pdf.SetFont("Helvetica", "B", size)
			writeLinks(pdf, tr, text, 7)
			pdf.Ln(8)
			pdf.SetFont("Helvetica", "", 11)
		case strings.HasPrefix(s, "> "):
			pdf.SetFont("Helvetica", "I", 11)
			pdf.MultiCell(0, 5, tr(strings.TrimPrefix(s, "> ")), "L", "L", false)
			pdf.SetFont("Helvetica", "", 11)
		default:
			text := s
			if strings.HasPrefix(s, "*") {
				text = strings.ReplaceAll(s, "*", "")
			}
			if !linkRe.MatchString(text) {
				pdf.MultiCell(0, 5, tr(text), "", "L", false)
				continue
			}
			writeLinks(pdf, tr, text, 5)
			pdf.Ln(6)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// writeLinks writes s inline, turning [text](url) into link strings.
func writeLinks(pdf *gofpdf.Fpdf, tr func(string) string, s string, h float64) {
	pos := 0
	for _, m := range linkRe.FindAllStringSubmatchIndex(s, -1) {
		if m[0] > pos {
			pdf.Write(h, tr(s[pos:m[0]]))
		}
		text := strings.NewReplacer(`\[`, "[", `\]`, "]").Replace(s[m[2]:m[3]])
		pdf.WriteLinkString(h, tr(text), s[m[4]:m[5]])
		pos = m[1]
	}
	if pos < len(s) {
		pdf.Write(h, tr(s[pos:]))
	}
}
