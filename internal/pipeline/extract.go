package pipeline

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"shotlist/internal"
	"shotlist/internal/util"
)

var blockElements = "p,div,li,tr,h1,h2,h3,h4,h5,h6,pre,section,article"

// ExtractHTMLText flattens an HTML breakdown or screenplay to plain text,
// keeping one line per block element and <br>.
func ExtractHTMLText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script,style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return cleanLines(doc.Text()), nil
}

// ReadHTMLTable reads the first table with a header row and at least one
// data row. Header cells become shot keys.
func ReadHTMLTable(html string) ([]*internal.NormalizedShot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	var shots []*internal.NormalizedShot
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return true
		}
		header := []string{}
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			header = append(header, util.CollapseSpaces(cell.Text()))
		})
		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if shot := rowToShot(header, cells); shot != nil {
				shots = append(shots, shot)
			}
		})
		return len(shots) == 0
	})
	if len(shots) == 0 {
		return nil, ErrNoRows
	}
	return shots, nil
}

// ReadXLSXTable reads the first non-empty sheet of a workbook exported by
// ExportXLSX or written by hand with a header row.
func ReadXLSXTable(content []byte) ([]*internal.NormalizedShot, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) < 2 {
			continue
		}
		header := make([]string, len(rows[0]))
		for i, h := range rows[0] {
			header[i] = strings.TrimSpace(h)
		}
		var shots []*internal.NormalizedShot
		for _, row := range rows[1:] {
			if shot := rowToShot(header, row); shot != nil {
				shots = append(shots, shot)
			}
		}
		if len(shots) > 0 {
			return shots, nil
		}
	}
	return nil, ErrNoRows
}

// ExtractPDFText returns the plain text of every page.
func ExtractPDFText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return cleanLines(b.String()), nil
}

func cleanLines(text string) string {
	lines := util.SplitLines(text)
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t ")
		if strings.TrimSpace(line) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
