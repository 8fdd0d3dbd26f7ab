package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shotlist/internal"
)

// Input is a document reduced to either block-grammar text or an already
// tabular shot list.
type Input struct {
	Source internal.InputSource
	Text   string
	Table  []*internal.NormalizedShot
}

func SourceFromName(name string) internal.InputSource {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return internal.SourceHTML
	case ".pdf":
		return internal.SourcePDF
	case ".csv":
		return internal.SourceCSV
	case ".xlsx":
		return internal.SourceXLSX
	default:
		return internal.SourceText
	}
}

func ExtractInput(source internal.InputSource, content []byte) (Input, error) {
	in := Input{Source: source}
	switch source {
	case internal.SourceText:
		in.Text = string(content)
	case internal.SourceHTML:
		text, err := ExtractHTMLText(string(content))
		if err != nil {
			return in, err
		}
		if strings.Contains(text, ShotStart) {
			in.Text = text
			return in, nil
		}
		if table, err := ReadHTMLTable(string(content)); err == nil {
			in.Table = table
			return in, nil
		}
		in.Text = text
	case internal.SourcePDF:
		text, err := ExtractPDFText(content)
		if err != nil {
			return in, err
		}
		in.Text = text
	case internal.SourceCSV:
		table, err := ReadTable(string(content))
		if err != nil {
			return in, err
		}
		in.Table = table
	case internal.SourceXLSX:
		table, err := ReadXLSXTable(content)
		if err != nil {
			return in, err
		}
		in.Table = table
	default:
		return in, fmt.Errorf("unsupported input type: %s", source)
	}
	return in, nil
}

// ReadInputFile loads path. An empty source is inferred from the extension.
func ReadInputFile(path string, source internal.InputSource) (Input, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return Input{}, err
	}
	if source == "" {
		source = SourceFromName(path)
	}
	return ExtractInput(source, blob)
}
