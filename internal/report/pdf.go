package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"shotlist/internal"
	"shotlist/internal/assets"
	"shotlist/internal/pipeline"
)

// PDFOptions controls the dossier layout. Sizes are millimetres.
type PDFOptions struct {
	Title    string
	Assets   *assets.MasterAssets
	FontSize float64
}

// dossierKeys are printed first, in this order, for every shot.
var dossierKeys = []string{"SCENE", "LOCATION", "SHOT_TYPE", "SHOT_FRAMING", "DESCRIPTION", "CHARACTERS", "DIALOGUE", "VFX", "SFX"}

// WritePDF renders one section per shot, followed by the master asset
// lists when opt.Assets is set.
func WritePDF(shots []*internal.NormalizedShot, outPath string, opt PDFOptions) error {
	if len(shots) == 0 {
		return pipeline.ErrNoShotData
	}
	fontSize := opt.FontSize
	if fontSize <= 0 {
		fontSize = 10
	}
	title := opt.Title
	if title == "" {
		title = "Shot Dossier"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAuthor("shotlist", false)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	lineH := fontSize * 0.5

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", fontSize+6)
	pdf.CellFormat(0, lineH*2, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(lineH)

	for i, shot := range shots {
		pdf.SetFont("Helvetica", "B", fontSize+2)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(0, lineH*1.6, tr("SHOT "+pipeline.ShotID(shot, i)), "", 1, "L", true, 0, "")
		for _, key := range orderedKeys(shot) {
			value := shot.Value(key)
			if strings.TrimSpace(value) == "" {
				continue
			}
			pdf.SetFont("Helvetica", "B", fontSize)
			pdf.CellFormat(45, lineH, tr(key), "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", fontSize)
			pdf.MultiCell(0, lineH, tr(value), "", "L", false)
		}
		pdf.Ln(lineH)
	}

	if opt.Assets != nil {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", fontSize+4)
		pdf.CellFormat(0, lineH*2, "Master Assets", "", 1, "L", false, 0, "")
		for _, category := range assets.Categories {
			list := opt.Assets.List(category)
			if list == "" {
				list = "None"
			}
			pdf.SetFont("Helvetica", "B", fontSize)
			pdf.CellFormat(0, lineH, tr(category), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", fontSize)
			pdf.MultiCell(0, lineH, tr(list), "", "L", false)
			pdf.Ln(lineH / 2)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func orderedKeys(shot *internal.NormalizedShot) []string {
	out := make([]string, 0, shot.Len())
	used := map[string]bool{}
	for _, want := range dossierKeys {
		if k, ok := shot.Find(want); ok {
			out = append(out, k)
			used[k] = true
		}
	}
	for _, k := range shot.Keys() {
		if !used[k] {
			out = append(out, k)
		}
	}
	return out
}
