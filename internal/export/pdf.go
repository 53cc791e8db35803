// Package export renders placement results as PDF reports, DXF drawings,
// Excel workbooks and convergence plots.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/macroplace/internal/model"
)

// macroColor represents an RGB color for a placed macro.
type macroColor struct {
	R, G, B int
}

var macroColors = []macroColor{
	{R: 102, G: 153, B: 204}, // steel blue
	{R: 153, G: 204, B: 153}, // sage
	{R: 230, G: 170, B: 90},  // amber
	{R: 180, G: 140, B: 200}, // lavender
	{R: 110, G: 190, B: 190}, // teal
	{R: 220, G: 120, B: 110}, // brick
	{R: 200, G: 200, B: 120}, // olive
	{R: 160, G: 130, B: 110}, // clay
}

// A4 landscape, millimetres.
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	qrSize       = 30.0
	rowHeight    = 5.0
)

// Report is everything a placement report shows.
type Report struct {
	RunID      string
	Command    string
	DB         *model.DB
	Placement  *model.Placement
	Region     *model.Region // Optional; drawn when set
	Bench      model.Benchmark
	Settings   model.Settings
	Seed       model.EvalRecord
	Best       model.EvalRecord
	Iterations int
	Accepted   int
}

// RunSummary is the data encoded into the report's QR code.
type RunSummary struct {
	RunID      string  `json:"run"`
	Benchmark  string  `json:"benchmark"`
	HPWL       float64 `json:"hpwl"`
	Dataflow   float64 `json:"dataflow"`
	Regularity float64 `json:"regularity"`
	Iterations int     `json:"iterations"`
	Accepted   int     `json:"accepted"`
}

// Summary returns the QR payload of r.
func (r Report) Summary() RunSummary {
	return RunSummary{
		RunID:      r.RunID,
		Benchmark:  r.Bench.Name,
		HPWL:       r.Best.HPWL,
		Dataflow:   r.Best.Dataflow,
		Regularity: r.Best.Regularity,
		Iterations: r.Iterations,
		Accepted:   r.Accepted,
	}
}

// ExportPDF generates a placement report: a layout page with the canvas,
// the regularity region and every placed node, followed by summary pages
// with metrics, settings and the macro positions.
func ExportPDF(path string, r Report) error {
	if r.DB == nil || r.Placement == nil || r.Placement.Len() == 0 {
		return fmt.Errorf("no placement to export")
	}
	if r.DB.Width <= 0 || r.DB.Height <= 0 {
		return fmt.Errorf("canvas has no extent")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	if err := renderLayoutPage(pdf, r); err != nil {
		return err
	}

	pdf.AddPage()
	renderSummaryPage(pdf, r)

	return pdf.OutputFileAndClose(path)
}

// renderLayoutPage draws the canvas with the placement on the current page.
func renderLayoutPage(pdf *fpdf.Fpdf, r Report) error {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s (%.0f x %.0f)", r.Bench.Name, r.DB.Width, r.DB.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight-qrSize, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Macros: %d | Ports: %d | HPWL: %.1f | Dataflow: %.1f | Regularity: %.1f",
		len(r.DB.Macros()), len(r.DB.Ports()), r.Best.HPWL, r.Best.Dataflow, r.Best.Regularity)
	pdf.CellFormat(pageWidth-marginLeft-marginRight-qrSize, 5, stats, "", 0, "L", false, 0, "")

	if err := drawSummaryQR(pdf, r.Summary(), pageWidth-marginRight-qrSize, marginTop); err != nil {
		return err
	}

	drawWidth := pageWidth - marginLeft - marginRight - qrSize - 5
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	scale := math.Min(drawWidth/r.DB.Width, drawHeight/r.DB.Height)
	canvasW := r.DB.Width * scale
	canvasH := r.DB.Height * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Chip coordinates grow upwards, page coordinates downwards.
	toPage := func(x, y float64) (float64, float64) {
		return offsetX + x*scale, offsetY + canvasH - y*scale
	}

	pdf.SetFillColor(245, 245, 240)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	if r.Region != nil {
		drawRegion(pdf, r.Region, scale, toPage)
	}

	for i, rec := range r.Placement.Records() {
		n, ok := r.DB.Node(rec.Name)
		if !ok {
			continue
		}
		px, py := toPage(rec.X, rec.Y+rec.Height)
		pw := rec.Width * scale
		ph := rec.Height * scale

		if n.IsPort {
			pdf.SetFillColor(60, 60, 60)
			pdf.SetDrawColor(60, 60, 60)
			pdf.SetLineWidth(0.1)
			pdf.Rect(px, py, math.Max(pw, 0.8), math.Max(ph, 0.8), "FD")
			continue
		}

		col := macroColors[i%len(macroColors)]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.2)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 10 && ph > 5 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)
			labelW := pdf.GetStringWidth(rec.Name)
			if labelW < pw-1 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-2)
				pdf.CellFormat(labelW, 4, rec.Name, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, r.DB, offsetX, offsetY, canvasW, canvasH)
	return nil
}

// drawRegion draws the core disc and the virtual boundary dashed.
func drawRegion(pdf *fpdf.Fpdf, region *model.Region, scale float64, toPage func(x, y float64) (float64, float64)) {
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.3)
	pdf.SetDashPattern([]float64{2, 1}, 0)

	cx, cy := toPage(region.CenterX, region.CenterY)
	if region.Radius > 0 {
		pdf.Circle(cx, cy, region.Radius*scale, "D")
	}

	left, top := toPage(region.Left, region.Top)
	right, bottom := toPage(region.Right, region.Bottom)
	if right > left && bottom > top {
		pdf.Rect(left, top, right-left, bottom-top, "D")
	}

	pdf.SetDashPattern([]float64{}, 0)
}

// drawSummaryQR places a QR code encoding the run summary at (x, y).
func drawSummaryQR(pdf *fpdf.Fpdf, summary RunSummary, x, y float64) error {
	qrData, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := "qr_" + summary.RunID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, x, y, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return nil
}

// drawDimensionAnnotations adds width and height labels outside the canvas.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, db *model.DB, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.0f", db.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.0f", db.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// renderSummaryPage draws metrics, settings and a macro position table,
// continuing the table on further pages as needed.
func renderSummaryPage(pdf *fpdf.Fpdf, r Report) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Placement Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	// Metrics table
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Metrics", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{40, 40, 40, 30}
	y = drawTableRow(pdf, y, colWidths, []string{"Metric", "Seed", "Best", "Change"}, true, 0)
	metrics := []struct {
		label      string
		seed, best float64
	}{
		{"HPWL", r.Seed.HPWL, r.Best.HPWL},
		{"Dataflow", r.Seed.Dataflow, r.Best.Dataflow},
		{"Regularity", r.Seed.Regularity, r.Best.Regularity},
	}
	for i, m := range metrics {
		y = drawTableRow(pdf, y, colWidths, []string{
			m.label,
			fmt.Sprintf("%.1f", m.seed),
			fmt.Sprintf("%.1f", m.best),
			percentChange(m.seed, m.best),
		}, false, i)
	}
	y += 6

	// Run settings, two columns side by side
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Run", "", 0, "L", false, 0, "")
	y += 9

	items := []struct {
		label string
		value string
	}{
		{"Run ID", r.RunID},
		{"Command", r.Command},
		{"Grid", fmt.Sprintf("%d x %g", r.Bench.GridNum, r.Bench.GridSize)},
		{"Ports", string(r.Bench.Ports)},
		{"Mask weights", r.Settings.Mask.String()},
		{"Evaluate weights", r.Settings.Evaluate.String()},
		{"Ranking", r.Settings.Ranking},
		{"Seed", fmt.Sprintf("%d", r.Settings.Seed)},
		{"Iterations", fmt.Sprintf("%d", r.Iterations)},
		{"Accepted", fmt.Sprintf("%d", r.Accepted)},
	}
	pdf.SetFont("Helvetica", "", 9)
	half := (len(items) + 1) / 2
	for i, item := range items {
		x := marginLeft + 5
		row := i
		if i >= half {
			x += 130
			row -= half
		}
		pdf.SetXY(x, y+float64(row)*rowHeight)
		pdf.CellFormat(40, rowHeight, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(80, rowHeight, item.value, "", 0, "L", false, 0, "")
	}
	y += float64(half)*rowHeight + 6

	// Macro positions
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Macro Positions", "", 0, "L", false, 0, "")
	y += 9

	posWidths := []float64{60, 35, 35, 35, 35, 30}
	header := []string{"Macro", "X", "Y", "Width", "Height", "Grid"}
	y = drawTableRow(pdf, y, posWidths, header, true, 0)
	i := 0
	for _, name := range r.DB.Macros() {
		rec, ok := r.Placement.Get(name)
		if !ok {
			continue
		}
		if y+rowHeight > pageHeight-marginBottom-6 {
			drawFooter(pdf)
			pdf.AddPage()
			y = drawTableRow(pdf, marginTop, posWidths, header, true, 0)
		}
		y = drawTableRow(pdf, y, posWidths, []string{
			rec.Name,
			fmt.Sprintf("%.1f", rec.X),
			fmt.Sprintf("%.1f", rec.Y),
			fmt.Sprintf("%.1f", rec.Width),
			fmt.Sprintf("%.1f", rec.Height),
			fmt.Sprintf("(%d, %d)", rec.GridX, rec.GridY),
		}, false, i)
		i++
	}

	drawFooter(pdf)
}

// drawTableRow draws one bordered table row and returns the next y.
func drawTableRow(pdf *fpdf.Fpdf, y float64, widths []float64, cells []string, header bool, index int) float64 {
	if header {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
	} else {
		pdf.SetFont("Helvetica", "", 9)
		if index%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
	}
	x := marginLeft
	for i, cell := range cells {
		pdf.SetXY(x, y)
		pdf.CellFormat(widths[i], rowHeight+1, cell, "1", 0, "C", true, 0, "")
		x += widths[i]
	}
	return y + rowHeight + 1
}

func drawFooter(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by macroplace", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// percentChange formats the relative change from before to after.
func percentChange(before, after float64) string {
	if before == 0 {
		return "-"
	}
	return fmt.Sprintf("%+.1f%%", 100*(after-before)/before)
}

// labelFontSize scales macro labels with the drawn rectangle.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
