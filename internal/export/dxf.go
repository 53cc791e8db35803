package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/macroplace/internal/model"
)

// DXF layer names.
const (
	LayerCanvas = "CANVAS"
	LayerMacros = "MACROS"
	LayerPorts  = "PORTS"
	LayerRegion = "REGION"
	LayerLabels = "LABELS"
)

// ExportDXF writes the placement as a DXF drawing in chip coordinates.
// Every node is a closed LWPOLYLINE on the MACROS or PORTS layer with a
// TEXT label at its center, so the drawing can be edited in a CAD tool and
// read back with importer.ImportDXFPlacement.
func ExportDXF(path string, db *model.DB, p *model.Placement, region *model.Region) error {
	if p == nil || p.Len() == 0 {
		return fmt.Errorf("no placement to export")
	}

	d := dxf.NewDrawing()
	layers := []struct {
		name  string
		color color.ColorNumber
	}{
		{LayerCanvas, color.White},
		{LayerRegion, color.Red},
		{LayerPorts, color.Blue},
		{LayerLabels, color.White},
		{LayerMacros, color.Green},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.color, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", l.name, err)
		}
	}

	if err := d.ChangeLayer(LayerCanvas); err != nil {
		return err
	}
	if err := drawRect(d, 0, 0, db.Width, db.Height); err != nil {
		return err
	}

	if region != nil {
		if err := d.ChangeLayer(LayerRegion); err != nil {
			return err
		}
		if region.Radius > 0 {
			if _, err := d.Circle(region.CenterX, region.CenterY, 0, region.Radius); err != nil {
				return fmt.Errorf("failed to draw core: %w", err)
			}
		}
		if region.Right > region.Left && region.Top > region.Bottom {
			if err := drawRect(d, region.Left, region.Bottom, region.Right-region.Left, region.Top-region.Bottom); err != nil {
				return err
			}
		}
	}

	for _, rec := range p.Records() {
		n, ok := db.Node(rec.Name)
		if !ok {
			return fmt.Errorf("export %q: %w", rec.Name, model.ErrNodeNotFound)
		}
		layer := LayerMacros
		if n.IsPort {
			layer = LayerPorts
		}
		if err := d.ChangeLayer(layer); err != nil {
			return err
		}
		if err := drawRect(d, rec.X, rec.Y, rec.Width, rec.Height); err != nil {
			return err
		}

		if err := d.ChangeLayer(LayerLabels); err != nil {
			return err
		}
		height := 0.2 * min(rec.Width, rec.Height)
		if _, err := d.Text(rec.Name, rec.CenterX(), rec.CenterY(), 0, height); err != nil {
			return fmt.Errorf("failed to label %s: %w", rec.Name, err)
		}
	}

	return d.SaveAs(path)
}

func drawRect(d *drawing.Drawing, x, y, w, h float64) error {
	_, err := d.LwPolyline(true,
		[]float64{x, y},
		[]float64{x + w, y},
		[]float64{x + w, y + h},
		[]float64{x, y + h},
	)
	if err != nil {
		return fmt.Errorf("failed to draw rectangle: %w", err)
	}
	return nil
}
