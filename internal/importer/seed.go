package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/macroplace/internal/model"
)

// SeedResult holds a seed placement and the problems met while reading it.
type SeedResult struct {
	Placement *model.Placement
	Missing   []string // DB nodes absent from the file, placed at their netlist position
	Warnings  []string
}

// SeedFromDB places every node at its netlist position.
func SeedFromDB(db *model.DB, gridSize float64) *model.Placement {
	p := model.NewPlacement(gridSize)
	for _, name := range db.Names() {
		n := db.MustNode(name)
		p.Set(model.NewRecordAt(n, n.X, n.Y, gridSize))
	}
	return p
}

// LoadSeedPl reads a seed placement from a .pl file. Macro coordinates are
// moved by the benchmark shift when shift is set; ports always keep their
// coordinates.
func LoadSeedPl(path string, db *model.DB, bench model.Benchmark, shift bool) (*SeedResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed: %w", err)
	}
	defer f.Close()
	return ReadSeedPl(f, db, bench, shift)
}

// ReadSeedPl is LoadSeedPl on a stream.
func ReadSeedPl(r io.Reader, db *model.DB, bench model.Benchmark, shift bool) (*SeedResult, error) {
	positions, err := ReadPl(r)
	if err != nil {
		return nil, err
	}
	var dx, dy float64
	if shift {
		dx, dy = bench.ShiftX, bench.ShiftY
	}
	return buildSeed(db, bench.GridSize, positions, dx, dy), nil
}

// LoadPlacementCSV reads the last block of a placement history file.
func LoadPlacementCSV(path string, db *model.DB, gridSize float64) (*SeedResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open placement: %w", err)
	}
	defer f.Close()
	return ReadPlacementCSV(f, db, gridSize)
}

// ReadPlacementCSV parses a placement history: blocks that start with a
// numeric "score,wallclock" row followed by "name,x,y" rows. Only the last
// block is used.
func ReadPlacementCSV(r io.Reader, db *model.DB, gridSize float64) (*SeedResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read placement: %w", err)
	}

	start := -1
	for i, row := range records {
		if len(row) > 0 && isNumeric(row[0]) {
			start = i + 1
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("placement file has no score row")
	}

	positions := make(map[string][2]float64)
	var warnings []string
	for i := start; i < len(records); i++ {
		row := records[i]
		if len(row) < 3 {
			warnings = append(warnings, fmt.Sprintf("Line %d: expected name,x,y", i+1))
			continue
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if errX != nil || errY != nil {
			warnings = append(warnings, fmt.Sprintf("Line %d: invalid position", i+1))
			continue
		}
		positions[strings.TrimSpace(row[0])] = [2]float64{x, y}
	}

	res := buildSeed(db, gridSize, positions, 0, 0)
	res.Warnings = append(warnings, res.Warnings...)
	return res, nil
}

func buildSeed(db *model.DB, gridSize float64, positions map[string][2]float64, dx, dy float64) *SeedResult {
	res := &SeedResult{Placement: model.NewPlacement(gridSize)}
	for _, name := range db.Names() {
		n := db.MustNode(name)
		pos, ok := positions[name]
		if !ok {
			res.Missing = append(res.Missing, name)
			res.Placement.Set(model.NewRecordAt(n, n.X, n.Y, gridSize))
			continue
		}
		x, y := pos[0], pos[1]
		if !n.IsPort {
			x += dx
			y += dy
		}
		res.Placement.Set(model.NewRecordAt(n, x, y, gridSize))
	}
	if len(res.Missing) > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d nodes missing from seed, using netlist positions", len(res.Missing)))
	}
	return res
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
