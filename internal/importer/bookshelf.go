package importer

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/macroplace/internal/model"
)

// Design is a preprocessed benchmark netlist.
type Design struct {
	DB       *model.DB
	Removed  []string // Ports deleted by the port policy
	Warnings []string
}

// LoadBenchmark reads <dir>/<name>.nodes, .nets and .pl and applies the
// benchmark's port policy.
func LoadBenchmark(dir string, bench model.Benchmark) (*Design, error) {
	base := filepath.Join(dir, bench.Name)

	nodesFile, err := os.Open(base + ".nodes")
	if err != nil {
		return nil, fmt.Errorf("failed to open nodes: %w", err)
	}
	defer nodesFile.Close()
	netsFile, err := os.Open(base + ".nets")
	if err != nil {
		return nil, fmt.Errorf("failed to open nets: %w", err)
	}
	defer netsFile.Close()
	plFile, err := os.Open(base + ".pl")
	if err != nil {
		return nil, fmt.Errorf("failed to open pl: %w", err)
	}
	defer plFile.Close()

	return ReadDesign(bench, nodesFile, netsFile, plFile)
}

// ReadDesign builds a design from the three bookshelf streams. Only
// terminal nodes become DB nodes; the area of the other nodes is summed
// into the DB's cell area. The canvas is the square covering every
// terminal at its .pl position.
func ReadDesign(bench model.Benchmark, nodes, nets, pl io.Reader) (*Design, error) {
	terminals, cellArea, err := ReadNodes(nodes)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(terminals))
	for _, n := range terminals {
		known[n.Name] = true
	}

	netList, warnings, err := ReadNets(nets, known)
	if err != nil {
		return nil, err
	}

	positions, err := ReadPl(pl)
	if err != nil {
		return nil, err
	}

	var extent float64
	for i := range terminals {
		n := &terminals[i]
		pos, ok := positions[n.Name]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s has no position, using origin", n.Name))
		}
		n.X, n.Y = pos[0], pos[1]
		extent = math.Max(extent, math.Max(n.X+n.Width, n.Y+n.Height))
	}

	db := model.NewDB(bench.Name, terminals, netList, cellArea, extent, extent)
	design := &Design{DB: db, Warnings: warnings}
	design.Removed = ApplyPortPolicy(db, bench)
	return design, nil
}

// ApplyPortPolicy deletes the ports that the benchmark does not keep and
// returns their names.
func ApplyPortPolicy(db *model.DB, bench model.Benchmark) []string {
	switch bench.Ports {
	case model.PortsDrop:
		return db.RemovePorts(func(model.Node) bool { return true })
	case model.PortsBoundary:
		ratio := bench.BoundaryRatio
		if ratio <= 0 {
			ratio = 0.1
		}
		return db.RemovePorts(func(n model.Node) bool { return !db.IsBoundary(n, ratio) })
	default:
		return nil
	}
}

// ReadNodes parses a .nodes file. It returns the terminal nodes and the
// summed area of the movable cells.
func ReadNodes(r io.Reader) ([]model.Node, float64, error) {
	var terminals []model.Node
	var cellArea float64

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if skipBookshelfLine(fields) || len(fields) < 3 {
			continue
		}
		w, errW := strconv.ParseFloat(fields[1], 64)
		h, errH := strconv.ParseFloat(fields[2], 64)
		if errW != nil || errH != nil {
			return nil, 0, fmt.Errorf("nodes line %d: invalid size %q x %q", lineNum, fields[1], fields[2])
		}
		if isTerminal(fields[len(fields)-1]) {
			terminals = append(terminals, model.Node{Name: fields[0], Width: w, Height: h})
		} else {
			cellArea += w * h
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read nodes: %w", err)
	}
	return terminals, cellArea, nil
}

// ReadNets parses a .nets file, keeping only pins on known nodes. A node
// listed twice on one net keeps its first pin.
func ReadNets(r io.Reader, known map[string]bool) ([]model.Net, []string, error) {
	var nets []model.Net
	var warnings []string
	var current *model.Net
	seen := map[string]bool{}

	flush := func() {
		if current != nil && len(current.Pins) > 0 {
			nets = append(nets, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if skipBookshelfLine(fields) {
			continue
		}
		if fields[0] == "NetDegree" {
			flush()
			name := fmt.Sprintf("net%d", len(nets))
			if len(fields) >= 4 {
				name = fields[len(fields)-1]
			}
			current = &model.Net{Name: name}
			seen = map[string]bool{}
			continue
		}
		if current == nil {
			warnings = append(warnings, fmt.Sprintf("nets line %d: pin outside of a net", lineNum))
			continue
		}
		if !known[fields[0]] || seen[fields[0]] {
			continue
		}

		pin := model.Pin{Node: fields[0]}
		if len(fields) > 1 {
			pin.Direction = fields[1]
		}
		if len(fields) >= 5 {
			x, errX := strconv.ParseFloat(fields[len(fields)-2], 64)
			y, errY := strconv.ParseFloat(fields[len(fields)-1], 64)
			if errX != nil || errY != nil {
				warnings = append(warnings, fmt.Sprintf("nets line %d: invalid pin offset, using center", lineNum))
			} else {
				pin.XOffset, pin.YOffset = x, y
			}
		}
		seen[fields[0]] = true
		current.Pins = append(current.Pins, pin)
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read nets: %w", err)
	}
	return nets, warnings, nil
}

// ReadPl parses a .pl file into bottom-left positions keyed by node name.
func ReadPl(r io.Reader) (map[string][2]float64, error) {
	positions := make(map[string][2]float64)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if skipBookshelfLine(fields) || len(fields) < 3 {
			continue
		}
		x, errX := strconv.ParseFloat(fields[1], 64)
		y, errY := strconv.ParseFloat(fields[2], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("pl line %d: invalid position %q %q", lineNum, fields[1], fields[2])
		}
		positions[fields[0]] = [2]float64{x, y}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pl: %w", err)
	}
	return positions, nil
}

func skipBookshelfLine(fields []string) bool {
	if len(fields) == 0 {
		return true
	}
	switch {
	case strings.HasPrefix(fields[0], "#"),
		fields[0] == "UCLA",
		fields[0] == "NumNodes", fields[0] == "NumTerminals",
		fields[0] == "NumNets", fields[0] == "NumPins":
		return true
	}
	return false
}

func isTerminal(field string) bool {
	return field == "terminal" || field == "terminal_NI"
}
