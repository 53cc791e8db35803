package model

import (
	"math"
	"sort"
)

// Node is a macro or port of the netlist. Dimensions and the netlist
// position are in physical units.
type Node struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	X      float64 `json:"x"` // Bottom-left x from the .pl file
	Y      float64 `json:"y"` // Bottom-left y from the .pl file
	IsPort bool    `json:"is_port"`
}

// Area returns width * height.
func (n Node) Area() float64 {
	return n.Width * n.Height
}

// ScaledWidth returns the footprint width in grid cells.
func (n Node) ScaledWidth(gridSize float64) int {
	return int(math.Ceil(n.Width / gridSize))
}

// ScaledHeight returns the footprint height in grid cells.
func (n Node) ScaledHeight(gridSize float64) int {
	return int(math.Ceil(n.Height / gridSize))
}

// Pin attaches a net to a node. Offsets are relative to the node center.
type Pin struct {
	Node      string  `json:"node"`
	Direction string  `json:"direction"`
	XOffset   float64 `json:"x_offset"`
	YOffset   float64 `json:"y_offset"`
}

// Net is a set of pins that should be wired together.
type Net struct {
	Name string `json:"name"`
	Pins []Pin  `json:"pins"`
}

// Pin returns the pin of the given node on this net.
func (n Net) Pin(node string) (Pin, bool) {
	for _, p := range n.Pins {
		if p.Node == node {
			return p, true
		}
	}
	return Pin{}, false
}

// DB is the read-only netlist consumed by the placement engine.
// Build it with NewDB; do not mutate nodes or nets afterwards.
type DB struct {
	Benchmark string
	Width     float64 // Canvas extent along x
	Height    float64 // Canvas extent along y
	CellArea  float64 // Total area of the standard cells that are not part of the DB

	nodes    map[string]*Node
	nets     []Net
	nodeNets map[string][]int
	macros   []string
	ports    []string
	avgArea  float64
}

// NewDB builds a netlist database. A node whose area is below the mean
// node area is classified as a port. Pins referencing unknown nodes are
// dropped, as are nets left with fewer than two macro pins.
func NewDB(benchmark string, nodes []Node, nets []Net, cellArea, width, height float64) *DB {
	db := &DB{
		Benchmark: benchmark,
		Width:     width,
		Height:    height,
		CellArea:  cellArea,
		nodes:     make(map[string]*Node, len(nodes)),
	}

	var total float64
	for i := range nodes {
		n := nodes[i]
		db.nodes[n.Name] = &n
		total += n.Area()
	}
	if len(nodes) > 0 {
		db.avgArea = total / float64(len(nodes))
	}
	for _, n := range db.nodes {
		n.IsPort = n.Area() < db.avgArea
	}

	db.setNets(nets)
	return db
}

// RemovePorts deletes every port for which drop returns true, strips the
// deleted ports from all nets and re-applies the net filter. It returns the
// names of the deleted ports in sorted order.
func (db *DB) RemovePorts(drop func(Node) bool) []string {
	var removed []string
	for name, n := range db.nodes {
		if n.IsPort && drop(*n) {
			removed = append(removed, name)
		}
	}
	sort.Strings(removed)
	for _, name := range removed {
		delete(db.nodes, name)
	}
	db.setNets(db.nets)
	return removed
}

func (db *DB) setNets(nets []Net) {
	kept := make([]Net, 0, len(nets))
	for _, net := range nets {
		pins := make([]Pin, 0, len(net.Pins))
		seen := make(map[string]bool, len(net.Pins))
		macroPins := 0
		for _, p := range net.Pins {
			n, ok := db.nodes[p.Node]
			if !ok || seen[p.Node] {
				continue
			}
			seen[p.Node] = true
			pins = append(pins, p)
			if !n.IsPort {
				macroPins++
			}
		}
		if macroPins <= 1 {
			continue
		}
		kept = append(kept, Net{Name: net.Name, Pins: pins})
	}
	db.nets = kept

	db.nodeNets = make(map[string][]int)
	for i, net := range db.nets {
		for _, p := range net.Pins {
			db.nodeNets[p.Node] = append(db.nodeNets[p.Node], i)
		}
	}

	db.macros = nil
	db.ports = nil
	for name, n := range db.nodes {
		if n.IsPort {
			db.ports = append(db.ports, name)
		} else {
			db.macros = append(db.macros, name)
		}
	}
	sort.Strings(db.macros)
	sort.Strings(db.ports)
}

// Node looks up a node by name.
func (db *DB) Node(name string) (*Node, bool) {
	n, ok := db.nodes[name]
	return n, ok
}

// MustNode returns the named node and panics if it does not exist.
// Only use it for names obtained from the DB itself.
func (db *DB) MustNode(name string) *Node {
	n, ok := db.nodes[name]
	if !ok {
		panic("model: unknown node " + name)
	}
	return n
}

// Has reports whether the DB contains the named node.
func (db *DB) Has(name string) bool {
	_, ok := db.nodes[name]
	return ok
}

// Nets returns all nets in file order.
func (db *DB) Nets() []Net { return db.nets }

// NetsOf returns the indices into Nets() of the nets touching node.
func (db *DB) NetsOf(node string) []int { return db.nodeNets[node] }

// Macros returns the names of all movable macros, sorted.
func (db *DB) Macros() []string { return db.macros }

// Ports returns the names of all fixed ports, sorted.
func (db *DB) Ports() []string { return db.ports }

// Names returns every node name, sorted.
func (db *DB) Names() []string {
	names := make([]string, 0, len(db.nodes))
	for name := range db.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AverageArea returns the mean node area used for port classification.
func (db *DB) AverageArea() float64 { return db.avgArea }

// MacroArea returns the summed area of all macros.
func (db *DB) MacroArea() float64 {
	var total float64
	for _, name := range db.macros {
		total += db.nodes[name].Area()
	}
	return total
}

// IsBoundary reports whether a node touches the outer band of the canvas,
// where the band is ratio times the canvas extent on each side.
func (db *DB) IsBoundary(n Node, ratio float64) bool {
	left := ratio * db.Width
	right := (1 - ratio) * db.Width
	bottom := ratio * db.Height
	top := (1 - ratio) * db.Height
	inside := n.X > left && n.X+n.Width < right &&
		n.Y > bottom && n.Y+n.Height < top
	return !inside
}
