package engine

import (
	"fmt"
	"sort"

	"github.com/piwi3910/macroplace/internal/model"
)

// RankArea orders ports by name, then macros by descending connected-net
// area: each net weighs the summed area of its macro pins, and a macro
// scores the sum over the nets it touches. Ties break by descending name.
func RankArea(db *model.DB) []string {
	nets := db.Nets()
	netArea := make([]float64, len(nets))
	for i, net := range nets {
		for _, p := range net.Pins {
			if n := db.MustNode(p.Node); !n.IsPort {
				netArea[i] += n.Area()
			}
		}
	}

	score := make(map[string]float64, len(db.Macros()))
	for _, name := range db.Macros() {
		for _, idx := range db.NetsOf(name) {
			score[name] += netArea[idx]
		}
	}
	return withPorts(db, sortByScore(db.Macros(), score))
}

// RankMixed orders ports by name, then macros by descending
// alpha*z(area) + beta*z(flow), where flow is the total dataflow weight to
// nodes present in db. Alpha and beta are renormalized to sum to one.
func RankMixed(db *model.DB, flow *model.Flow, alpha, beta float64) []string {
	macros := db.Macros()
	area := make([]float64, len(macros))
	traffic := make([]float64, len(macros))
	for i, name := range macros {
		area[i] = db.MustNode(name).Area()
		traffic[i] = flow.TotalWithin(name, db.Has)
	}
	area = Normalize(area)
	traffic = Normalize(traffic)

	if s := alpha + beta; s > 0 {
		alpha, beta = alpha/s, beta/s
	}
	score := make(map[string]float64, len(macros))
	for i, name := range macros {
		score[name] = alpha*area[i] + beta*traffic[i]
	}
	return withPorts(db, sortByScore(macros, score))
}

// Rank picks the ordering configured in settings.
func Rank(db *model.DB, flow *model.Flow, settings model.Settings) ([]string, error) {
	switch settings.Ranking {
	case model.RankArea:
		return RankArea(db), nil
	case model.RankMixed, "":
		return RankMixed(db, flow, settings.RankAlpha, settings.RankBeta), nil
	default:
		return nil, fmt.Errorf("unknown ranking %q", settings.Ranking)
	}
}

func sortByScore(names []string, score map[string]float64) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := score[out[i]], score[out[j]]
		if si != sj {
			return si > sj
		}
		return out[i] > out[j]
	})
	return out
}

func withPorts(db *model.DB, macros []string) []string {
	order := make([]string, 0, len(db.Ports())+len(macros))
	order = append(order, db.Ports()...)
	return append(order, macros...)
}

// prioritize moves a and b right behind the leading ports of order.
func prioritize(order []string, ports int, a, b string) []string {
	out := make([]string, 0, len(order))
	out = append(out, order[:ports]...)
	out = append(out, a, b)
	for _, name := range order[ports:] {
		if name != a && name != b {
			out = append(out, name)
		}
	}
	return out
}
