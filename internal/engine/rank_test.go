package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piwi3910/macroplace/internal/model"
)

func rankDB() *model.DB {
	nodes := []model.Node{
		{Name: "M1", Width: 2, Height: 2},
		{Name: "M2", Width: 3, Height: 3},
		{Name: "M3", Width: 4, Height: 4},
	}
	nodes = append(nodes, tinyPorts(
		[2]float64{0, 0}, [2]float64{1, 0}, [2]float64{2, 0},
		[2]float64{3, 0}, [2]float64{4, 0}, [2]float64{5, 0},
	)...)
	nets := []model.Net{
		{Name: "n1", Pins: pins("M1", "M2", "p1")},
		{Name: "n2", Pins: pins("M2", "M3")},
	}
	return model.NewDB("t", nodes, nets, 0, 10, 10)
}

var rankPorts = []string{"p1", "p2", "p3", "p4", "p5", "p6"}

func TestRankArea(t *testing.T) {
	order := RankArea(rankDB())
	// Net areas 13 and 25: M1=13, M2=38, M3=25.
	assert.Equal(t, append(append([]string{}, rankPorts...), "M2", "M3", "M1"), order)
}

func TestRankArea_TiesBreakByName(t *testing.T) {
	order := RankArea(twoMacroDB())
	assert.Equal(t, []string{"B", "A"}, order)
}

func TestRankMixed_AreaOnly(t *testing.T) {
	order := RankMixed(rankDB(), model.NewFlow(), 1, 0)
	assert.Equal(t, append(append([]string{}, rankPorts...), "M3", "M2", "M1"), order)
}

func TestRankMixed_FlowOnlyIgnoresUnknownNodes(t *testing.T) {
	flow := model.NewFlow()
	flow.Set("M1", "M2", 5)
	flow.Set("M1", "M3", 1)
	flow.Set("M3", "ghost", 100)

	order := RankMixed(rankDB(), flow, 0, 1)
	// Totals inside the DB: M1=6, M2=5, M3=1.
	assert.Equal(t, []string{"M1", "M2", "M3"}, order[len(rankPorts):])
}

func TestRankMixed_WeightsAreRenormalized(t *testing.T) {
	flow := model.NewFlow()
	flow.Set("M1", "M2", 5)
	a := RankMixed(rankDB(), flow, 0.8, 0.2)
	b := RankMixed(rankDB(), flow, 8, 2)
	assert.Equal(t, a, b)
}

func TestRankMixed_FlatSignalsFallBackToNames(t *testing.T) {
	order := RankMixed(twoMacroDB(), model.NewFlow(), 0.8, 0.2)
	assert.Equal(t, []string{"B", "A"}, order)
}

func TestRank_Dispatch(t *testing.T) {
	s := model.DefaultSettings()
	s.Ranking = model.RankArea
	order, err := Rank(rankDB(), model.NewFlow(), s)
	assert.NoError(t, err)
	assert.Equal(t, RankArea(rankDB()), order)

	s.Ranking = "random"
	_, err = Rank(rankDB(), model.NewFlow(), s)
	assert.Error(t, err)
}

func TestPrioritize(t *testing.T) {
	order := []string{"p1", "p2", "A", "B", "C", "D"}
	assert.Equal(t, []string{"p1", "p2", "D", "B", "A", "C"}, prioritize(order, 2, "D", "B"))
	assert.Equal(t, []string{"p1", "p2", "A", "B", "C", "D"}, order, "input untouched")
}
