package judgment

import (
	"math"
	"slices"

	"github.com/DjordjeVuckovic/trec-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/trec-hunter/internal/trec"
)

type labelPair struct {
	query string
	x, y  int
}

// common inner-joins two judgment sets on (query, docid).
func common(a, b *trec.Qrels) []labelPair {
	var pairs []labelPair
	for _, j := range a.Judgments() {
		g := b.Grade(j.Query, j.DocID)
		if !g.Judged {
			continue
		}
		pairs = append(pairs, labelPair{query: j.Query, x: j.Relevance, y: g.Rel})
	}
	return pairs
}

type AgreementReport struct {
	// Overall is the share of common pairs with identical grades.
	Overall float64 `json:"overall"`
	// PerTopic is NaN for topics of a with no common pair.
	PerTopic map[string]float64 `json:"per_topic"`
	Common   int                `json:"common"`
}

// Agreement compares the grades two assessors gave to the pairs both judged.
func Agreement(a, b *trec.Qrels) (AgreementReport, error) {
	pairs := common(a, b)
	report := AgreementReport{Overall: math.NaN(), PerTopic: make(map[string]float64), Common: len(pairs)}

	equal := make(map[string]int)
	total := make(map[string]int)
	for _, p := range pairs {
		total[p.query]++
		if p.x == p.y {
			equal[p.query]++
		}
	}
	for _, topic := range a.Topics() {
		if total[topic] == 0 {
			report.PerTopic[topic] = math.NaN()
			continue
		}
		report.PerTopic[topic] = float64(equal[topic]) / float64(total[topic])
	}

	if len(pairs) == 0 {
		return report, apperr.NewShapeMismatch(a.Len(), b.Len(), "no judgments in common")
	}
	agree := 0
	for _, n := range equal {
		agree += n
	}
	report.Overall = float64(agree) / float64(len(pairs))
	return report, nil
}

// CohenKappa is chance-corrected agreement over the common pairs, with
// expected agreement summed over every label either assessor used.
func CohenKappa(a, b *trec.Qrels) (float64, error) {
	pairs := common(a, b)
	if len(pairs) == 0 {
		return math.NaN(), apperr.NewShapeMismatch(a.Len(), b.Len(), "no judgments in common")
	}

	n := float64(len(pairs))
	countX := make(map[int]float64)
	countY := make(map[int]float64)
	agree := 0.0
	for _, p := range pairs {
		countX[p.x]++
		countY[p.y]++
		if p.x == p.y {
			agree++
		}
	}

	p0 := agree / n
	pe := 0.0
	for label, cx := range countX {
		pe += (cx / n) * (countY[label] / n)
	}
	if pe == 1 {
		return math.NaN(), apperr.NewEmptyInput("", "kappa is undefined when both assessors use a single label")
	}
	return (p0 - pe) / (1 - pe), nil
}

// ConfusionMatrix counts common pairs with a's grade as row and b's grade as
// column. When labels is empty every observed grade is used, ascending.
// Pairs with a grade outside labels are skipped.
func ConfusionMatrix(a, b *trec.Qrels, labels []int) ([][]int, []int, error) {
	pairs := common(a, b)
	if len(pairs) == 0 {
		return nil, nil, apperr.NewShapeMismatch(a.Len(), b.Len(), "no judgments in common")
	}

	if len(labels) == 0 {
		for _, p := range pairs {
			labels = append(labels, p.x, p.y)
		}
		slices.Sort(labels)
		labels = slices.Compact(labels)
	}
	index := make(map[int]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	matrix := make([][]int, len(labels))
	for i := range matrix {
		matrix[i] = make([]int, len(labels))
	}
	for _, p := range pairs {
		row, okX := index[p.x]
		col, okY := index[p.y]
		if okX && okY {
			matrix[row][col]++
		}
	}
	return matrix, labels, nil
}

// FleissKappa measures agreement among several assessors. ratings[j][i] is
// assessor j's grade for item i; every row must cover the same items.
func FleissKappa(ratings [][]int) (float64, error) {
	if len(ratings) < 2 {
		return math.NaN(), apperr.NewShapeMismatch(len(ratings), 2, "fleiss kappa needs at least two assessors")
	}
	items := len(ratings[0])
	for _, row := range ratings[1:] {
		if len(row) != items {
			return math.NaN(), apperr.NewShapeMismatch(items, len(row), "assessors rated different item counts")
		}
	}
	if items == 0 {
		return math.NaN(), apperr.NewEmptyInput("", "no items rated")
	}

	raters := float64(len(ratings))
	// counts[i][label] is how many assessors gave item i that label.
	counts := make([]map[int]float64, items)
	totals := make(map[int]float64)
	for i := range counts {
		counts[i] = make(map[int]float64)
	}
	for _, row := range ratings {
		for i, label := range row {
			counts[i][label]++
			totals[label]++
		}
	}

	pBar := 0.0
	for _, c := range counts {
		sq := 0.0
		for _, v := range c {
			sq += v * v
		}
		pBar += (sq - raters) / (raters * (raters - 1))
	}
	pBar /= float64(items)

	peBar := 0.0
	for _, t := range totals {
		pj := t / (raters * float64(items))
		peBar += pj * pj
	}
	if peBar == 1 {
		return math.NaN(), apperr.NewEmptyInput("", "kappa is undefined when every assessor uses a single label")
	}
	return (pBar - peBar) / (1 - peBar), nil
}

// AlignAssessors lists the grades of every pair judged by all assessors, in
// query then docid order, as input for FleissKappa.
func AlignAssessors(assessors ...*trec.Qrels) [][]int {
	if len(assessors) == 0 {
		return nil
	}
	ratings := make([][]int, len(assessors))
	for _, j := range assessors[0].Judgments() {
		grades := make([]int, 0, len(assessors))
		for _, q := range assessors {
			g := q.Grade(j.Query, j.DocID)
			if !g.Judged {
				break
			}
			grades = append(grades, g.Rel)
		}
		if len(grades) != len(assessors) {
			continue
		}
		for k, g := range grades {
			ratings[k] = append(ratings[k], g)
		}
	}
	return ratings
}
