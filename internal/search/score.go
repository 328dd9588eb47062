package search

import (
	"math"
	"sort"
)

// BM25 constants, shared by every package so cross-package scores stay
// comparable without renormalization.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// Hit is one scored item within a single package.
type Hit struct {
	IDPath string
	Score  float64
}

// Query scores every item in the index against the query tokens and
// returns hits in descending score order.
func (idx *Index) Query(query string) []Hit {
	scores := make(map[string]float64)
	for _, tok := range Tokenize(query) {
		postings := idx.Postings[HashToken(tok)]
		if len(postings) == 0 {
			continue
		}
		idf := math.Log(1 + (float64(idx.Docs)-float64(len(postings))+0.5)/(float64(len(postings))+0.5))
		for _, p := range postings {
			tf := float64(p.TermFreq)
			norm := 1 - bm25B + bm25B*float64(idx.Lengths[p.IDPath])/idx.AvgLen
			scores[p.IDPath] += idf * tf * (bm25K1 + 1) / (tf + bm25K1*norm)
		}
	}

	hits := make([]Hit, 0, len(scores))
	for idPath, score := range scores {
		hits = append(hits, Hit{IDPath: idPath, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].IDPath < hits[j].IDPath
	})
	return hits
}
