package store

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Search returns the entry names that fuzzily match every whitespace separated
// term of query, closest matches first. An empty query lists every entry.
func (r *Repository) Search(query string) []string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return r.List()
	}

	type hit struct {
		name     string
		distance int
		order    int
	}

	var hits []hit
	for order, e := range r.doc.Entries {
		distance, ok := matchTerms(terms, e.Name)
		if !ok {
			continue
		}
		hits = append(hits, hit{name: e.Name, distance: distance, order: order})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return hits[i].order < hits[j].order
	})

	names := make([]string, len(hits))
	for i, h := range hits {
		names[i] = h.name
	}
	return names
}

// matchTerms reports whether every term is a case-insensitive fuzzy match of
// name, with the summed rank distance of the matches.
func matchTerms(terms []string, name string) (int, bool) {
	total := 0
	for _, term := range terms {
		if !fuzzy.MatchFold(term, name) {
			return 0, false
		}
		total += fuzzy.RankMatchFold(term, name)
	}
	return total, true
}
