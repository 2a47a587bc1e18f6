package service

import (
	"bitwise74/devdoc-api/internal/model"
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/cases"
)

// Field weights for ranked search. Name matters most, notes least.
const (
	weightName        = 10
	weightDescription = 5
	weightTags        = 3
	weightNotes       = 1
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {},
	"that": {}, "the": {}, "this": {}, "to": {}, "with": {},
}

// search runs in two tiers over the owner's projects. Ranked whole-word
// matching comes first; only when nothing ranks does it fall back to a plain
// case-insensitive substring scan ordered by update time.
func (s *ProjectService) search(ctx context.Context, ownerID, query string) ([]model.Project, error) {
	var projects []model.Project

	err := withCollections(s.db.WithContext(ctx)).
		Where("user_id = ?", ownerID).
		Order("updated_at desc").
		Order("id").
		Find(&projects).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to search projects, %w", err)
	}

	for i := range projects {
		normalize(&projects[i])
	}

	if ranked := rankProjects(projects, query); len(ranked) > 0 {
		return ranked, nil
	}

	return substringMatches(projects, query), nil
}

// rankProjects keeps the projects matching at least one query term, best
// score first. projects must already be ordered by update time, which breaks
// ties.
func rankProjects(projects []model.Project, query string) []model.Project {
	terms := searchTerms(query)
	if len(terms) == 0 {
		return nil
	}

	type scored struct {
		project model.Project
		score   int
	}

	var hits []scored
	for _, p := range projects {
		score := weightName*termHits(p.Name, terms) +
			weightDescription*termHits(p.Description, terms) +
			weightTags*termHits(strings.Join(p.Tags, " "), terms) +
			weightNotes*termHits(p.Notes, terms)

		if score > 0 {
			hits = append(hits, scored{project: p, score: score})
		}
	}

	slices.SortStableFunc(hits, func(a, b scored) int {
		return b.score - a.score
	})

	out := make([]model.Project, len(hits))
	for i, h := range hits {
		out[i] = h.project
	}

	return out
}

func substringMatches(projects []model.Project, query string) []model.Project {
	needle := fold(strings.TrimSpace(query))

	out := []model.Project{}
	for _, p := range projects {
		if strings.Contains(fold(p.Name), needle) ||
			strings.Contains(fold(p.Description), needle) ||
			strings.Contains(fold(p.Notes), needle) ||
			slices.ContainsFunc(p.Tags, func(t string) bool { return strings.Contains(fold(t), needle) }) {
			out = append(out, p)
		}
	}

	return out
}

// termHits counts how often any of terms appears as a word in text
func termHits(text string, terms map[string]struct{}) int {
	n := 0
	for _, w := range words(text) {
		if _, ok := terms[w]; ok {
			n++
		}
	}

	return n
}

func searchTerms(query string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, w := range tokens(query) {
		if _, stop := stopWords[w]; !stop {
			terms[stem(w)] = struct{}{}
		}
	}

	return terms
}

// words splits text into folded, stemmed words
func words(text string) []string {
	fields := tokens(text)
	for i, f := range fields {
		fields[i] = stem(f)
	}

	return fields
}

func tokens(text string) []string {
	return strings.FieldsFunc(fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// stem reduces a folded word to its Snowball English stem, so "deployed"
// and "deploying" both match "deploy"
func stem(w string) string {
	return english.Stem(w, true)
}

// fold applies Unicode case folding. A Caser is stateful, so each call
// gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
