// Package search implements the lexical ranking engine used by the
// knowledge service. It scores small in-memory record collections against a
// free-text query through a three-stage fallback: exact substring match,
// weighted keyword scoring, then single-keyword retry. Each stage
// short-circuits on any non-empty result.
//
// The heuristics (stop-word set, field weights, score>0 cutoff, 3-keyword
// fallback cap) are deliberately simple and their thresholds are part of
// the service contract.
package search

import (
	"sort"
	"strings"

	"github.com/deskmesh/deskmesh/core"
)

// Stage identifies which matching stage produced a result set.
type Stage string

const (
	// StageExact means the whole query matched verbatim.
	StageExact Stage = "exact"
	// StageKeyword means weighted keyword scoring matched.
	StageKeyword Stage = "keyword"
	// StageFallback means a single extracted keyword matched.
	StageFallback Stage = "fallback"
	// StageNone means no stage produced a match.
	StageNone Stage = "none"
)

// Field weights for keyword scoring. Matches in the record's issue field
// count double; matches in the application (or title) field count 1.5.
const (
	issueWeight       = 2.0
	applicationWeight = 1.5
	baseWeight        = 1.0
)

// fallbackKeywordCap caps how many extracted keywords the final stage
// retries individually.
const fallbackKeywordCap = 3

// stopWords are common English function words dropped during keyword
// extraction.
var stopWords = map[string]struct{}{
	"when": {}, "while": {}, "the": {}, "a": {}, "an": {}, "is": {},
	"are": {}, "was": {}, "were": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "from": {}, "up": {}, "about": {}, "into": {},
	"through": {}, "during": {}, "before": {}, "after": {}, "above": {},
	"below": {}, "between": {}, "among": {}, "against": {},
}

var punctReplacer = strings.NewReplacer(",", " ", ".", " ", "!", " ", "?", " ")

// Search ranks records against query and returns at most limit matches.
// An empty query, an empty collection or a non-positive limit yields an
// empty result.
func Search(records []core.Record, query string, limit int) []core.Record {
	results, _ := Ranked(records, query, limit)
	return results
}

// Ranked is Search plus the stage that produced the result set, for
// logging and diagnostics.
func Ranked(records []core.Record, query string, limit int) ([]core.Record, Stage) {
	if limit <= 0 || len(records) == 0 {
		return nil, StageNone
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, StageNone
	}

	if matches := substringMatches(records, q, limit); len(matches) > 0 {
		return matches, StageExact
	}

	keywords := Keywords(query)
	if matches := keywordMatches(records, keywords, limit); len(matches) > 0 {
		return matches, StageKeyword
	}

	if matches := fallbackMatches(records, keywords, limit); len(matches) > 0 {
		return matches, StageFallback
	}
	return nil, StageNone
}

// fallbackMatches retries each of the first fallbackKeywordCap keywords as
// a single exact-substring filter and returns the first non-empty result
// set.
func fallbackMatches(records []core.Record, keywords []string, limit int) []core.Record {
	n := fallbackKeywordCap
	if len(keywords) < n {
		n = len(keywords)
	}
	for _, kw := range keywords[:n] {
		if matches := substringMatches(records, kw, limit); len(matches) > 0 {
			return matches
		}
	}
	return nil
}

// Keywords extracts scoring tokens from a query: lowercased, split on
// whitespace and sentence punctuation, with stop words and tokens of
// length <= 2 removed.
func Keywords(query string) []string {
	cleaned := punctReplacer.Replace(strings.ToLower(query))
	var keywords []string
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		keywords = append(keywords, tok)
	}
	return keywords
}

// substringMatches keeps records where needle appears in any field value,
// in original collection order, truncated to limit.
func substringMatches(records []core.Record, needle string, limit int) []core.Record {
	var matches []core.Record
	for _, rec := range records {
		if recordContains(rec, needle) {
			matches = append(matches, rec)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches
}

func recordContains(rec core.Record, needle string) bool {
	for _, v := range rec {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// keywordMatches scores every record against the extracted keywords and
// returns those with score > 0, best first. Ties keep original collection
// order.
func keywordMatches(records []core.Record, keywords []string, limit int) []core.Record {
	if len(keywords) == 0 {
		return nil
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, 0, len(records))
	for i, rec := range records {
		scores = append(scores, scored{idx: i, score: scoreRecord(rec, keywords)})
	}
	sort.SliceStable(scores, func(a, b int) bool { return scores[a].score > scores[b].score })

	var matches []core.Record
	for _, s := range scores {
		if s.score <= 0 {
			break
		}
		matches = append(matches, records[s.idx])
		if len(matches) == limit {
			break
		}
	}
	return matches
}

// scoreRecord sums keyword weights: a keyword present anywhere in the
// record scores 2.0 when it appears in the issue field, 1.5 in the
// application or title field, and 1.0 otherwise.
func scoreRecord(rec core.Record, keywords []string) float64 {
	var parts []string
	for _, v := range rec {
		parts = append(parts, strings.ToLower(v))
	}
	rowText := strings.Join(parts, " ")

	issue := strings.ToLower(rec.Field("issue"))
	application := strings.ToLower(rec.Field("application"))
	if application == "" {
		application = strings.ToLower(rec.Field("title"))
	}

	score := 0.0
	for _, kw := range keywords {
		if !strings.Contains(rowText, kw) {
			continue
		}
		switch {
		case strings.Contains(issue, kw):
			score += issueWeight
		case strings.Contains(application, kw):
			score += applicationWeight
		default:
			score += baseWeight
		}
	}
	return score
}
