// Package match classifies external statement transactions against a
// landlord's tenant roster with a weighted confidence score. Matching
// never moves money: a matched transaction still needs explicit
// confirmation before it becomes a Payment.
package match

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/statement"
	"github.com/Carey99/rentledger/types"
)

// Scoring weights and thresholds. Phone plus expected amount alone
// reaches the high-confidence threshold; a perfect name plus expected
// amount lands in medium.
const (
	weightPhoneExact  = 0.70
	weightNameSim     = 0.45
	weightAmountEqual = 0.15

	nameCandidateFloor = 0.50 // name similarity needed to enter the candidate set
	classifyFloor      = 0.20 // minimum score to be classified at all
	ambiguityMargin    = 0.10

	thresholdHigh   = 0.85
	thresholdMedium = 0.60
)

// Entry is one tenant in the matching roster.
type Entry struct {
	TenancyID    id.TenancyID
	Name         string
	Phone        string
	ExpectedRent types.Money
}

// Match is the outcome for one transaction.
type Match struct {
	TenancyID  id.TenancyID // nil unless Status is matched
	Status     statement.MatchStatus
	Confidence statement.Confidence
	Score      float64
}

// Roster matches transactions against a fixed set of tenants. It is
// immutable after construction and safe for concurrent use.
type Roster struct {
	entries []Entry
	byPhone map[string][]int // normalized phone -> entry indexes
	nameSim *metrics.JaroWinkler
}

// NewRoster builds a roster from the given entries.
func NewRoster(entries []Entry) *Roster {
	r := &Roster{
		entries: entries,
		byPhone: make(map[string][]int),
		nameSim: metrics.NewJaroWinkler(),
	}
	for i, e := range entries {
		if p := normalizePhone(e.Phone); p != "" {
			r.byPhone[p] = append(r.byPhone[p], i)
		}
	}
	return r
}

// MatchOne classifies a single transaction.
func (r *Roster) MatchOne(txn statement.ParsedTransaction) Match {
	// Exact phone beats any name-only match regardless of name score.
	if phone := normalizePhone(txn.PayerPhone); phone != "" {
		if idxs, ok := r.byPhone[phone]; ok {
			if len(idxs) > 1 {
				// Shared phone: cannot attribute.
				return Match{Status: statement.MatchStatusAmbiguous}
			}
			e := r.entries[idxs[0]]
			score := weightPhoneExact
			score += weightNameSim * r.nameSimilarity(txn.PayerName, e.Name)
			if txn.Amount.Equal(e.ExpectedRent) {
				score += weightAmountEqual
			}
			if score > 1.0 {
				score = 1.0
			}
			return Match{
				TenancyID:  e.TenancyID,
				Status:     statement.MatchStatusMatched,
				Confidence: confidenceFor(score),
				Score:      score,
			}
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	var candidates []scored
	for i, e := range r.entries {
		sim := r.nameSimilarity(txn.PayerName, e.Name)
		if sim < nameCandidateFloor {
			continue
		}
		score := weightNameSim * sim
		if txn.Amount.Equal(e.ExpectedRent) {
			score += weightAmountEqual
		}
		if score < classifyFloor {
			continue
		}
		candidates = append(candidates, scored{idx: i, score: score})
	}

	if len(candidates) == 0 {
		return Match{Status: statement.MatchStatusNoMatch}
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		// Stable rank for equal scores.
		return r.entries[candidates[a].idx].TenancyID.String() <
			r.entries[candidates[b].idx].TenancyID.String()
	})

	top := candidates[0]
	if len(candidates) > 1 && top.score-candidates[1].score < ambiguityMargin {
		return Match{Status: statement.MatchStatusAmbiguous, Score: top.score}
	}

	e := r.entries[top.idx]
	return Match{
		TenancyID:  e.TenancyID,
		Status:     statement.MatchStatusMatched,
		Confidence: confidenceFor(top.score),
		Score:      top.score,
	}
}

// MatchBatch classifies every transaction independently and returns the
// per-transaction outcomes plus the aggregate summary. The summary
// counts always add up to the batch size.
func (r *Roster) MatchBatch(txns []statement.ParsedTransaction) ([]Match, statement.Summary) {
	matches := make([]Match, len(txns))
	var summary statement.Summary
	summary.Total = len(txns)

	for i, txn := range txns {
		m := r.MatchOne(txn)
		matches[i] = m
		switch m.Status {
		case statement.MatchStatusMatched:
			summary.Matched++
		case statement.MatchStatusAmbiguous:
			summary.Ambiguous++
		default:
			summary.NoMatch++
		}
	}

	if summary.Total > 0 {
		summary.MatchRate = float64(summary.Matched) / float64(summary.Total)
	}
	return matches, summary
}

// confidenceFor maps a score to a confidence band.
func confidenceFor(score float64) statement.Confidence {
	switch {
	case score >= thresholdHigh:
		return statement.ConfidenceHigh
	case score >= thresholdMedium:
		return statement.ConfidenceMedium
	default:
		return statement.ConfidenceLow
	}
}

// nameSimilarity scores two names by token overlap. A single-letter
// token pairs with any token sharing its first letter, so "J. Mwangi"
// matches "John Mwangi" and "James Mwangi" equally; full tokens pair on
// equality or a high per-token Jaro-Winkler (misspellings), which keeps
// distinct first names like "James" and "John" apart.
func (r *Roster) nameSimilarity(a, b string) float64 {
	na, nb := strings.Fields(normalizeName(a)), strings.Fields(normalizeName(b))
	if len(na) == 0 || len(nb) == 0 {
		return 0
	}

	used := make([]bool, len(nb))
	matched := 0
	for _, ta := range na {
		for j, tb := range nb {
			if used[j] {
				continue
			}
			if r.tokensMatch(ta, tb) {
				used[j] = true
				matched++
				break
			}
		}
	}

	longer := len(na)
	if len(nb) > longer {
		longer = len(nb)
	}
	return float64(matched) / float64(longer)
}

// tokenFuzzyFloor is the per-token Jaro-Winkler needed to treat two
// full tokens as the same word.
const tokenFuzzyFloor = 0.85

func (r *Roster) tokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) == 1 {
		return a[0] == b[0]
	}
	if len(b) == 1 {
		return b[0] == a[0]
	}
	return strutil.Similarity(a, b, r.nameSim) >= tokenFuzzyFloor
}

// normalizeName lowercases, strips punctuation and collapses whitespace.
func normalizeName(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// normalizePhone strips formatting and canonicalizes Kenyan numbers to
// the 254... international form, so "0712 345 678" and "+254712345678"
// compare equal.
func normalizePhone(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	digits := sb.String()
	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, "254"):
		return digits
	case strings.HasPrefix(digits, "0") && len(digits) == 10:
		return "254" + digits[1:]
	case len(digits) == 9:
		return "254" + digits
	default:
		return digits
	}
}
