package match

import (
	"testing"
	"time"

	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/statement"
	"github.com/Carey99/rentledger/types"
)

func testRoster() (*Roster, map[string]id.TenancyID) {
	ids := map[string]id.TenancyID{
		"john":  id.NewTenancyID(),
		"james": id.NewTenancyID(),
		"mary":  id.NewTenancyID(),
	}
	r := NewRoster([]Entry{
		{TenancyID: ids["john"], Name: "John Mwangi", Phone: "0712345678", ExpectedRent: types.KES(1545000)},
		{TenancyID: ids["james"], Name: "James Mwangi", Phone: "0722000111", ExpectedRent: types.KES(1545000)},
		{TenancyID: ids["mary"], Name: "Mary Atieno", Phone: "0733999000", ExpectedRent: types.KES(1200000)},
	})
	return r, ids
}

func TestMatchPhoneAndAmountIsHighConfidence(t *testing.T) {
	r, ids := testRoster()

	m := r.MatchOne(statement.ParsedTransaction{
		SourceTransactionID: "QA12345",
		Amount:              types.KES(1545000),
		PayerName:           "JOHN MWANGI",
		PayerPhone:          "+254712345678",
		Timestamp:           time.Now(),
	})

	if m.Status != statement.MatchStatusMatched {
		t.Fatalf("Status: got %s, want matched", m.Status)
	}
	if m.Confidence != statement.ConfidenceHigh {
		t.Errorf("Confidence: got %s, want high (score %.2f)", m.Confidence, m.Score)
	}
	if m.TenancyID.String() != ids["john"].String() {
		t.Errorf("TenancyID: got %s, want John's", m.TenancyID)
	}
}

func TestMatchPhoneOnlyWithAmountIsHighConfidence(t *testing.T) {
	r, _ := testRoster()

	// No usable payer name at all: phone exact + expected amount still
	// reaches the high threshold.
	m := r.MatchOne(statement.ParsedTransaction{
		Amount:     types.KES(1545000),
		PayerPhone: "0712345678",
	})

	if m.Status != statement.MatchStatusMatched || m.Confidence != statement.ConfidenceHigh {
		t.Errorf("got %s/%s (score %.2f), want matched/high", m.Status, m.Confidence, m.Score)
	}
}

func TestMatchInitialAgainstTwoSurnamesIsAmbiguous(t *testing.T) {
	r, _ := testRoster()

	// "J. Mwangi" is equally compatible with John Mwangi and James
	// Mwangi, so the scores land within the ambiguity margin.
	m := r.MatchOne(statement.ParsedTransaction{
		Amount:    types.KES(1545000),
		PayerName: "J. Mwangi",
	})

	if m.Status != statement.MatchStatusAmbiguous {
		t.Errorf("Status: got %s (score %.2f), want ambiguous", m.Status, m.Score)
	}
	if !m.TenancyID.IsNil() {
		t.Errorf("TenancyID: got %s, want nil for ambiguous", m.TenancyID)
	}
}

func TestMatchNameAndAmountIsMediumConfidence(t *testing.T) {
	r, ids := testRoster()

	m := r.MatchOne(statement.ParsedTransaction{
		Amount:    types.KES(1200000),
		PayerName: "Mary Atieno",
	})

	if m.Status != statement.MatchStatusMatched {
		t.Fatalf("Status: got %s, want matched", m.Status)
	}
	if m.Confidence != statement.ConfidenceMedium {
		t.Errorf("Confidence: got %s (score %.2f), want medium", m.Confidence, m.Score)
	}
	if m.TenancyID.String() != ids["mary"].String() {
		t.Errorf("TenancyID: got %s, want Mary's", m.TenancyID)
	}
}

func TestMatchNameOnlyIsLowConfidence(t *testing.T) {
	r, _ := testRoster()

	// Right name, wrong amount: the score stays below medium but the
	// single candidate is still top-ranked with a clear margin.
	m := r.MatchOne(statement.ParsedTransaction{
		Amount:    types.KES(500000),
		PayerName: "Mary Atieno",
	})

	if m.Status != statement.MatchStatusMatched {
		t.Fatalf("Status: got %s, want matched", m.Status)
	}
	if m.Confidence != statement.ConfidenceLow {
		t.Errorf("Confidence: got %s (score %.2f), want low", m.Confidence, m.Score)
	}
}

func TestMatchUnknownPayerIsNoMatch(t *testing.T) {
	r, _ := testRoster()

	m := r.MatchOne(statement.ParsedTransaction{
		Amount:    types.KES(999900),
		PayerName: "Completely Unrelated",
	})

	if m.Status != statement.MatchStatusNoMatch {
		t.Errorf("Status: got %s, want no_match", m.Status)
	}
}

func TestMatchSharedPhoneIsAmbiguous(t *testing.T) {
	shared := "0744555666"
	r := NewRoster([]Entry{
		{TenancyID: id.NewTenancyID(), Name: "Peter Otieno", Phone: shared, ExpectedRent: types.KES(1000000)},
		{TenancyID: id.NewTenancyID(), Name: "Paul Otieno", Phone: shared, ExpectedRent: types.KES(1000000)},
	})

	m := r.MatchOne(statement.ParsedTransaction{
		Amount:     types.KES(1000000),
		PayerName:  "Peter Otieno",
		PayerPhone: shared,
	})

	if m.Status != statement.MatchStatusAmbiguous {
		t.Errorf("Status: got %s, want ambiguous for shared phone", m.Status)
	}
}

func TestMatchPhoneBeatsName(t *testing.T) {
	r, ids := testRoster()

	// Name says Mary but the phone is John's: phone wins.
	m := r.MatchOne(statement.ParsedTransaction{
		Amount:     types.KES(1545000),
		PayerName:  "Mary Atieno",
		PayerPhone: "0712345678",
	})

	if m.Status != statement.MatchStatusMatched {
		t.Fatalf("Status: got %s, want matched", m.Status)
	}
	if m.TenancyID.String() != ids["john"].String() {
		t.Errorf("TenancyID: got %s, want John's (phone match)", m.TenancyID)
	}
}

func TestMatchBatchSummaryIsComplete(t *testing.T) {
	r, _ := testRoster()

	txns := []statement.ParsedTransaction{
		{Amount: types.KES(1545000), PayerPhone: "0712345678"},       // matched
		{Amount: types.KES(1545000), PayerName: "J. Mwangi"},         // ambiguous
		{Amount: types.KES(1200000), PayerName: "Mary Atieno"},       // matched
		{Amount: types.KES(777700), PayerName: "Unknown Person"},     // no_match
		{Amount: types.KES(1545000), PayerName: "James Mwangi"},      // matched
		{Amount: types.KES(430000), PayerName: "Another Stranger X"}, // no_match
	}

	matches, summary := r.MatchBatch(txns)

	if len(matches) != len(txns) {
		t.Fatalf("matches: got %d, want %d", len(matches), len(txns))
	}
	if summary.Total != len(txns) {
		t.Errorf("Total: got %d, want %d", summary.Total, len(txns))
	}
	if got := summary.Matched + summary.Ambiguous + summary.NoMatch; got != summary.Total {
		t.Errorf("completeness: matched+ambiguous+no_match = %d, want %d", got, summary.Total)
	}
	if summary.Matched != 3 || summary.Ambiguous != 1 || summary.NoMatch != 2 {
		t.Errorf("counts: got %d/%d/%d, want 3/1/2", summary.Matched, summary.Ambiguous, summary.NoMatch)
	}
	if want := 3.0 / 6.0; summary.MatchRate != want {
		t.Errorf("MatchRate: got %f, want %f", summary.MatchRate, want)
	}
}

func TestMatchBatchEmpty(t *testing.T) {
	r, _ := testRoster()

	matches, summary := r.MatchBatch(nil)
	if len(matches) != 0 {
		t.Errorf("matches: got %d, want 0", len(matches))
	}
	if summary.Total != 0 || summary.MatchRate != 0 {
		t.Errorf("summary: got %+v, want zero", summary)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0712345678", "254712345678"},
		{"+254712345678", "254712345678"},
		{"254712345678", "254712345678"},
		{"712345678", "254712345678"},
		{"0712 345 678", "254712345678"},
		{"0712-345-678", "254712345678"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := normalizePhone(tt.in); got != tt.want {
				t.Errorf("normalizePhone(%q): got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNameSimilarityInitials(t *testing.T) {
	r, _ := testRoster()

	tests := []struct {
		a, b string
		want float64
	}{
		{"J. Mwangi", "John Mwangi", 1.0},
		{"J. Mwangi", "James Mwangi", 1.0},
		{"john mwangi", "John Mwangi", 1.0},
		{"", "John Mwangi", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			if got := r.nameSimilarity(tt.a, tt.b); got != tt.want {
				t.Errorf("nameSimilarity(%q, %q): got %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
