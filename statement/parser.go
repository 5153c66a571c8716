package statement

import (
	"context"
	"time"

	"github.com/Carey99/rentledger/types"
)

// Parsed is a parser's view of a statement document: a period and a
// flat transaction list. The engine never inspects document bytes.
type Parsed struct {
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Transactions []ParsedTransaction
}

// ParsedTransaction is one raw transaction as extracted by the parser,
// before matching.
type ParsedTransaction struct {
	SourceTransactionID string
	Amount              types.Money
	PayerName           string
	PayerPhone          string
	Timestamp           time.Time
}

// Parser extracts transactions from an uploaded statement document.
// Implementations live outside the engine (PDF/CSV extraction is a
// collaborator concern) and report unreadable documents with the typed
// parse errors the engine exposes, so callers can distinguish a wrong
// password from an unsupported format.
type Parser interface {
	Parse(ctx context.Context, doc []byte, password string) (*Parsed, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(ctx context.Context, doc []byte, password string) (*Parsed, error)

func (f ParserFunc) Parse(ctx context.Context, doc []byte, password string) (*Parsed, error) {
	return f(ctx, doc, password)
}
