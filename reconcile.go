package rentledger

import (
	"context"
	"time"

	"github.com/Carey99/rentledger/id"
	"github.com/Carey99/rentledger/match"
	"github.com/Carey99/rentledger/payment"
	"github.com/Carey99/rentledger/statement"
	"github.com/Carey99/rentledger/tenancy"
	"github.com/Carey99/rentledger/types"
)

// ImportStatement parses an uploaded statement document, matches every
// transaction against the landlord's active tenancies, and persists the
// result as a write-once Import. Matching never moves money; each
// transaction waits for ConfirmTransaction.
//
// Parsing is delegated to the Parser configured via WithParser; a
// wrong document password surfaces ErrWrongPassword and an unreadable
// document ErrUnsupportedFormat, both from the parser.
func (e *Engine) ImportStatement(ctx context.Context, landlordID string, doc []byte, password string) (*statement.Import, error) {
	if e.parser == nil {
		return nil, ValidationError{Field: "parser", Message: "no statement parser configured"}
	}

	parsed, err := e.parser.Parse(ctx, doc, password)
	if err != nil {
		return nil, err
	}

	roster, err := e.activeRoster(ctx, landlordID)
	if err != nil {
		return nil, err
	}

	matches, summary := roster.MatchBatch(parsed.Transactions)

	imp := &statement.Import{
		Entity:       types.NewEntity(),
		ID:           id.NewImportID(),
		LandlordID:   landlordID,
		PeriodStart:  parsed.PeriodStart,
		PeriodEnd:    parsed.PeriodEnd,
		Transactions: make([]statement.Transaction, len(parsed.Transactions)),
		Summary:      summary,
	}

	for i, txn := range parsed.Transactions {
		m := matches[i]
		imp.Transactions[i] = statement.Transaction{
			ID:                  id.NewTransactionID(),
			ImportID:            imp.ID,
			SourceTransactionID: txn.SourceTransactionID,
			Amount:              txn.Amount,
			PayerName:           txn.PayerName,
			PayerPhone:          txn.PayerPhone,
			Timestamp:           txn.Timestamp,
			MatchedTenancyID:    m.TenancyID,
			Confidence:          m.Confidence,
			Score:               m.Score,
			MatchStatus:         m.Status,
		}
	}

	if err := e.store.CreateImport(ctx, imp); err != nil {
		return nil, err
	}

	e.logger.Info("statement imported",
		"import_id", imp.ID.String(),
		"landlord_id", landlordID,
		"transactions", summary.Total,
		"matched", summary.Matched,
		"ambiguous", summary.Ambiguous,
		"no_match", summary.NoMatch,
	)

	e.plugins.EmitStatementImported(ctx, imp)
	return imp, nil
}

// ConfirmTransaction promotes one imported transaction into a real
// Payment, allocating it like any other money-in event. A matched
// transaction needs no override; an ambiguous or unmatched one must
// name the tenancy explicitly. Promotion is once-only per transaction,
// and the payment inherits the transaction's source ID, so replays of
// the same external transaction never double-apply.
func (e *Engine) ConfirmTransaction(ctx context.Context, importID id.ImportID, txnID id.TransactionID, overrideTenancyID id.TenancyID) (*payment.Payment, error) {
	// The promoted check below reads a snapshot; concurrent confirms of
	// the same transaction must not both pass it, so the whole sequence
	// serializes per transaction. Parsed transactions may carry no
	// source ID, in which case the allocator's dedupe cannot help.
	mu := e.confirmLock(txnID)
	mu.Lock()
	defer mu.Unlock()

	imp, err := e.store.GetImport(ctx, importID)
	if err != nil {
		return nil, err
	}

	var txn *statement.Transaction
	for i := range imp.Transactions {
		if imp.Transactions[i].ID.String() == txnID.String() {
			txn = &imp.Transactions[i]
			break
		}
	}
	if txn == nil {
		return nil, ErrTransactionNotFound
	}
	if txn.Promoted() {
		return nil, ErrAlreadyPromoted
	}

	tenancyID := overrideTenancyID
	if tenancyID.IsNil() {
		if txn.MatchStatus != statement.MatchStatusMatched {
			return nil, ErrNotPromotable
		}
		tenancyID = txn.MatchedTenancyID
	}

	p, err := e.ApplyPayment(ctx, ApplyPaymentInput{
		TenancyID:           tenancyID,
		Amount:              txn.Amount,
		Method:              payment.MethodStatementMatch,
		ReceivedAt:          txn.Timestamp,
		SourceTransactionID: txn.SourceTransactionID,
	})
	if err != nil {
		return nil, err
	}

	if err := e.store.MarkTransactionPromoted(ctx, importID, txnID, p.ID); err != nil {
		return nil, err
	}
	txn.PromotedPaymentID = p.ID

	e.logger.Info("transaction confirmed",
		"import_id", importID.String(),
		"transaction_id", txnID.String(),
		"tenancy_id", tenancyID.String(),
		"payment_id", p.ID.String(),
	)

	e.plugins.EmitTransactionConfirmed(ctx, txn, p)
	return p, nil
}

// GetImport retrieves a statement import by ID.
func (e *Engine) GetImport(ctx context.Context, importID id.ImportID) (*statement.Import, error) {
	return e.store.GetImport(ctx, importID)
}

// ListImports lists a landlord's statement imports, newest first.
func (e *Engine) ListImports(ctx context.Context, landlordID string, opts statement.ListOpts) ([]*statement.Import, error) {
	return e.store.ListImports(ctx, landlordID, opts)
}

// PushCallback is a confirmed mobile-money push payment, delivered by
// the payment provider with the tenancy already known.
type PushCallback struct {
	TenancyID           id.TenancyID
	Amount              types.Money
	SourceTransactionID string
	Timestamp           time.Time
}

// HandlePushPayment applies a push-payment callback. Providers redeliver
// callbacks, so the operation is idempotent on the source transaction
// ID: a replay returns the originally recorded Payment.
func (e *Engine) HandlePushPayment(ctx context.Context, cb PushCallback) (*payment.Payment, error) {
	return e.ApplyPayment(ctx, ApplyPaymentInput{
		TenancyID:           cb.TenancyID,
		Amount:              cb.Amount,
		Method:              payment.MethodSTKPush,
		ReceivedAt:          cb.Timestamp,
		SourceTransactionID: cb.SourceTransactionID,
	})
}

// activeRoster builds the matcher roster from a landlord's active
// tenancies.
func (e *Engine) activeRoster(ctx context.Context, landlordID string) (*match.Roster, error) {
	tenancies, err := e.store.ListTenancies(ctx, landlordID, tenancy.ListOpts{Status: tenancy.StatusActive})
	if err != nil {
		return nil, err
	}

	entries := make([]match.Entry, 0, len(tenancies))
	for _, t := range tenancies {
		entries = append(entries, match.Entry{
			TenancyID:    t.ID,
			Name:         t.TenantName,
			Phone:        t.TenantPhone,
			ExpectedRent: t.BaseRent,
		})
	}
	return match.NewRoster(entries), nil
}
