package recon

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/shared"
)

// fuzzyWindow is how far apart a bank line and an internal transaction may
// sit and still be considered the same movement.
const fuzzyWindow = 2 * 24 * time.Hour

// Reconcile matches internal transactions against the statement's claimed
// lines. Matching is greedy in transaction order, but every statement line is
// consumed at most once, so duplicate internal transactions cannot all claim
// the same line.
func Reconcile(stmt BankStatement, txns []Transaction) Result {
	result := Result{
		StatementID:        stmt.ID,
		TotalCredits:       decimal.Zero,
		TotalDebits:        decimal.Zero,
		BalanceDiscrepancy: decimal.Zero,
	}
	used := make(map[int]bool, len(stmt.Lines))

	for _, txn := range txns {
		if txn.Amount.IsPositive() {
			result.TotalCredits = result.TotalCredits.Add(txn.Amount)
		} else {
			result.TotalDebits = result.TotalDebits.Add(txn.Amount.Abs())
		}

		if idx, ok := findLine(stmt.Lines, used, txn, 0); ok {
			used[idx] = true
			result.Matched = append(result.Matched, Match{Transaction: txn, Line: stmt.Lines[idx], Kind: MatchExact})
			continue
		}
		if idx, ok := findLine(stmt.Lines, used, txn, fuzzyWindow); ok {
			used[idx] = true
			result.Matched = append(result.Matched, Match{Transaction: txn, Line: stmt.Lines[idx], Kind: MatchFuzzy})
			continue
		}
		result.Unmatched = append(result.Unmatched, txn)
		result.Discrepancies = append(result.Discrepancies, Discrepancy{
			Type:   DiscrepancyUnmatched,
			Date:   txn.Date,
			Amount: txn.Amount,
		})
	}

	internalNet := result.TotalCredits.Sub(result.TotalDebits)
	statementNet := stmt.TotalCredits.Sub(stmt.TotalDebits)
	if !shared.EqualCents(internalNet, statementNet) {
		diff := statementNet.Sub(internalNet).Abs()
		result.BalanceDiscrepancy = diff
		result.Discrepancies = append(result.Discrepancies, Discrepancy{
			Type:     DiscrepancyBalanceMismatch,
			Amount:   diff,
			Expected: statementNet,
			Actual:   internalNet,
		})
	}
	return result
}

// findLine locates an unused statement line with the same signed amount and a
// date within the window (zero window means same day).
func findLine(lines []StatementLine, used map[int]bool, txn Transaction, window time.Duration) (int, bool) {
	for idx, line := range lines {
		if used[idx] {
			continue
		}
		if !shared.EqualCents(line.Amount, txn.Amount) {
			continue
		}
		if dateDistance(line.Date, txn.Date) > window {
			continue
		}
		return idx, true
	}
	return 0, false
}

func dateDistance(a, b time.Time) time.Duration {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	d := da.Sub(db)
	if d < 0 {
		d = -d
	}
	return d
}
