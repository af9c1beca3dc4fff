package export

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
	"github.com/quillbooks/quillbooks/internal/ledger/reports"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRenderProfitAndLoss(t *testing.T) {
	pl := reports.BuildProfitAndLoss([]reports.AccountBalance{
		{
			Code: "4000", Name: "Sales Revenue",
			Type:          accounts.AccountTypeRevenue,
			NormalBalance: accounts.NormalCredit,
			Credit:        dec("1500.00"),
		},
		{
			Code: "6000", Name: "Rent",
			Type:          accounts.AccountTypeExpense,
			NormalBalance: accounts.NormalDebit,
			Debit:         dec("400.00"),
		},
	}, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC))
	pl.Currency = "GBP"

	html, err := RenderProfitAndLoss(pl)
	require.NoError(t, err)
	require.Contains(t, html, "Profit &amp; Loss (GBP)")
	require.Contains(t, html, "4000 Sales Revenue")
	require.Contains(t, html, "1500.00")
	require.Contains(t, html, "1100.00") // net income
}

func TestRenderBalanceSheetFlagsImbalance(t *testing.T) {
	bs := reports.BuildBalanceSheet([]reports.AccountBalance{
		{
			Code: "1000", Name: "Business Current Account",
			Type:          accounts.AccountTypeBank,
			NormalBalance: accounts.NormalDebit,
			Debit:         dec("250.00"),
		},
	}, decimal.Zero, time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC))
	bs.Currency = "GBP"

	html, err := RenderBalanceSheet(bs)
	require.NoError(t, err)
	require.Contains(t, html, "Balance Sheet (GBP)")
	require.Contains(t, html, "Out of balance by 250.00")

	// A balanced sheet carries no warning.
	balanced := reports.BuildBalanceSheet(nil, decimal.Zero, time.Now())
	html, err = RenderBalanceSheet(balanced)
	require.NoError(t, err)
	require.False(t, strings.Contains(html, "Out of balance"))
}
