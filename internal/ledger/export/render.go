package export

import (
	"bytes"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/reports"
)

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}

var plTemplate = template.Must(template.New("pl").Funcs(funcs).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
body { font-family: sans-serif; margin: 40px; }
h1 { font-size: 20px; }
table { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
td, th { padding: 4px 8px; border-bottom: 1px solid #ddd; text-align: left; }
td.amount { text-align: right; font-variant-numeric: tabular-nums; }
tr.total td { font-weight: bold; border-top: 2px solid #333; }
</style></head><body>
<h1>Profit &amp; Loss ({{.Currency}})</h1>
<p>{{.From.Format "2 Jan 2006"}} &ndash; {{.To.Format "2 Jan 2006"}}</p>
{{range .Sections}}
<table>
<tr><th colspan="2">{{.Label}}</th></tr>
{{range .Accounts}}<tr><td>{{.Code}} {{.Name}}</td><td class="amount">{{money .Amount}}</td></tr>
{{end}}<tr class="total"><td>Total {{.Label}}</td><td class="amount">{{money .Total}}</td></tr>
</table>
{{end}}
<table>
<tr class="total"><td>Gross Profit</td><td class="amount">{{money .GrossProfit}}</td></tr>
<tr class="total"><td>Net Income</td><td class="amount">{{money .NetIncome}}</td></tr>
</table>
</body></html>`))

var bsTemplate = template.Must(template.New("bs").Funcs(funcs).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
body { font-family: sans-serif; margin: 40px; }
h1 { font-size: 20px; }
table { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
td, th { padding: 4px 8px; border-bottom: 1px solid #ddd; text-align: left; }
td.amount { text-align: right; font-variant-numeric: tabular-nums; }
tr.total td { font-weight: bold; border-top: 2px solid #333; }
p.warn { color: #b00; font-weight: bold; }
</style></head><body>
<h1>Balance Sheet ({{.Sheet.Currency}})</h1>
<p>As of {{.Sheet.AsOf.Format "2 Jan 2006"}}</p>
{{if not .Sheet.Check.Balanced}}<p class="warn">Out of balance by {{money .Sheet.Check.Difference}}</p>{{end}}
{{range .Sections}}
<table>
<tr><th colspan="2">{{.Label}}</th></tr>
{{range .Accounts}}<tr><td>{{.Code}} {{.Name}}</td><td class="amount">{{money .Balance}}</td></tr>
{{end}}<tr class="total"><td>Total {{.Label}}</td><td class="amount">{{money .Total}}</td></tr>
</table>
{{end}}
<table>
<tr><td>Retained Earnings</td><td class="amount">{{money .Sheet.RetainedEarnings}}</td></tr>
<tr class="total"><td>Total Equity</td><td class="amount">{{money .Sheet.TotalEquity}}</td></tr>
<tr class="total"><td>Total Liabilities &amp; Equity</td><td class="amount">{{money .Sheet.TotalLiabilitiesAndEquity}}</td></tr>
</table>
</body></html>`))

type plView struct {
	reports.ProfitAndLoss
	Sections []reports.ProfitAndLossSection
}

type bsView struct {
	Sheet    reports.BalanceSheet
	Sections []reports.BalanceSheetSection
}

// RenderProfitAndLoss produces the printable HTML for a P&L statement.
func RenderProfitAndLoss(pl reports.ProfitAndLoss) (string, error) {
	var buf bytes.Buffer
	view := plView{ProfitAndLoss: pl, Sections: []reports.ProfitAndLossSection{pl.Revenue, pl.COGS, pl.Expenses}}
	if err := plTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderBalanceSheet produces the printable HTML for a balance sheet.
func RenderBalanceSheet(bs reports.BalanceSheet) (string, error) {
	var buf bytes.Buffer
	view := bsView{Sheet: bs, Sections: []reports.BalanceSheetSection{bs.Assets, bs.Liabilities, bs.Equity}}
	if err := bsTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
