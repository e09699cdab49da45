// Package report derives category aggregates from ledger snapshots.
//
// Everything here is a pure function over an expense list: no stored state,
// no side effects, safe to call concurrently. Totals are recomputed in full
// on every call. Edits and deletes move them non-monotonically, so there is
// no incremental maintenance.
package report

import "portafoglio/internal/core"

// CategoryTotals sums expense amounts per category. Categories without
// expenses are absent from the result. Map iteration order carries no
// meaning.
func CategoryTotals(expenses []core.Expense) map[core.Category]core.Money {
	totals := make(map[core.Category]core.Money)
	for _, e := range expenses {
		t := totals[e.Category]
		t.Cents += e.Amount.Cents
		totals[e.Category] = t
	}
	return totals
}

// CategoryTrend is the same aggregation as CategoryTotals shaped as
// (category, amount) pairs for charting consumers. Pairs follow the fixed
// category enumeration so charts render in a stable order.
func CategoryTrend(expenses []core.Expense) []core.CategoryAmount {
	totals := CategoryTotals(expenses)
	out := make([]core.CategoryAmount, 0, len(totals))
	for _, c := range core.Categories() {
		if t, ok := totals[c]; ok {
			out = append(out, core.CategoryAmount{Category: c, Amount: t})
		}
	}
	return out
}
