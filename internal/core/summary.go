package core

import "sort"

// CategoryExpense is one breakdown entry: total expenses for a single
// category together with its display attributes.
type CategoryExpense struct {
	CategoryID string
	Label      string
	Color      string
	Icon       string
	Total      Money
	Percent    float64 // share of total expenses, 0 when there are none
}

// FinancialSummary is the derived aggregate for one transaction
// snapshot. It is recomputed on every refresh and never persisted.
type FinancialSummary struct {
	TotalIncome       Money
	TotalExpenses     Money
	Balance           Money
	CategoryBreakdown []CategoryExpense
}

// SavingsRate returns balance over income as a percentage, 0 when
// there is no income.
func (s FinancialSummary) SavingsRate() float64 {
	if s.TotalIncome.Cents <= 0 {
		return 0
	}
	return float64(s.Balance.Cents) / float64(s.TotalIncome.Cents) * 100
}

// Summarize computes the financial summary for a transaction snapshot
// in a single pass. It is pure: the input is never mutated and the same
// collection yields the same summary regardless of element order.
//
// Expenses without a category count toward TotalExpenses but produce no
// breakdown entry. The breakdown is grouped by category id (the label is
// carried for display only, so two categories sharing a name stay
// separate entries) and sorted descending by total; ties keep first-seen
// order.
func Summarize(txs []Transaction) FinancialSummary {
	var income, expenses int64
	byCategory := make(map[string]int)
	entries := make([]CategoryExpense, 0)

	for _, t := range txs {
		switch t.Type {
		case Income:
			income += t.Amount.Cents
		case Expense:
			expenses += t.Amount.Cents
			if t.Category == nil {
				continue
			}
			idx, seen := byCategory[t.Category.ID]
			if !seen {
				idx = len(entries)
				byCategory[t.Category.ID] = idx
				entries = append(entries, CategoryExpense{
					CategoryID: t.Category.ID,
					Label:      t.Category.Name,
					Color:      t.Category.Color,
					Icon:       t.Category.Icon,
				})
			}
			entries[idx].Total.Cents += t.Amount.Cents
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total.Cents > entries[j].Total.Cents
	})
	for i := range entries {
		if expenses > 0 {
			entries[i].Percent = float64(entries[i].Total.Cents) / float64(expenses) * 100
		}
	}

	return FinancialSummary{
		TotalIncome:       Money{Cents: income},
		TotalExpenses:     Money{Cents: expenses},
		Balance:           Money{Cents: income - expenses},
		CategoryBreakdown: entries,
	}
}
