package core

import (
	"reflect"
	"testing"
)

func tx(typ TransactionType, cents int64, cat *CategoryRef) Transaction {
	t := Transaction{
		Type:   typ,
		Amount: Money{Cents: cents},
		Date:   NewDate(2025, 1, 1),
	}
	if cat != nil {
		t.CategoryID = cat.ID
		t.Category = cat
	}
	return t
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalIncome.Cents != 0 || s.TotalExpenses.Cents != 0 || s.Balance.Cents != 0 {
		t.Fatalf("expected zero totals, got %+v", s)
	}
	if len(s.CategoryBreakdown) != 0 {
		t.Fatalf("expected empty breakdown, got %v", s.CategoryBreakdown)
	}
	if s.SavingsRate() != 0 {
		t.Fatalf("expected 0%% savings rate, got %v", s.SavingsRate())
	}
}

func TestSummarizeIncomeExpenseAndBreakdown(t *testing.T) {
	food := &CategoryRef{ID: "c-food", Name: "Food", Color: "#f00", Icon: "🍕"}
	snapshot := []Transaction{
		tx(Income, 10000, nil),
		tx(Expense, 4000, food),
		tx(Expense, 1000, food),
	}

	s := Summarize(snapshot)
	if s.TotalIncome.Cents != 10000 {
		t.Fatalf("income: %d", s.TotalIncome.Cents)
	}
	if s.TotalExpenses.Cents != 5000 {
		t.Fatalf("expenses: %d", s.TotalExpenses.Cents)
	}
	if s.Balance.Cents != 5000 {
		t.Fatalf("balance: %d", s.Balance.Cents)
	}
	if len(s.CategoryBreakdown) != 1 {
		t.Fatalf("breakdown: %v", s.CategoryBreakdown)
	}
	entry := s.CategoryBreakdown[0]
	if entry.Label != "Food" || entry.Total.Cents != 5000 || entry.Percent != 100 {
		t.Fatalf("entry: %+v", entry)
	}
	if s.SavingsRate() != 50 {
		t.Fatalf("savings rate: %v", s.SavingsRate())
	}
}

func TestSummarizeUncategorizedExpense(t *testing.T) {
	s := Summarize([]Transaction{tx(Expense, 3000, nil)})
	if s.TotalExpenses.Cents != 3000 {
		t.Fatalf("expenses: %d", s.TotalExpenses.Cents)
	}
	if len(s.CategoryBreakdown) != 0 {
		t.Fatalf("uncategorized expenses must not appear in breakdown: %v", s.CategoryBreakdown)
	}
	if s.Balance.Cents != -3000 {
		t.Fatalf("balance: %d", s.Balance.Cents)
	}
}

func TestSummarizeBreakdownSortedDescending(t *testing.T) {
	a := &CategoryRef{ID: "a", Name: "A"}
	b := &CategoryRef{ID: "b", Name: "B"}
	c := &CategoryRef{ID: "c", Name: "C"}
	s := Summarize([]Transaction{
		tx(Expense, 100, a),
		tx(Expense, 500, b),
		tx(Expense, 300, c),
	})
	var got []string
	for _, e := range s.CategoryBreakdown {
		got = append(got, e.CategoryID)
	}
	if !reflect.DeepEqual(got, []string{"b", "c", "a"}) {
		t.Fatalf("order: %v", got)
	}
}

func TestSummarizeTiesKeepFirstSeenOrder(t *testing.T) {
	a := &CategoryRef{ID: "a", Name: "A"}
	b := &CategoryRef{ID: "b", Name: "B"}
	s := Summarize([]Transaction{
		tx(Expense, 200, b),
		tx(Expense, 200, a),
	})
	if s.CategoryBreakdown[0].CategoryID != "b" || s.CategoryBreakdown[1].CategoryID != "a" {
		t.Fatalf("tie order: %+v", s.CategoryBreakdown)
	}
}

func TestSummarizeDeterministicAcrossOrderings(t *testing.T) {
	food := &CategoryRef{ID: "c-food", Name: "Food"}
	rent := &CategoryRef{ID: "c-rent", Name: "Rent"}
	fwd := []Transaction{
		tx(Income, 9000, nil),
		tx(Expense, 4000, rent),
		tx(Expense, 1500, food),
		tx(Expense, 500, food),
	}
	rev := make([]Transaction, len(fwd))
	for i, t2 := range fwd {
		rev[len(fwd)-1-i] = t2
	}

	s1 := Summarize(fwd)
	s2 := Summarize(rev)
	if s1.TotalIncome != s2.TotalIncome || s1.TotalExpenses != s2.TotalExpenses || s1.Balance != s2.Balance {
		t.Fatalf("totals differ: %+v vs %+v", s1, s2)
	}
	for i := range s1.CategoryBreakdown {
		if s1.CategoryBreakdown[i].CategoryID != s2.CategoryBreakdown[i].CategoryID ||
			s1.CategoryBreakdown[i].Total != s2.CategoryBreakdown[i].Total {
			t.Fatalf("breakdown differs under reordering: %+v vs %+v",
				s1.CategoryBreakdown, s2.CategoryBreakdown)
		}
	}
}

func TestSummarizeDoesNotMutateInput(t *testing.T) {
	food := &CategoryRef{ID: "c", Name: "Food"}
	in := []Transaction{tx(Expense, 100, food), tx(Income, 200, nil)}
	before := make([]Transaction, len(in))
	copy(before, in)

	first := Summarize(in)
	second := Summarize(in)

	if !reflect.DeepEqual(in, before) {
		t.Fatal("input snapshot was mutated")
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("summarizing the same snapshot twice must give identical results")
	}
}

func TestSummarizeSameLabelDifferentIDsStaySeparate(t *testing.T) {
	// Two categories sharing a display name must not be merged.
	s := Summarize([]Transaction{
		tx(Expense, 100, &CategoryRef{ID: "c1", Name: "Food"}),
		tx(Expense, 200, &CategoryRef{ID: "c2", Name: "Food"}),
	})
	if len(s.CategoryBreakdown) != 2 {
		t.Fatalf("expected two entries, got %v", s.CategoryBreakdown)
	}
}

func TestSummarizeZeroExpensesPercent(t *testing.T) {
	// Categorized zero-amount expenses: percent stays 0 instead of NaN.
	s := Summarize([]Transaction{tx(Expense, 0, &CategoryRef{ID: "c", Name: "X"})})
	if s.CategoryBreakdown[0].Percent != 0 {
		t.Fatalf("percent: %v", s.CategoryBreakdown[0].Percent)
	}
}
