package diag_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"krait/internal/diag"
	"krait/internal/source"
)

func at(code diag.Code, sev diag.Severity, start, end uint32) diag.Diagnostic {
	return diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  code.ID(),
		Primary:  source.Span{Start: start, End: end},
	}
}

func ids(bag *diag.Bag) []string {
	out := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code.ID())
	}
	return out
}

func TestBagSortOrder(t *testing.T) {
	bag := diag.NewBag(16)
	// Semantic finding first, a later-span one, then the syntax finding
	// sharing the first span.
	bag.Add(at(diag.SemYieldInTypeAlias, diag.SevError, 9, 16))
	bag.Add(at(diag.SynExpectedStatement, diag.SevError, 20, 22))
	bag.Add(at(diag.SynYieldExpression, diag.SevError, 9, 16))
	bag.Sort()

	// Equal spans: the higher code family loses the tie only through the
	// code comparison, so SYN2007 lands before SEM3001.
	want := []string{"SYN2007", "SEM3001", "SYN2001"}
	if diff := cmp.Diff(want, ids(bag)); diff != "" {
		t.Errorf("sort order mismatch (-want +got):\n%s", diff)
	}
}

func TestBagSortSeverityBeforeCode(t *testing.T) {
	bag := diag.NewBag(16)
	bag.Add(at(diag.SynExpectedStatement, diag.SevWarning, 0, 1))
	bag.Add(at(diag.SemYieldInTypeAlias, diag.SevError, 0, 1))
	bag.Sort()

	want := []string{"SEM3001", "SYN2001"}
	if diff := cmp.Diff(want, ids(bag)); diff != "" {
		t.Errorf("severity must outrank code (-want +got):\n%s", diff)
	}
}

func TestBagDedup(t *testing.T) {
	bag := diag.NewBag(16)
	bag.Add(at(diag.SynYieldExpression, diag.SevError, 9, 16))
	bag.Add(at(diag.SynYieldExpression, diag.SevError, 9, 16))
	bag.Add(at(diag.SynYieldExpression, diag.SevError, 9, 20))
	bag.Dedup()

	if bag.Len() != 2 {
		t.Errorf("expected 2 diagnostics after dedup, got %v", ids(bag))
	}
}

func TestBagCap(t *testing.T) {
	bag := diag.NewBag(2)
	if !bag.Add(at(diag.SynExpectedStatement, diag.SevError, 0, 1)) {
		t.Fatal("first add rejected")
	}
	if !bag.Add(at(diag.SynExpectedStatement, diag.SevError, 1, 2)) {
		t.Fatal("second add rejected")
	}
	if bag.Add(at(diag.SynExpectedStatement, diag.SevError, 2, 3)) {
		t.Error("add past the cap must report the drop")
	}
	if bag.Len() != 2 {
		t.Errorf("expected 2 diagnostics, got %d", bag.Len())
	}
}

func TestBagMergeGrowsCap(t *testing.T) {
	a := diag.NewBag(1)
	a.Add(at(diag.SynExpectedStatement, diag.SevError, 0, 1))
	b := diag.NewBag(1)
	b.Add(at(diag.SemYieldInTypeAlias, diag.SevError, 5, 6))

	a.Merge(b)
	if a.Len() != 2 {
		t.Fatalf("expected merged bag of 2, got %d", a.Len())
	}
	if a.Cap() != 2 {
		t.Errorf("merge must grow the cap to the merged total, got %d", a.Cap())
	}
}
