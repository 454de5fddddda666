package validator

import "testing"

func TestValidPipelineSummary(t *testing.T) {
	res := Validate(`orders %>% select(id, total) %>% filter(total > 100)`, DefaultOptions)
	if !res.Valid {
		t.Fatalf("expected valid, got error %#v", res.Err)
	}
	if res.Summary.OperationCount != 2 {
		t.Errorf("expected 2 operations, got %d", res.Summary.OperationCount)
	}
	if res.Summary.ComplexityScore != 1+2 {
		t.Errorf("got complexity %d", res.Summary.ComplexityScore)
	}
	if res.Summary.HasAggregation {
		t.Error("did not expect aggregation")
	}
}

func TestSummariseWithoutGroupByWarns(t *testing.T) {
	res := Validate(`orders %>% summarise(total = sum(amount))`, DefaultOptions)
	if !res.Valid {
		t.Fatalf("expected valid, got %#v", res.Err)
	}
	if !res.Summary.HasAggregation {
		t.Error("expected HasAggregation")
	}
	if len(res.Summary.Warnings) == 0 {
		t.Error("expected a warning about missing group_by")
	}
}

func TestGroupedSummariseHasNoMissingGroupByWarning(t *testing.T) {
	res := Validate(`orders %>% group_by(region) %>% summarise(total = sum(amount))`, DefaultOptions)
	if !res.Valid {
		t.Fatalf("expected valid, got %#v", res.Err)
	}
	for _, w := range res.Summary.Warnings {
		if w == "summarise without a preceding group_by aggregates the whole table" {
			t.Errorf("unexpected warning: %s", w)
		}
	}
}

func TestMutateAggregateWarning(t *testing.T) {
	res := Validate(`orders %>% mutate(total_count = count(id))`, DefaultOptions)
	if !res.Valid {
		t.Fatalf("expected valid, got %#v", res.Err)
	}
	if len(res.Summary.Warnings) == 0 {
		t.Error("expected aggregate-in-mutate warning")
	}
}

func TestComplexityBudgetExceeded(t *testing.T) {
	res := Validate(`orders %>% group_by(a) %>% summarise(x = sum(b)) %>% arrange(x)`, Options{MaxComplexity: 2})
	if res.Valid {
		t.Fatal("expected invalid due to complexity budget")
	}
	if res.Err.Type != ErrorComplexity {
		t.Errorf("expected ErrorComplexity, got %v", res.Err.Type)
	}
}

func TestSyntaxErrorPropagates(t *testing.T) {
	res := Validate(`orders %>% nope(x)`, DefaultOptions)
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if res.Err.Type != ErrorSyntax {
		t.Errorf("expected ErrorSyntax, got %v", res.Err.Type)
	}
	if len(res.Suggestions) == 0 {
		t.Error("expected a suggestion for an unknown verb")
	}
}

func TestEmptyMutateArgumentListIsInvalid(t *testing.T) {
	res := Validate(`orders %>% mutate()`, DefaultOptions)
	if res.Valid {
		t.Fatal("expected invalid for empty mutate")
	}
}

func TestColumnCollection(t *testing.T) {
	res := Validate(`orders %>% select(id, total) %>% filter(total > 100)`, DefaultOptions)
	if res.Summary.ColumnCount < 2 {
		t.Errorf("expected at least 2 distinct columns, got %d", res.Summary.ColumnCount)
	}
}
