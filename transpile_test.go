package dplyrsql

import (
	"strings"
	"testing"
)

func TestTranspileSelectFilter(t *testing.T) {
	tr, err := New("postgresql")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sql, err := tr.Transpile(`orders %>% select(id, total) %>% filter(total > 100)`)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	want := `SELECT "id", "total" FROM "orders" WHERE ("total" > 100)`
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}

func TestTranspileGroupBySummarise(t *testing.T) {
	tr, _ := New("postgresql")
	sql, err := tr.Transpile(`orders %>% group_by(customer_id) %>% summarise(total = sum(amount))`)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if !strings.Contains(sql, "GROUP BY") {
		t.Errorf("expected GROUP BY, got %q", sql)
	}
}

func TestTranspileMySQLConcat(t *testing.T) {
	tr, _ := New("mysql")
	sql, err := tr.Transpile(`people %>% mutate(full_name = paste(first, last))`)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if !strings.Contains(sql, "CONCAT(") {
		t.Errorf("expected CONCAT, got %q", sql)
	}
}

func TestTranspileArrangeDesc(t *testing.T) {
	tr, _ := New("sqlite")
	sql, err := tr.Transpile(`orders %>% arrange(desc(total))`)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if !strings.HasSuffix(sql, `ORDER BY "total" DESC`) {
		t.Errorf("got %q", sql)
	}
}

func TestTranspileInvalidSyntaxReportsPosition(t *testing.T) {
	tr, _ := New("postgresql")
	_, err := tr.Transpile(`orders %>% nope(x)`)
	if err == nil {
		t.Fatal("expected error")
	}
	terr, ok := err.(*TranspileError)
	if !ok {
		t.Fatalf("expected *TranspileError, got %T", err)
	}
	if terr.Code != ESyntax {
		t.Errorf("expected ESyntax, got %s", terr.Code)
	}
	if terr.Position == nil || terr.Position.Line != 1 {
		t.Errorf("expected a position on line 1, got %#v", terr.Position)
	}
	if terr.Suggestion == "" {
		t.Error("expected a suggestion for an unknown verb")
	}
}

func TestTranspileEmptyInputReportsFixedMessageAndZeroPosition(t *testing.T) {
	tr, _ := New("postgresql")
	_, err := tr.Transpile("")
	if err == nil {
		t.Fatal("expected error for empty input")
	}
	terr, ok := err.(*TranspileError)
	if !ok || terr.Code != ESyntax {
		t.Fatalf("expected ESyntax, got %#v", err)
	}
	if terr.Message != "Empty input" {
		t.Errorf("got message %q, want %q", terr.Message, "Empty input")
	}
	if terr.Position == nil || terr.Position.Offset != 0 {
		t.Errorf("expected a position at offset 0, got %#v", terr.Position)
	}
}

func TestTranspileUnknownDialect(t *testing.T) {
	_, err := New("oracle")
	if err == nil {
		t.Fatal("expected error for unknown dialect")
	}
	terr, ok := err.(*TranspileError)
	if !ok || terr.Code != EUnsupported {
		t.Fatalf("expected EUnsupported, got %#v", err)
	}
}

func TestTranspileInputTooLarge(t *testing.T) {
	tr, err := NewWithOptions("postgresql", Options{MaxInputLength: 10, CacheCapacity: 0})
	if err != nil {
		t.Fatalf("NewWithOptions: %v", err)
	}
	_, err = tr.Transpile(`orders %>% select(id, total, customer_id)`)
	if err == nil {
		t.Fatal("expected error")
	}
	terr, ok := err.(*TranspileError)
	if !ok || terr.Code != EInputTooLarge {
		t.Fatalf("expected EInputTooLarge, got %#v", err)
	}
}

func TestTranspileIsIdempotentAndCached(t *testing.T) {
	tr, _ := New("postgresql")
	source := `orders %>% select(id) %>% filter(id > 1)`
	first, err := tr.Transpile(source)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	second, err := tr.Transpile(source)
	if err != nil {
		t.Fatalf("Transpile (cached): %v", err)
	}
	if first != second {
		t.Errorf("expected identical output across repeated calls, got %q vs %q", first, second)
	}
	if tr.cache.Stats().Hits != 1 {
		t.Errorf("expected one cache hit, got %#v", tr.cache.Stats())
	}
}

func TestParseThenGenerateMatchesTranspile(t *testing.T) {
	tr, _ := New("duckdb")
	source := `orders %>% select(id) %>% arrange(id)`
	direct, err := tr.Transpile(source)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	pipe, err := tr.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	generated, err := tr.Generate(pipe)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if direct != generated {
		t.Errorf("Transpile and Parse+Generate diverged: %q vs %q", direct, generated)
	}
}
