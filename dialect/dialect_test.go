package dialect

import "testing"

func TestQuoting(t *testing.T) {
	tests := []struct {
		name Name
		col  string
		want string
	}{
		{PostgreSQL, "name", `"name"`},
		{MySQL, "name", "`name`"},
		{SQLite, "name", `"name"`},
		{DuckDB, "name", `"name"`},
	}
	for _, tt := range tests {
		d, err := New(tt.name)
		if err != nil {
			t.Fatalf("New(%s): %v", tt.name, err)
		}
		if got := d.QuoteIdentifier(tt.col); got != tt.want {
			t.Errorf("%s.QuoteIdentifier(%q) = %q, want %q", tt.name, tt.col, got, tt.want)
		}
	}
}

func TestQuoteStringEscapesSingleQuote(t *testing.T) {
	d, _ := New(PostgreSQL)
	got := d.QuoteString("O'Brien")
	want := "'O''Brien'"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStringConcat(t *testing.T) {
	pg, _ := New(PostgreSQL)
	if got := pg.StringConcat("a", "b"); got != "a || b" {
		t.Errorf("postgres concat: got %q", got)
	}
	my, _ := New(MySQL)
	if got := my.StringConcat("a", "b"); got != "CONCAT(a, b)" {
		t.Errorf("mysql concat: got %q", got)
	}
}

func TestAggregateFunction(t *testing.T) {
	d, _ := New(PostgreSQL)
	tests := map[string]string{
		"mean":  "AVG",
		"avg":   "AVG",
		"sum":   "SUM",
		"count": "COUNT",
		"min":   "MIN",
		"max":   "MAX",
		"n":     "COUNT(*)",
	}
	for in, want := range tests {
		if got := d.AggregateFunction(in); got != want {
			t.Errorf("AggregateFunction(%q) = %q, want %q", in, got, want)
		}
	}
	if got := d.AggregateFunction("weird"); got != "WEIRD" {
		t.Errorf("fallback uppercase: got %q", got)
	}
}

func TestDuckDBExtendsAggregates(t *testing.T) {
	d, _ := New(DuckDB)
	if got := d.AggregateFunction("median"); got != "MEDIAN" {
		t.Errorf("got %q, want MEDIAN", got)
	}
	if got := d.AggregateFunction("mode"); got != "MODE" {
		t.Errorf("got %q, want MODE", got)
	}
}

func TestSelectStarExclude(t *testing.T) {
	duck, _ := New(DuckDB)
	got, ok := duck.SelectStarExclude([]string{"a", "b"})
	if !ok || got != `* EXCLUDE ("a", "b")` {
		t.Errorf("got (%q, %v)", got, ok)
	}
	pg, _ := New(PostgreSQL)
	if _, ok := pg.SelectStarExclude([]string{"a"}); ok {
		t.Error("postgres should not support SELECT * EXCLUDE")
	}
}

func TestTranslateFunction(t *testing.T) {
	d, _ := New(PostgreSQL)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"log", []string{"x"}, "LN(x)"},
		{"log", []string{"x", "2"}, "LOG(2, x)"},
		{"ifelse", []string{"c", "t", "e"}, "CASE WHEN c THEN t ELSE e END"},
		{"is.na", []string{"x"}, "x IS NULL"},
		{"tolower", []string{"x"}, "LOWER(x)"},
	}
	for _, tt := range tests {
		got, ok := d.TranslateFunction(tt.name, tt.args)
		if !ok {
			t.Errorf("%s: translation not found", tt.name)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestPasteUsesStringConcat(t *testing.T) {
	my, _ := New(MySQL)
	got, ok := my.TranslateFunction("paste", []string{"a", "b", "c"})
	if !ok || got != "CONCAT(a, b, c)" {
		t.Errorf("got (%q, %v)", got, ok)
	}
	pg, _ := New(PostgreSQL)
	got, ok = pg.TranslateFunction("paste", []string{"a", "b"})
	if !ok || got != "a || b" {
		t.Errorf("got (%q, %v)", got, ok)
	}
}

func TestUnknownDialect(t *testing.T) {
	if _, err := New("oracle"); err == nil {
		t.Error("expected error for unknown dialect")
	}
}
