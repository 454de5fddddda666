package dplyrsql

import "testing"

// TestTranspileIsDeterministic checks the quantified invariant that two
// Transpile calls for the same dialect, options, and source produce
// byte-equal SQL, independent of caching.
func TestTranspileIsDeterministic(t *testing.T) {
	sources := []string{
		`orders %>% select(id, total)`,
		`orders %>% filter(total > 100) %>% select(id, total)`,
		`orders %>% group_by(region) %>% summarise(total = sum(amount), cnt = n())`,
		`orders %>% mutate(profit = revenue - cost) %>% mutate(margin = profit / revenue)`,
		`orders %>% arrange(desc(total), id)`,
		`orders %>% left_join(customers, by = customer_id == id)`,
	}
	for _, dialectName := range []string{"postgresql", "mysql", "sqlite", "duckdb"} {
		for _, source := range sources {
			tr, err := NewWithOptions(dialectName, Options{MaxInputLength: DefaultMaxInputLength, MaxProcessingOps: DefaultMaxProcessingOps})
			if err != nil {
				t.Fatalf("NewWithOptions(%s): %v", dialectName, err)
			}
			first, err := tr.Transpile(source)
			if err != nil {
				t.Fatalf("%s %q: %v", dialectName, source, err)
			}
			for i := 0; i < 5; i++ {
				again, err := tr.Transpile(source)
				if err != nil {
					t.Fatalf("%s %q (repeat %d): %v", dialectName, source, i, err)
				}
				if again != first {
					t.Fatalf("%s %q: nondeterministic output, %q vs %q", dialectName, source, first, again)
				}
			}
		}
	}
}

// TestWhitespaceAndCommentsDoNotAffectOutput confirms that superficial
// source formatting has no effect on the generated SQL.
func TestWhitespaceAndCommentsDoNotAffectOutput(t *testing.T) {
	tr, err := New("postgresql")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	compact := `orders%>%select(id,total)%>%filter(total>100)`
	spaced := "orders  %>%  select( id , total )  %>%  filter( total > 100 )"
	commented := "orders %>% # keep only what's needed\n  select(id, total) %>%\n  filter(total > 100) # threshold"

	base, err := tr.Transpile(compact)
	if err != nil {
		t.Fatalf("Transpile(compact): %v", err)
	}
	for _, variant := range []string{spaced, commented} {
		got, err := tr.Transpile(variant)
		if err != nil {
			t.Fatalf("Transpile(%q): %v", variant, err)
		}
		if got != base {
			t.Errorf("formatting variant changed output: %q vs %q", got, base)
		}
	}
}

// TestNoSharedStateBetweenTranspilers confirms two independently
// constructed Transpilers for different dialects never observe each
// other's cache entries, the Go analogue of per-thread cache isolation.
func TestNoSharedStateBetweenTranspilers(t *testing.T) {
	pg, err := New("postgresql")
	if err != nil {
		t.Fatalf("New(postgresql): %v", err)
	}
	my, err := New("mysql")
	if err != nil {
		t.Fatalf("New(mysql): %v", err)
	}
	source := `orders %>% select(id)`
	if _, err := pg.Transpile(source); err != nil {
		t.Fatalf("pg Transpile: %v", err)
	}
	if my.cache.Stats().Hits != 0 {
		t.Error("expected the mysql transpiler's cache to be untouched by the postgres call")
	}
}
