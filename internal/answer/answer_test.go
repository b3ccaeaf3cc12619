package answer

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Hint
	}{
		{name: "count", raw: "1000", want: Hint{Kind: KindMetric, Text: "1000"}},
		{name: "fenced count", raw: "```sql\n42\n```", want: Hint{Kind: KindMetric, Text: "42"}},
		{name: "rows mention", raw: "Found 3 rows matching", want: Hint{Kind: KindInfo, Text: "Found 3 rows matching"}},
		{name: "records mention ignores case", raw: "No RECORDS found.", want: Hint{Kind: KindInfo, Text: "No RECORDS found."}},
		{name: "pipe table", raw: "a | b\n1 | 2", want: Hint{Kind: KindTable, Text: "a | b\n1 | 2"}},
		{name: "category counts", raw: "name | count\nAction | 5\nComedy | 3", want: Hint{Kind: KindTable, Text: "name | count\nAction | 5\nComedy | 3"}},
		{name: "matching rows", raw: "Found 15 rows matching your criteria", want: Hint{Kind: KindInfo, Text: "Found 15 rows matching your criteria"}},
		{name: "prose", raw: "The top category is Sports.", want: Hint{Kind: KindPlain, Text: "The top category is Sports."}},
		{name: "empty", raw: "", want: Hint{Kind: KindPlain, Text: ""}},
		{name: "only fences", raw: "```sql```", want: Hint{Kind: KindPlain, Text: ""}},
		{name: "negative number is not a metric", raw: "-5", want: Hint{Kind: KindPlain, Text: "-5"}},
		{name: "decimal is not a metric", raw: "3.14", want: Hint{Kind: KindPlain, Text: "3.14"}},
		{name: "pipe without newline", raw: "a | b", want: Hint{Kind: KindPlain, Text: "a | b"}},
		{name: "rows wins over table", raw: "rows:\na | b", want: Hint{Kind: KindInfo, Text: "rows:\na | b"}},
		{name: "error text", raw: "Error: model unreachable", want: Hint{Kind: KindPlain, Text: "Error: model unreachable"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Fatalf("Normalize(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	got := StripFences("  ```sql\nSELECT 1;\n```  ")
	if got != "SELECT 1;" {
		t.Fatalf("StripFences() = %q", got)
	}
}

func TestNormalizeIsStableOverStrippedText(t *testing.T) {
	inputs := []string{
		"1000",
		"```sql\n7\n```",
		"Found 3 rows matching",
		"a | b\n1 | 2",
		"```\nname | total\nAction | 64\n```",
		"   ",
		"Plain answer",
	}
	for _, raw := range inputs {
		first := Normalize(raw)
		second := Normalize(StripFences(raw))
		if first.Kind != second.Kind {
			t.Fatalf("kind for %q changed from %q to %q", raw, first.Kind, second.Kind)
		}
		if again := Normalize(first.Text); again != first {
			t.Fatalf("Normalize(Normalize(%q).Text) = %#v, want %#v", raw, again, first)
		}
	}
}
