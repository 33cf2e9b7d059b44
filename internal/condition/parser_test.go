package condition

import "testing"

func TestParseValid(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{name: "single predicate", expr: `file("Foo.esp")`},
		{name: "and", expr: `file("Foo.esp") and active("Bar.esp")`},
		{name: "or", expr: `file("Foo.esp") or file("Bar.esp")`},
		{name: "not", expr: `not file("Foo.esp")`},
		{name: "parens", expr: `(file("Foo.esp") or file("Bar.esp")) and not active("Baz.esp")`},
		{name: "checksum", expr: `checksum("Foo.esp", 0xDEADBEEF)`},
		{name: "version", expr: `version("Foo.esp", "1.2", >=)`},
		{name: "many", expr: `many("*.esp")`},
		{name: "nested not", expr: `not not file("Foo.esp")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.expr); err != nil {
				t.Errorf("Parse(%q) error = %v", tt.expr, err)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{name: "unknown predicate", expr: `bogus("Foo.esp")`},
		{name: "missing paren", expr: `file("Foo.esp"`},
		{name: "wrong arity", expr: `file("Foo.esp", "Bar.esp")`},
		{name: "dangling and", expr: `file("Foo.esp") and`},
		{name: "unterminated string", expr: `file("Foo.esp`},
		{name: "empty", expr: ``},
		{name: "trailing garbage", expr: `file("Foo.esp") )`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.expr); err == nil {
				t.Errorf("Parse(%q) expected an error", tt.expr)
			}
		})
	}
}

func TestParsePrecedence(t *testing.T) {
	// "and" must bind tighter than "or": a or b and c == a or (b and c).
	node, err := Parse(`file("A") or file("B") and file("C")`)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	or, ok := node.(*OrNode)
	if !ok {
		t.Fatalf("expected top-level OrNode, got %T", node)
	}
	if _, ok := or.Right.(*AndNode); !ok {
		t.Errorf("expected right side of 'or' to be an AndNode, got %T", or.Right)
	}
}
