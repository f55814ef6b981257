package fixtures

import "testing"

func TestParseValidSuite(t *testing.T) {
	doc := []byte(`
suite: arithmetic
scenarios:
  - name: int-literal
    description: a bare integer literal synthesizes Int
    expected_type: Int
  - name: branch-mismatch
    description: if branches of differing primitive type fail to unify
    expect_error: true
    error_kind: TypeMismatch
`)
	s, err := Parse(doc, "inline")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "arithmetic" {
		t.Errorf("expected suite name 'arithmetic', got %q", s.Name)
	}
	sc, ok := s.ByName("int-literal")
	if !ok {
		t.Fatal("expected to find scenario 'int-literal'")
	}
	if sc.ExpectedType != "Int" {
		t.Errorf("expected expected_type Int, got %q", sc.ExpectedType)
	}
}

func TestParseRejectsMissingErrorKind(t *testing.T) {
	doc := []byte(`
suite: broken
scenarios:
  - name: bad
    expect_error: true
`)
	if _, err := Parse(doc, "inline"); err == nil {
		t.Fatal("expected a validation error when expect_error is set without error_kind")
	}
}

func TestParseRejectsDuplicateNames(t *testing.T) {
	doc := []byte(`
suite: dup
scenarios:
  - name: a
    expected_type: Int
  - name: a
    expected_type: String
`)
	if _, err := Parse(doc, "inline"); err == nil {
		t.Fatal("expected a validation error on duplicate scenario names")
	}
}

func TestParseRejectsEmptySuite(t *testing.T) {
	doc := []byte(`suite: empty
scenarios: []
`)
	if _, err := Parse(doc, "inline"); err == nil {
		t.Fatal("expected a validation error for a suite with no scenarios")
	}
}

func TestByNameMissingReturnsFalse(t *testing.T) {
	doc := []byte(`
suite: s
scenarios:
  - name: only
    expected_type: Int
`)
	s, err := Parse(doc, "inline")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.ByName("missing"); ok {
		t.Error("expected ByName to report false for a name not in the suite")
	}
}
