package trainer

import "testing"

func TestSplitCSVFieldsPlain(t *testing.T) {
	got := splitCSVFields("a,b,c")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitCSVFieldsQuotedComma(t *testing.T) {
	got := splitCSVFields(`NOUN,"a,b",*`)
	want := []string{"NOUN", "a,b", "*"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitCSVFieldsEscapedQuote(t *testing.T) {
	got := splitCSVFields(`a,"say ""hi""",c`)
	want := []string{"a", `say "hi"`, "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestJoinCSVFieldsRoundTrip(t *testing.T) {
	fields := []string{"NOUN", "a,b", `say "hi"`, "*"}
	joined := joinCSVFields(fields)
	back := splitCSVFields(joined)
	if len(back) != len(fields) {
		t.Fatalf("round trip field count: got %v, want %v", back, fields)
	}
	for i := range fields {
		if back[i] != fields[i] {
			t.Fatalf("round trip field %d: got %q, want %q", i, back[i], fields[i])
		}
	}
}
