package summarize

import (
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	Initialize()
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "basic",
			in:   "One fish. Two fish! Red fish? Blue fish.",
			want: []string{"One fish.", "Two fish!", "Red fish?", "Blue fish."},
		},
		{
			name: "abbreviations",
			in:   "Dr. Smith met Mr. Jones in the U.S. on Monday. They talked.",
			want: []string{"Dr. Smith met Mr. Jones in the U.S. on Monday.", "They talked."},
		},
		{
			name: "initials and decimals",
			in:   "J. R. Tolkien wrote 3.5 drafts. Then he stopped.",
			want: []string{"J. R. Tolkien wrote 3.5 drafts.", "Then he stopped."},
		},
		{
			name: "closing quotes stay",
			in:   `He said "stop." She left.`,
			want: []string{`He said "stop."`, "She left."},
		},
		{
			name: "no as a word ends the sentence",
			in:   "The answer is no. Then we left.",
			want: []string{"The answer is no.", "Then we left."},
		},
		{
			name: "numbered abbreviations before digits",
			in:   "See No. 5 from Mar. 3 for details. It helps. They met in Mar. Later they left.",
			want: []string{"See No. 5 from Mar. 3 for details.", "It helps.", "They met in Mar.", "Later they left."},
		},
		{
			name: "ellipsis and tail",
			in:   "Wait... what happened next",
			want: []string{"Wait...", "what happened next"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitSentences(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitSentences_RejectsInvalidUTF8(t *testing.T) {
	Initialize()
	if _, err := SplitSentences("bad \xff bytes. here."); err != ErrInvalidUTF8 {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestFallbackSplit(t *testing.T) {
	got := fallbackSplit("Dr. Who arrived. Then left!  Done")
	want := []string{"Dr.", "Who arrived.", "Then left!", "Done"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	if out := fallbackSplit(""); len(out) != 0 {
		t.Fatalf("expected no sentences, got %q", out)
	}
}

func TestTerms(t *testing.T) {
	got := Terms("The Quick, brown fox -- isn't jumping over 2 LAZY dogs!")
	want := []string{"quick", "brown", "fox", "jumping", "2", "lazy", "dogs"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}
