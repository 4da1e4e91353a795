package grammar

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jvitoroc/gorule/rule"
)

func Test_tokenizer_getLineColumn(t *testing.T) {
	type fields struct {
		source string
		cursor int
	}
	tests := []struct {
		name       string
		fields     fields
		skip       int
		wantLine   int
		wantColumn int
	}{
		{
			name:       "empty source, cursor overflow, skip 10",
			fields:     fields{source: "", cursor: 100},
			skip:       10,
			wantLine:   1,
			wantColumn: 1,
		},
		{
			name:       "cursor overflow, skip 10",
			fields:     fields{source: "aaaa", cursor: 100},
			skip:       10,
			wantLine:   1,
			wantColumn: 5,
		},
		{
			name:       "multilined, cursor overflow, skip 10",
			fields:     fields{source: "aaaa\nbbb\ncc", cursor: 100},
			skip:       10,
			wantLine:   3,
			wantColumn: 3,
		},
		{
			name:       "skip 0",
			fields:     fields{source: "aaaa\nbbb\ncc", cursor: 1},
			wantLine:   1,
			wantColumn: 2,
		},
		{
			name:       "first column, second line",
			fields:     fields{source: "aaaa\nbbb\ncc", cursor: 5},
			wantLine:   2,
			wantColumn: 1,
		},
		{
			name:       "first column, second line, skip 3",
			fields:     fields{source: "aaaa\nbbb\ncc", cursor: 5},
			skip:       3,
			wantLine:   2,
			wantColumn: 4,
		},
		{
			name:       "first column, second line, skip 4",
			fields:     fields{source: "aaaa\nbbb\ncc", cursor: 5},
			skip:       4,
			wantLine:   3,
			wantColumn: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &tokenizer{source: tt.fields.source, cursor: tt.fields.cursor}
			line, column := tr.getLineColumn(tt.skip)
			if line != tt.wantLine {
				t.Errorf("tokenizer.getLineColumn() got line = %v, want line %v", line, tt.wantLine)
			}
			if column != tt.wantColumn {
				t.Errorf("tokenizer.getLineColumn() got column = %v, want column %v", column, tt.wantColumn)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	got, err := Tokenize("IF (x >= -1 AND\n IS_MISSING(y_2)) RETURN 10\nELSE RETURN 0")
	if err != nil {
		t.Fatal(err)
	}

	want := []rule.Token{
		{Kind: "if", Text: "IF", Value: "IF", Position: rule.Position{Line: 1, Column: 1, Offset: 0}},
		{Kind: "left_parenthesis", Text: "(", Value: "(", Position: rule.Position{Line: 1, Column: 4, Offset: 3}},
		{Kind: "identifier", Text: "x", Value: "x", Position: rule.Position{Line: 1, Column: 5, Offset: 4}},
		{Kind: "greater_equal", Text: ">=", Value: ">=", Position: rule.Position{Line: 1, Column: 7, Offset: 6}},
		{Kind: "number_literal", Text: "-1", Value: float64(-1), Position: rule.Position{Line: 1, Column: 10, Offset: 9}},
		{Kind: "and", Text: "AND", Value: "AND", Position: rule.Position{Line: 1, Column: 13, Offset: 12}},
		{Kind: "is_missing", Text: "IS_MISSING", Value: "IS_MISSING", Position: rule.Position{Line: 2, Column: 2, Offset: 17}},
		{Kind: "left_parenthesis", Text: "(", Value: "(", Position: rule.Position{Line: 2, Column: 12, Offset: 27}},
		{Kind: "identifier", Text: "y_2", Value: "y_2", Position: rule.Position{Line: 2, Column: 13, Offset: 28}},
		{Kind: "right_parenthesis", Text: ")", Value: ")", Position: rule.Position{Line: 2, Column: 16, Offset: 31}},
		{Kind: "right_parenthesis", Text: ")", Value: ")", Position: rule.Position{Line: 2, Column: 17, Offset: 32}},
		{Kind: "return", Text: "RETURN", Value: "RETURN", Position: rule.Position{Line: 2, Column: 19, Offset: 34}},
		{Kind: "number_literal", Text: "10", Value: float64(10), Position: rule.Position{Line: 2, Column: 26, Offset: 41}},
		{Kind: "else", Text: "ELSE", Value: "ELSE", Position: rule.Position{Line: 3, Column: 1, Offset: 44}},
		{Kind: "return", Text: "RETURN", Value: "RETURN", Position: rule.Position{Line: 3, Column: 6, Offset: 49}},
		{Kind: "number_literal", Text: "0", Value: float64(0), Position: rule.Position{Line: 3, Column: 13, Offset: 56}},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeKeywordsNeedWordBoundary(t *testing.T) {
	got, err := Tokenize("IFFY ORDER ANDROID")
	if err != nil {
		t.Fatal(err)
	}

	for _, tk := range got {
		if tk.Kind != string(identifier) {
			t.Errorf("expected %q to be an identifier, got %s", tk.Text, tk.Kind)
		}
	}
}

func TestTokenizeInvalidCharacter(t *testing.T) {
	_, err := Tokenize("IF (x = 1)")

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}

	if parseErr.Line != 1 || parseErr.Column != 7 {
		t.Errorf("expected error at 1:7, got %d:%d", parseErr.Line, parseErr.Column)
	}
}
