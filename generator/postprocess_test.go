package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func answerWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i+1)
	}
	return words
}

func rawResult(t *testing.T, lines []string, answers []string) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{"lines": lines, "answerKey": answers})
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestPostProcessLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{
			name:  "clean lines unchanged",
			lines: []string{"I walk the _____", "under the _____ sky"},
			want:  []string{"I walk the _____", "under the _____ sky"},
		},
		{
			name:  "embedded break collapsed and kept",
			lines: []string{"hold me\nclose", "tonight"},
			want:  []string{"hold me close", "tonight"},
		},
		{
			name:  "crlf run and padding collapsed",
			lines: []string{"  first \r\n\r\n  second  "},
			want:  []string{"first second"},
		},
		{
			name:  "unicode line separator",
			lines: []string{"one\u2028two"},
			want:  []string{"one two"},
		},
		{
			name:  "empty lines dropped and repacked",
			lines: []string{"a", "", "   ", "\n", "b"},
			want:  []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := PostProcess(rawResult(t, tt.lines, answerWords(10)))
			if err != nil {
				t.Fatalf("PostProcess() error = %v", err)
			}
			if strings.Join(res.Lines, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Lines = %q, want %q", res.Lines, tt.want)
			}
			for _, line := range res.Lines {
				if line == "" || strings.ContainsAny(line, "\r\n") {
					t.Errorf("line %q violates post-filter invariant", line)
				}
			}
		})
	}
}

func TestPostProcessAnswerCount(t *testing.T) {
	tests := []struct {
		n       int
		wantErr bool
	}{
		{n: 0, wantErr: true},
		{n: 9, wantErr: true},
		{n: 10, wantErr: false},
		{n: 15, wantErr: false},
		{n: 16, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d answers", tt.n), func(t *testing.T) {
			res, err := PostProcess(rawResult(t, []string{"line"}, answerWords(tt.n)))
			if tt.wantErr {
				if !errors.Is(err, ErrAnswerCount) {
					t.Errorf("error = %v, want ErrAnswerCount", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if len(res.AnswerKey) != tt.n {
				t.Errorf("len(AnswerKey) = %d, want %d", len(res.AnswerKey), tt.n)
			}
		})
	}
}

func TestPostProcessKeepsAnswerOrder(t *testing.T) {
	words := answerWords(12)
	res, err := PostProcess(rawResult(t, []string{"x"}, words))
	if err != nil {
		t.Fatal(err)
	}
	for i := range words {
		if res.AnswerKey[i] != words[i] {
			t.Fatalf("AnswerKey[%d] = %q, want %q", i, res.AnswerKey[i], words[i])
		}
	}
}

func TestPostProcessMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{name: "empty", raw: "  ", want: ErrEmptyResult},
		{name: "not json", raw: "here are your lyrics", want: ErrMalformedResult},
		{name: "lines not array", raw: `{"lines": "a", "answerKey": []}`, want: ErrMalformedResult},
		{name: "only empty lines", raw: `{"lines": ["", " "], "answerKey": []}`, want: ErrEmptyResult},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PostProcess(tt.raw); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPostProcessCodeFence(t *testing.T) {
	raw := "```json\n" + rawResult(t, []string{"a _____"}, answerWords(10)) + "\n```"
	res, err := PostProcess(raw)
	if err != nil {
		t.Fatalf("PostProcess() error = %v", err)
	}
	if len(res.Lines) != 1 {
		t.Errorf("Lines = %q", res.Lines)
	}
}

func TestCountBlanks(t *testing.T) {
	lines := []string{"a _____ b ___", "__ not one", "______, end"}
	if got := CountBlanks(lines); got != 3 {
		t.Errorf("CountBlanks() = %d, want 3", got)
	}
}
