package generator

import (
	"context"
	"encoding/json"
	"strings"
	"unicode"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
// It blanks evenly spaced words of four or more letters.
type MockLLM struct {
	// Answers is how many words to remove; zero means 12.
	Answers int
}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	target := m.Answers
	if target <= 0 {
		target = 12
	}

	type pos struct{ line, word int }
	var lines [][]string
	var candidates []pos
	seen := make(map[string]bool)
	for _, raw := range strings.Split(prompt.Lyrics, "\n") {
		words := strings.Fields(raw)
		for i, w := range words {
			core := strings.ToLower(trimPunct(w))
			if len([]rune(core)) < 4 || seen[core] || !isWord(core) {
				continue
			}
			seen[core] = true
			candidates = append(candidates, pos{len(lines), i})
		}
		lines = append(lines, words)
	}

	if target > len(candidates) {
		target = len(candidates)
	}
	answers := make([]string, 0, target)
	for i := 0; i < target; i++ {
		c := candidates[i*len(candidates)/target]
		w := lines[c.line][c.word]
		core := trimPunct(w)
		answers = append(answers, core)
		lines[c.line][c.word] = strings.Replace(w, core, BlankMarker, 1)
	}

	out := struct {
		Lines     []string `json:"lines"`
		AnswerKey []string `json:"answerKey"`
	}{AnswerKey: answers}
	for _, words := range lines {
		out.Lines = append(out.Lines, strings.Join(words, " "))
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func trimPunct(w string) string {
	return strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '\'' {
			return false
		}
	}
	return s != ""
}
