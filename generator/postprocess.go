package generator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	lineBreakRe = regexp.MustCompile(`[ \t]*[\r\n\v\f\x{2028}\x{2029}][ \t\r\n\v\f\x{2028}\x{2029}]*`)
	// BlankRe matches one blank in a worksheet line.
	BlankRe = regexp.MustCompile(`_{3,}`)
	fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
)

// PostProcess 解析模型输出并修正不可信的部分：折行合并、空行剔除、答案数校验。
func PostProcess(raw string) (ClozeResult, error) {
	body := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(body); m != nil {
		body = m[1]
	}
	if body == "" {
		return ClozeResult{}, ErrEmptyResult
	}
	if !gjson.Valid(body) {
		return ClozeResult{}, ErrMalformedResult
	}

	doc := gjson.Parse(body)
	linesVal := doc.Get("lines")
	if !linesVal.IsArray() {
		return ClozeResult{}, fmt.Errorf("%w: lines is not an array", ErrMalformedResult)
	}

	var res ClozeResult
	for _, item := range linesVal.Array() {
		if line := NormalizeLine(item.String()); line != "" {
			res.Lines = append(res.Lines, line)
		}
	}
	if len(res.Lines) == 0 {
		return ClozeResult{}, ErrEmptyResult
	}

	for _, item := range doc.Get("answerKey").Array() {
		if word := NormalizeLine(item.String()); word != "" {
			res.AnswerKey = append(res.AnswerKey, word)
		}
	}
	if n := len(res.AnswerKey); n < MinAnswers || n > MaxAnswers {
		return ClozeResult{}, fmt.Errorf("%w: got %d, want %d-%d", ErrAnswerCount, n, MinAnswers, MaxAnswers)
	}
	return res, nil
}

// NormalizeLine collapses embedded line breaks to one space and trims.
func NormalizeLine(s string) string {
	return strings.TrimSpace(lineBreakRe.ReplaceAllString(s, " "))
}

// CountBlanks counts blank markers across all lines.
func CountBlanks(lines []string) int {
	n := 0
	for _, line := range lines {
		n += len(BlankRe.FindAllStringIndex(line, -1))
	}
	return n
}
