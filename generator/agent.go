package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// Agent 负责把歌词交给模型并校验返回结果。
type Agent struct {
	llm     LLMClient
	logger  *log.Logger
	verbose bool
}

func NewAgent(llm LLMClient, verbose bool, logger *log.Logger) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Agent{llm: llm, logger: logger, verbose: verbose}, nil
}

func (a *Agent) infof(format string, args ...interface{}) {
	if !a.verbose {
		return
	}
	a.logger.Printf("[INFO] "+format, args...)
}

// Generate makes exactly one model call. Failures are wrapped in
// ErrGenerationFailed and never retried.
func (a *Agent) Generate(ctx context.Context, song SongData) (ClozeResult, error) {
	if strings.TrimSpace(song.Lyrics) == "" {
		return ClozeResult{}, ErrEmptyLyrics
	}

	prompt := BuildClozePrompt(song)
	a.infof("[generator] requesting cloze title=%q lyrics_bytes=%d", song.Title, len(song.Lyrics))
	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return ClozeResult{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	res, err := PostProcess(raw)
	if err != nil {
		return ClozeResult{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if blanks := CountBlanks(res.Lines); blanks != len(res.AnswerKey) {
		a.logger.Printf("[WARN] [generator] %d blanks but %d answers for title=%q", blanks, len(res.AnswerKey), song.Title)
	}
	a.infof("[generator] cloze ready lines=%d answers=%d", len(res.Lines), len(res.AnswerKey))
	return res, nil
}
