package generator

import (
	"fmt"
	"strings"
)

const (
	MinAnswers = 10
	MaxAnswers = 15
	// BlankMarker is what the model writes in place of a removed word.
	BlankMarker = "_____"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System string
	User   string
	// Lyrics is the raw text the prompt was built from.
	Lyrics string
}

// BuildClozePrompt builds the word-selection prompt for one song.
func BuildClozePrompt(song SongData) Prompt {
	var sb strings.Builder
	sb.WriteString("You prepare listening exercises for language learners.\n")
	sb.WriteString("Turn the lyrics into a fill-in-the-blank worksheet.\n")
	sb.WriteString("Rules:\n")
	sb.WriteString(fmt.Sprintf("- Choose between %d and %d words spread across the whole song.\n", MinAnswers, MaxAnswers))
	sb.WriteString("- Prefer meaningful content words that are clearly audible; never blank the same word twice.\n")
	sb.WriteString(fmt.Sprintf("- Replace each chosen word with %s and keep the surrounding punctuation.\n", BlankMarker))
	sb.WriteString("- Return one entry per lyric line, without line breaks, and skip empty lines.\n")
	sb.WriteString("- answerKey lists the removed words in the order their blanks appear.\n")
	sb.WriteString("Respond with JSON only: {\"lines\": [...], \"answerKey\": [...]}.\n")

	var user strings.Builder
	if song.Title != "" {
		user.WriteString(fmt.Sprintf("Song: %s\n", song.Title))
	}
	if song.Artist != "" {
		user.WriteString(fmt.Sprintf("Artist: %s\n", song.Artist))
	}
	user.WriteString("Lyrics:\n")
	user.WriteString(song.Lyrics)

	return Prompt{
		System: sb.String(),
		User:   user.String(),
		Lyrics: song.Lyrics,
	}
}
