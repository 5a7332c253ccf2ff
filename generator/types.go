package generator

import "fmt"

// SongData 是表单收集的歌曲信息，CoverImage 为 data URL，可为空。
type SongData struct {
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Lyrics       string `json:"lyrics"`
	CoverImage   string `json:"coverImage,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// ClozeResult is the processed model output: one entry per printed line and
// the removed words in the order their blanks appear.
type ClozeResult struct {
	Lines     []string `json:"lines"`
	AnswerKey []string `json:"answerKey"`
}

// Clone returns a deep copy so callers can't mutate a stored result.
func (r ClozeResult) Clone() ClozeResult {
	return ClozeResult{
		Lines:     append([]string(nil), r.Lines...),
		AnswerKey: append([]string(nil), r.AnswerKey...),
	}
}

// AppState decides which view a session shows.
type AppState int

const (
	StateIdle AppState = iota
	StateGenerating
	StateReady
	StateError
)

func (s AppState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s AppState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *AppState) UnmarshalText(b []byte) error {
	for _, st := range []AppState{StateIdle, StateGenerating, StateReady, StateError} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown app state %q", b)
}
