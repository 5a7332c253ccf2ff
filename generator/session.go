package generator

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Session 持有一张练习卷的表单数据、生成结果与界面状态，仅存于内存。
type Session struct {
	ID string

	mu        sync.Mutex
	agent     *Agent
	song      SongData
	result    *ClozeResult
	state     AppState
	err       error
	updatedAt time.Time
}

// SessionView is a consistent copy of a session for rendering.
type SessionView struct {
	ID        string       `json:"id"`
	State     AppState     `json:"state"`
	Song      SongData     `json:"song"`
	Result    *ClozeResult `json:"result,omitempty"`
	Error     string       `json:"error,omitempty"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// NewSession 创建 session，状态为 Idle。
func NewSession(id string, agent *Agent) *Session {
	return &Session{ID: id, agent: agent, state: StateIdle, updatedAt: time.Now()}
}

// Submit validates the lyrics and runs one generation. Empty lyrics never
// reach the model and leave the state unchanged; a second call while one is
// running fails with ErrBusy.
func (s *Session) Submit(ctx context.Context, song SongData) (ClozeResult, error) {
	if strings.TrimSpace(song.Lyrics) == "" {
		return ClozeResult{}, ErrEmptyLyrics
	}

	s.mu.Lock()
	if s.state == StateGenerating {
		s.mu.Unlock()
		return ClozeResult{}, ErrBusy
	}
	s.song = song
	s.state = StateGenerating
	s.err = nil
	s.updatedAt = time.Now()
	s.mu.Unlock()

	res, err := s.agent.Generate(ctx, song)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = time.Now()
	if err != nil {
		s.state = StateError
		s.err = err
		s.result = nil
		return ClozeResult{}, err
	}
	s.state = StateReady
	s.result = &res
	return res.Clone(), nil
}

// Regenerate resubmits the current song; the old result is replaced.
func (s *Session) Regenerate(ctx context.Context) (ClozeResult, error) {
	s.mu.Lock()
	song := s.song
	s.mu.Unlock()
	return s.Submit(ctx, song)
}

// Reset returns the session to Idle and drops all data.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateGenerating {
		return ErrBusy
	}
	s.song = SongData{}
	s.result = nil
	s.err = nil
	s.state = StateIdle
	s.updatedAt = time.Now()
	return nil
}

// State reports the current state.
func (s *Session) State() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := SessionView{
		ID:        s.ID,
		State:     s.state,
		Song:      s.song,
		Error:     UserMessage(s.err),
		UpdatedAt: s.updatedAt,
	}
	if s.result != nil {
		r := s.result.Clone()
		v.Result = &r
	}
	return v
}
