package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lyric_cloze_worksheet/coverart"
	"lyric_cloze_worksheet/generator"
	"lyric_cloze_worksheet/layout"
	"lyric_cloze_worksheet/publisher"
	"lyric_cloze_worksheet/worksheet"
)

//go:embed web
var embeddedStatic embed.FS

const maxFormBytes = coverart.MaxBytes + 1<<20

const msgBadCover = "Cover image must be a PNG, JPEG, GIF, WebP or BMP file."

type Server struct {
	genAgent *generator.Agent
	resolver *layout.Resolver
	cfg      publisher.Config
	store    *sessionStore
	staticFS http.Handler
	logger   *log.Logger
	newID    func() string
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*generator.Session
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*generator.Session)}
}

func (s *sessionStore) set(id string, sess *generator.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

func (s *sessionStore) get(id string) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func New(genAgent *generator.Agent, resolver *layout.Resolver, cfg publisher.Config, logger *log.Logger) (*Server, error) {
	if genAgent == nil {
		return nil, errors.New("generator agent required")
	}
	if logger == nil {
		logger = log.Default()
	}
	if resolver == nil {
		resolver = layout.NewResolver(cfg.StrictLayout, logger)
	}

	sub, err := fs.Sub(embeddedStatic, "web")
	if err != nil {
		return nil, err
	}

	return &Server{
		genAgent: genAgent,
		resolver: resolver,
		cfg:      cfg,
		store:    newStore(),
		staticFS: http.FileServer(http.FS(sub)),
		logger:   logger,
		newID:    uuid.NewString,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/worksheets", s.handleCreate)
	mux.HandleFunc("GET /api/worksheets/{id}", s.handleGet)
	mux.HandleFunc("POST /api/worksheets/{id}/regenerate", s.handleRegenerate)
	mux.HandleFunc("POST /api/worksheets/{id}/reset", s.handleReset)
	mux.HandleFunc("GET /worksheets/{id}", s.handlePage)
	mux.HandleFunc("GET /worksheets/{id}/export", s.handleExport)
	mux.HandleFunc("POST /worksheets/{id}/reset", s.handleResetForm)
	mux.Handle("GET /", s.staticHandler())
	return s.logMiddleware(mux)
}

func (s *Server) staticHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		s.staticFS.ServeHTTP(w, r)
	})
}

// --- Handlers ---

type createReq struct {
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	Lyrics       string `json:"lyrics"`
	CoverImage   string `json:"coverImage"`
	Instructions string `json:"instructions"`
}

type worksheetResp struct {
	ID           string                 `json:"id"`
	State        generator.AppState     `json:"state"`
	Tier         *layout.Tier           `json:"tier,omitempty"`
	Units        int                    `json:"units,omitempty"`
	Result       *generator.ClozeResult `json:"result,omitempty"`
	Error        string                 `json:"error,omitempty"`
	WorksheetURL string                 `json:"worksheetUrl,omitempty"`
	ExportURL    string                 `json:"exportUrl,omitempty"`
}

type errorResp struct {
	Error string `json:"error"`
	ID    string `json:"id,omitempty"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	song, err := s.decodeSong(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	if strings.TrimSpace(song.Lyrics) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: generator.MsgEmptyLyrics})
		return
	}

	id := s.newID()
	sess := generator.NewSession(id, s.genAgent)
	s.store.set(id, sess)

	ctx, cancel := s.generationContext(r)
	defer cancel()
	if _, err := sess.Submit(ctx, song); err != nil {
		s.writeGenerationError(w, id, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.view(sess.Snapshot()))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess.Snapshot()))
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	ctx, cancel := s.generationContext(r)
	defer cancel()
	if _, err := sess.Regenerate(ctx); err != nil {
		s.writeGenerationError(w, sess.ID, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess.Snapshot()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := sess.Reset(); err != nil {
		writeJSON(w, http.StatusConflict, errorResp{Error: generator.UserMessage(err), ID: sess.ID})
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess.Snapshot()))
}

func (s *Server) handleResetForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := sess.Reset(); err != nil {
		http.Error(w, generator.UserMessage(err), http.StatusConflict)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sheet, ok := s.readySheet(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	page, err := sheet.HTML("/worksheets/"+id+"/export", "/worksheets/"+id+"/reset")
	if err != nil {
		s.logger.Printf("[server] render %s: %v", id, err)
		http.Error(w, "failed to render worksheet", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sheet, ok := s.readySheet(w, r)
	if !ok {
		return
	}
	doc, err := sheet.Document()
	if err != nil {
		s.logger.Printf("[server] export %s: %v", r.PathValue("id"), err)
		http.Error(w, "failed to export worksheet", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", worksheet.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": sheet.Filename()}))
	_, _ = w.Write(doc)
}

// --- Helpers ---

// decodeSong accepts JSON or a multipart form with an optional "cover" file.
func (s *Server) decodeSong(w http.ResponseWriter, r *http.Request) (generator.SongData, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var song generator.SongData
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormBytes); err != nil {
			return song, errors.New("invalid form")
		}
		song = generator.SongData{
			Title:        r.FormValue("title"),
			Artist:       r.FormValue("artist"),
			Lyrics:       r.FormValue("lyrics"),
			Instructions: r.FormValue("instructions"),
		}
		file, _, err := r.FormFile("cover")
		if err == nil {
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				return song, errors.New("invalid form")
			}
			if song.CoverImage, err = coverart.DataURL(data); err != nil {
				return song, errors.New(msgBadCover)
			}
		} else if !errors.Is(err, http.ErrMissingFile) {
			return song, errors.New("invalid form")
		}
	default:
		var req createReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return song, errors.New("invalid json body")
		}
		cover, err := coverart.Check(req.CoverImage)
		if err != nil {
			return song, errors.New(msgBadCover)
		}
		song = generator.SongData{
			Title:        req.Title,
			Artist:       req.Artist,
			Lyrics:       req.Lyrics,
			CoverImage:   cover,
			Instructions: req.Instructions,
		}
	}
	return song, nil
}

// generationContext outlives the request: a closed tab doesn't abort a
// running generation, the configured timeout does.
func (s *Server) generationContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), s.cfg.GenerationTimeout())
}

func (s *Server) writeGenerationError(w http.ResponseWriter, id string, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, generator.ErrEmptyLyrics):
		status = http.StatusBadRequest
	case errors.Is(err, generator.ErrBusy):
		status = http.StatusConflict
	default:
		s.logger.Printf("[server] generation failed id=%s: %v", id, err)
	}
	writeJSON(w, status, errorResp{Error: generator.UserMessage(err), ID: id})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*generator.Session, bool) {
	sess, ok := s.store.get(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp{Error: "worksheet not found"})
		return nil, false
	}
	return sess, true
}

func (s *Server) readySheet(w http.ResponseWriter, r *http.Request) (worksheet.Sheet, bool) {
	sess, ok := s.store.get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return worksheet.Sheet{}, false
	}
	v := sess.Snapshot()
	if v.State != generator.StateReady || v.Result == nil {
		http.Error(w, fmt.Sprintf("worksheet is %s", v.State), http.StatusConflict)
		return worksheet.Sheet{}, false
	}
	sheet, err := worksheet.Build(s.resolver, v.Song, *v.Result)
	if err != nil {
		s.logger.Printf("[server] layout %s: %v", v.ID, err)
		http.Error(w, "failed to lay out worksheet", http.StatusInternalServerError)
		return worksheet.Sheet{}, false
	}
	return sheet, true
}

func (s *Server) view(v generator.SessionView) worksheetResp {
	resp := worksheetResp{ID: v.ID, State: v.State, Result: v.Result, Error: v.Error}
	if v.Result != nil {
		tier := layout.Classify(v.Result.Lines)
		resp.Tier = &tier
		resp.Units = layout.Units(v.Result.Lines)
		resp.WorksheetURL = "/worksheets/" + v.ID
		resp.ExportURL = "/worksheets/" + v.ID + "/export"
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if !s.cfg.Verbose {
			return
		}
		s.logger.Printf("[INFO] [server] %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
