package app

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qmute/internal/conceal"
	"github.com/kobzarvs/qmute/internal/config"
	"github.com/kobzarvs/qmute/internal/editor"
	"github.com/kobzarvs/qmute/internal/logger"
	"github.com/kobzarvs/qmute/internal/treesitter"
)

// App is the top-level runtime for qmute.
type App struct {
	args []string
}

func New(args []string) *App {
	return &App{args: args}
}

// bufferRegistry hands out buffer handles and resolves them back to file
// paths for the syntax engine.
type bufferRegistry struct {
	next  conceal.BufferID
	paths map[conceal.BufferID]string
}

func newBufferRegistry() *bufferRegistry {
	return &bufferRegistry{next: 1, paths: make(map[conceal.BufferID]string)}
}

func (b *bufferRegistry) Register(path string) conceal.BufferID {
	id := b.next
	b.next++
	b.paths[id] = path
	return id
}

func (b *bufferRegistry) Path(id conceal.BufferID) (string, bool) {
	path, ok := b.paths[id]
	return path, ok
}

// spanSource feeds the concealment controller from the tree-sitter engine,
// translating engine errors onto the conceal sentinels so callers can use
// errors.Is without importing the engine.
type spanSource struct {
	engine  *treesitter.Engine
	buffers *bufferRegistry
}

func (s *spanSource) CommentSpans(id conceal.BufferID) ([]conceal.Span, error) {
	path, ok := s.buffers.Path(id)
	if !ok {
		return nil, conceal.ErrInvalidBuffer
	}
	spans, err := s.engine.CommentSpans(path)
	if err != nil {
		return nil, mapEngineError(err)
	}
	out := make([]conceal.Span, len(spans))
	for i, sp := range spans {
		out[i] = conceal.Span{
			StartRow: sp.StartRow,
			StartCol: sp.StartCol,
			EndRow:   sp.EndRow,
			EndCol:   sp.EndCol,
		}
	}
	return out, nil
}

func mapEngineError(err error) error {
	switch {
	case errors.Is(err, treesitter.ErrNoParser):
		return fmt.Errorf("%w: %v", conceal.ErrNoParser, err)
	case errors.Is(err, treesitter.ErrNoGrammar):
		return fmt.Errorf("%w: %v", conceal.ErrNoGrammar, err)
	case errors.Is(err, treesitter.ErrParseFailed):
		return fmt.Errorf("%w: %v", conceal.ErrParseFailed, err)
	}
	return err
}

// textSource exposes the single open editor buffer to the controller.
type textSource struct {
	ed *editor.Editor
	id conceal.BufferID
}

func (t *textSource) Line(id conceal.BufferID, row int) string {
	if id != t.id {
		return ""
	}
	return t.ed.Line(row)
}

func (t *textSource) LineCount(id conceal.BufferID) int {
	if id != t.id {
		return 0
	}
	return t.ed.LineCount()
}

func (a *App) Run() error {
	runtime.LockOSThread()
	if err := logger.Init(os.Getenv("QMUTE_DEBUG") != ""); err != nil {
		fmt.Fprintln(os.Stderr, "qmute: logger:", err)
	}
	defer logger.Close()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	langs, err := config.LoadLanguages()
	if err != nil {
		return err
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()

	ts := treesitter.New(langs)
	if err := ts.Start(); err != nil {
		return err
	}

	stopTicker := make(chan struct{})
	defer close(stopTicker)
	go func() {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopTicker:
				return
			case <-ticker.C:
				_ = s.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}()

	ed := editor.New(cfg)
	buffers := newBufferRegistry()
	overlay := conceal.NewState()

	var openPath string
	var langName string
	var bufID conceal.BufferID
	if len(a.args) > 0 {
		openPath = a.args[0]
		if err := ed.OpenFile(openPath); err != nil {
			return err
		}
		bufID = buffers.Register(openPath)
		if lang := langs.Match(openPath); lang != nil {
			langName = lang.Name
		}
	}

	ctrl := conceal.NewController(
		overlay,
		&spanSource{engine: ts, buffers: buffers},
		&textSource{ed: ed, id: bufID},
	)
	ed.SetConceal(overlay, bufID, cfg.Conceal.Navigation)

	debounce := time.Duration(cfg.Conceal.DebounceMS) * time.Millisecond
	if debounce < 0 {
		debounce = 0
	}

	parsed := false
	if openPath != "" && langName != "" {
		parsed = ts.ParseSync(openPath, langName, ed.Content())
		if !parsed {
			logger.Warn("initial parse failed", "path", openPath, "language", langName)
		}
	}
	if parsed && cfg.Conceal.Enabled && ts.Supports(openPath) {
		if err := ctrl.Enable(bufID); err != nil {
			logger.Warn("conceal enable failed", "path", openPath, "error", err)
			ed.SetStatusMessage(concealErrorMessage(err))
		} else {
			logger.Info("conceal enabled", "path", openPath, "language", langName)
		}
	}

	lastChangeTick := ed.ChangeTick()
	var pendingSince time.Time
	pending := false

	ed.Render(s)
	for {
		ev := s.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ed.HandleKey(ev) {
				return nil
			}
		case *tcell.EventResize:
			s.Sync()
		case *tcell.EventInterrupt:
			// Debounce expiry is handled below.
		}

		if req, ok := ed.ConsumeConcealRequest(); ok {
			a.handleConcealRequest(ed, ctrl, ts, bufID, openPath, langName, req)
		}

		if openPath != "" {
			tick := ed.ChangeTick()
			if tick != lastChangeTick {
				lastChangeTick = tick
				pending = true
				pendingSince = time.Now()
			}
			if pending && time.Since(pendingSince) >= debounce {
				pending = false
				if langName != "" && ts.ParseSync(openPath, langName, ed.Content()) {
					if ctrl.IsEnabled(bufID) {
						if err := ctrl.Refresh(bufID); err != nil {
							logger.Warn("conceal refresh failed", "path", openPath, "error", err)
							ed.SetStatusMessage(concealErrorMessage(err))
						}
					}
				}
			}
		}

		ed.Render(s)
	}
}

func (a *App) handleConcealRequest(ed *editor.Editor, ctrl *conceal.Controller, ts *treesitter.Engine, bufID conceal.BufferID, openPath, langName, req string) {
	if openPath == "" {
		ed.SetStatusMessage("conceal: no file open")
		return
	}
	ensureParsed := func() bool {
		if langName == "" {
			return true
		}
		return ts.ParseSync(openPath, langName, ed.Content())
	}
	switch req {
	case "enable":
		if !ensureParsed() {
			ed.SetStatusMessage("conceal: parse failed")
			return
		}
		if err := ctrl.Enable(bufID); err != nil {
			logger.Warn("conceal enable failed", "path", openPath, "error", err)
			ed.SetStatusMessage(concealErrorMessage(err))
			return
		}
		ed.SetStatusMessage("conceal: on")
		logger.Info("conceal enabled", "path", openPath)
	case "disable":
		ctrl.Disable(bufID)
		ed.SetStatusMessage("conceal: off")
		logger.Info("conceal disabled", "path", openPath)
	case "toggle":
		if !ctrl.IsEnabled(bufID) && !ensureParsed() {
			ed.SetStatusMessage("conceal: parse failed")
			return
		}
		on, err := ctrl.Toggle(bufID)
		if err != nil {
			logger.Warn("conceal toggle failed", "path", openPath, "error", err)
			ed.SetStatusMessage(concealErrorMessage(err))
			return
		}
		if on {
			ed.SetStatusMessage("conceal: on")
		} else {
			ed.SetStatusMessage("conceal: off")
		}
	case "stats":
		if !ctrl.IsEnabled(bufID) {
			ed.SetStatusMessage("conceal: off")
			return
		}
		st := ctrl.Stats(bufID)
		ed.SetStatusMessage(fmt.Sprintf("conceal: %d of %d lines hidden (%.1f%%)",
			st.ConcealedLines, st.TotalLines, st.ConcealedPercent))
	}
}

func concealErrorMessage(err error) string {
	switch {
	case errors.Is(err, conceal.ErrInvalidBuffer):
		return "conceal: invalid buffer"
	case errors.Is(err, conceal.ErrNoParser):
		return "conceal: no parser for this file type"
	case errors.Is(err, conceal.ErrNoGrammar):
		return "conceal: comments not supported for this grammar"
	case errors.Is(err, conceal.ErrParseFailed):
		return "conceal: parse failed"
	}
	return "conceal: " + err.Error()
}
