// Package treesitter is the syntax source: it parses buffer text with
// tree-sitter and extracts the comment node ranges that concealment is
// built from.
package treesitter

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/kobzarvs/qmute/internal/config"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/golang"
	tree_sitter_markdown "github.com/smacker/go-tree-sitter/markdown/tree-sitter-markdown"
	"github.com/smacker/go-tree-sitter/toml"
	"github.com/smacker/go-tree-sitter/yaml"
)

var (
	// ErrNoParser means no parser is registered for the buffer's language.
	ErrNoParser = errors.New("treesitter: no parser for language")
	// ErrNoGrammar means the language parses but has no comment query.
	ErrNoGrammar = errors.New("treesitter: no comment query for language")
	// ErrParseFailed means parsing produced no usable tree.
	ErrParseFailed = errors.New("treesitter: parse failed")
)

// CommentSpan is one comment node's range. Half-open, 0-based, row-major.
// Columns are rune indices: tree-sitter reports byte columns, the engine
// converts them against the source line before handing spans out.
type CommentSpan struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

type Engine struct {
	langs     config.Languages
	parsers   map[string]*sitter.Parser
	queries   map[string]*sitter.Query
	trees     map[string]*sitter.Tree
	lines     map[string][]string
	languages map[string]string // path -> language name
	mu        sync.RWMutex
}

func New(langs config.Languages) *Engine {
	return &Engine{
		langs:     langs,
		parsers:   make(map[string]*sitter.Parser),
		queries:   make(map[string]*sitter.Query),
		trees:     make(map[string]*sitter.Tree),
		lines:     make(map[string][]string),
		languages: make(map[string]string),
	}
}

const commentQuery = `((comment) @comment)`

func (e *Engine) Start() error {
	// Markdown has a parser but no comment node, so no query: concealment
	// for it reports ErrNoGrammar instead of silently doing nothing.
	languages := []struct {
		name  string
		lang  *sitter.Language
		query string
	}{
		{"go", golang.GetLanguage(), commentQuery},
		{"bash", bash.GetLanguage(), commentQuery},
		{"yaml", yaml.GetLanguage(), commentQuery},
		{"toml", toml.GetLanguage(), commentQuery},
		{"markdown", tree_sitter_markdown.GetLanguage(), ""},
	}

	for _, l := range languages {
		p := sitter.NewParser()
		p.SetLanguage(l.lang)
		e.parsers[l.name] = p

		if l.query == "" {
			continue
		}
		query, err := sitter.NewQuery([]byte(l.query), l.lang)
		if err != nil {
			continue
		}
		e.queries[l.name] = query
	}
	return nil
}

// Supports reports whether a path resolves to a language with comment
// query support.
func (e *Engine) Supports(path string) bool {
	lang := e.langs.Match(path)
	if lang == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.queries[lang.Name] != nil
}

// ParseSync parses text for path and caches the tree. Full reparse every
// time: concealment rebuilds wholesale, so there is nothing to gain from
// tree edits. Returns false when the language is unknown.
func (e *Engine) ParseSync(path, language, text string) bool {
	if language == "" {
		if detected := e.langs.Match(path); detected != nil {
			language = detected.Name
		}
	}
	if language == "" {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	parser, ok := e.parsers[language]
	if !ok {
		return false
	}
	tree, _ := parser.ParseCtx(context.Background(), nil, []byte(text))
	e.trees[path] = tree
	e.lines[path] = strings.Split(text, "\n")
	e.languages[path] = language
	return true
}

// Drop forgets the cached tree and source for a closed buffer.
func (e *Engine) Drop(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.trees, path)
	delete(e.lines, path)
	delete(e.languages, path)
}

// CommentSpans extracts every comment node range from the cached tree for
// path, ordered row-major.
func (e *Engine) CommentSpans(path string) ([]CommentSpan, error) {
	e.mu.RLock()
	language := e.languages[path]
	parser := e.parsers[language]
	query := e.queries[language]
	tree := e.trees[path]
	lines := e.lines[path]
	e.mu.RUnlock()

	if parser == nil {
		return nil, ErrNoParser
	}
	if query == nil {
		return nil, ErrNoGrammar
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, ErrParseFailed
	}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, tree.RootNode())

	var spans []CommentSpan
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			start := capture.Node.StartPoint()
			end := capture.Node.EndPoint()
			spans = append(spans, CommentSpan{
				StartRow: int(start.Row),
				StartCol: runeCol(lines, int(start.Row), int(start.Column)),
				EndRow:   int(end.Row),
				EndCol:   runeCol(lines, int(end.Row), int(end.Column)),
			})
		}
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].StartRow != spans[j].StartRow {
			return spans[i].StartRow < spans[j].StartRow
		}
		return spans[i].StartCol < spans[j].StartCol
	})
	return spans, nil
}

// runeCol converts a tree-sitter byte column into a rune index on its row.
func runeCol(lines []string, row, byteCol int) int {
	if row < 0 || row >= len(lines) {
		return byteCol
	}
	line := lines[row]
	if byteCol > len(line) {
		byteCol = len(line)
	}
	return utf8.RuneCountInString(line[:byteCol])
}
