package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Language struct {
	Name      string   `toml:"name"`
	FileTypes []string `toml:"file-types"`
}

type Languages struct {
	Languages []Language `toml:"language"`
}

func (l Languages) Match(path string) *Language {
	base := filepath.Base(path)
	baseLower := strings.ToLower(base)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	for i := range l.Languages {
		lang := &l.Languages[i]
		for _, ft := range lang.FileTypes {
			ftLower := strings.ToLower(ft)
			if ftLower == ext || ftLower == baseLower {
				return lang
			}
			if strings.HasPrefix(ftLower, ".") && strings.TrimPrefix(ftLower, ".") == ext {
				return lang
			}
		}
	}
	return nil
}

// DefaultLanguages covers the grammars bundled with the engine.
func DefaultLanguages() Languages {
	return Languages{
		Languages: []Language{
			{Name: "go", FileTypes: []string{"go"}},
			{Name: "bash", FileTypes: []string{"sh", "bash", "zsh", ".bashrc", ".zshrc"}},
			{Name: "yaml", FileTypes: []string{"yaml", "yml"}},
			{Name: "toml", FileTypes: []string{"toml"}},
			{Name: "markdown", FileTypes: []string{"md", "markdown"}},
		},
	}
}

// LoadLanguages returns the built-in language table with any user additions
// from languages.toml prepended, so user entries win on file-type clashes.
func LoadLanguages() (Languages, error) {
	defaults := DefaultLanguages()
	path, err := LanguagesPath()
	if err != nil {
		return defaults, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return defaults, err
	}

	var user Languages
	if _, err := toml.Decode(string(data), &user); err != nil {
		return defaults, err
	}
	return Languages{Languages: append(user.Languages, defaults.Languages...)}, nil
}

func LanguagesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "languages.toml"), nil
}
