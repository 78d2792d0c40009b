package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Keymap struct {
	Normal map[string]string `toml:"normal"`
	Insert map[string]string `toml:"insert"`
}

type EditorOptions struct {
	TabWidth    int    `toml:"tab-width"`
	LineNumbers string `toml:"line-numbers"`
}

type ConcealOptions struct {
	Enabled    bool   `toml:"enabled"`
	Navigation bool   `toml:"navigation"`
	DebounceMS int    `toml:"debounce-ms"`
	Marker     string `toml:"marker"`
}

type Theme struct {
	Foreground                 string `toml:"foreground"`
	Background                 string `toml:"background"`
	StatuslineForeground       string `toml:"statusline-foreground"`
	StatuslineBackground       string `toml:"statusline-background"`
	CommandlineForeground      string `toml:"commandline-foreground"`
	CommandlineBackground      string `toml:"commandline-background"`
	LineNumberForeground       string `toml:"line-number-foreground"`
	LineNumberActiveForeground string `toml:"line-number-active-foreground"`
	ConcealMarkerForeground    string `toml:"conceal-marker-foreground"`
	ConcealGutterForeground    string `toml:"conceal-gutter-foreground"`
}

type Config struct {
	Editor  EditorOptions  `toml:"editor"`
	Conceal ConcealOptions `toml:"conceal"`
	Theme   Theme          `toml:"theme"`
	Keymap  Keymap         `toml:"keymap"`
}

func Default() Config {
	return Config{
		Editor: EditorOptions{
			TabWidth:    4,
			LineNumbers: "absolute",
		},
		Conceal: ConcealOptions{
			Enabled:    true,
			Navigation: true,
			DebounceMS: 150,
			Marker:     "…",
		},
		Theme: Theme{
			Foreground:                 "#B3B1AD",
			Background:                 "#0A0E14",
			StatuslineForeground:       "#B3B1AD",
			StatuslineBackground:       "#0F1419",
			CommandlineForeground:      "#B3B1AD",
			CommandlineBackground:      "#0F1419",
			LineNumberForeground:       "#3E4B59",
			LineNumberActiveForeground: "#B3B1AD",
			ConcealMarkerForeground:    "#5C6773",
			ConcealGutterForeground:    "#E6B450",
		},
		Keymap: Keymap{
			Normal: map[string]string{
				"h":         "move_left",
				"j":         "move_down",
				"k":         "move_up",
				"l":         "move_right",
				"left":      "move_left",
				"down":      "move_down",
				"up":        "move_up",
				"right":     "move_right",
				"home":      "line_start",
				"end":       "line_end",
				"g":         "file_start",
				"G":         "file_end",
				"pgup":      "page_up",
				"pgdn":      "page_down",
				"i":         "enter_insert",
				":":         "enter_command",
				"ctrl+c":    "quit",
				"ctrl+l":    "toggle_line_numbers",
				"ctrl+t":    "toggle_conceal",
				"ctrl+s":    "save",
				"ctrl+home": "file_start",
				"ctrl+end":  "file_end",
			},
			Insert: map[string]string{
				"esc":       "enter_normal",
				"left":      "move_left",
				"down":      "move_down",
				"up":        "move_up",
				"right":     "move_right",
				"home":      "line_start",
				"end":       "line_end",
				"pgup":      "page_up",
				"pgdn":      "page_down",
				"backspace": "backspace",
				"enter":     "newline",
				"ctrl+s":    "save",
			},
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	md, err := toml.Decode(string(data), &userCfg)
	if err != nil {
		return cfg, err
	}

	if userCfg.Editor.TabWidth > 0 {
		cfg.Editor.TabWidth = userCfg.Editor.TabWidth
	}
	if userCfg.Editor.LineNumbers != "" {
		cfg.Editor.LineNumbers = userCfg.Editor.LineNumbers
	}
	// Booleans need IsDefined to distinguish "false" from "unset".
	if md.IsDefined("conceal", "enabled") {
		cfg.Conceal.Enabled = userCfg.Conceal.Enabled
	}
	if md.IsDefined("conceal", "navigation") {
		cfg.Conceal.Navigation = userCfg.Conceal.Navigation
	}
	if userCfg.Conceal.DebounceMS > 0 {
		cfg.Conceal.DebounceMS = userCfg.Conceal.DebounceMS
	}
	if userCfg.Conceal.Marker != "" {
		cfg.Conceal.Marker = userCfg.Conceal.Marker
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)
	if userCfg.Keymap.Normal != nil {
		for k, v := range userCfg.Keymap.Normal {
			cfg.Keymap.Normal[k] = v
		}
	}
	if userCfg.Keymap.Insert != nil {
		for k, v := range userCfg.Keymap.Insert {
			cfg.Keymap.Insert[k] = v
		}
	}

	return cfg, nil
}

func mergeTheme(dst *Theme, src Theme) {
	if src.Foreground != "" {
		dst.Foreground = src.Foreground
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.StatuslineForeground != "" {
		dst.StatuslineForeground = src.StatuslineForeground
	}
	if src.StatuslineBackground != "" {
		dst.StatuslineBackground = src.StatuslineBackground
	}
	if src.CommandlineForeground != "" {
		dst.CommandlineForeground = src.CommandlineForeground
	}
	if src.CommandlineBackground != "" {
		dst.CommandlineBackground = src.CommandlineBackground
	}
	if src.LineNumberForeground != "" {
		dst.LineNumberForeground = src.LineNumberForeground
	}
	if src.LineNumberActiveForeground != "" {
		dst.LineNumberActiveForeground = src.LineNumberActiveForeground
	}
	if src.ConcealMarkerForeground != "" {
		dst.ConcealMarkerForeground = src.ConcealMarkerForeground
	}
	if src.ConcealGutterForeground != "" {
		dst.ConcealGutterForeground = src.ConcealGutterForeground
	}
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QMUTE_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qmute"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qmute"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
