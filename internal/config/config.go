// Package config manages persistent user preferences for toxterm. Settings
// are stored as an INI file at os.UserConfigDir()/toxterm/config.ini, with
// per-contact overrides keyed by a pk_<64hex> section name (spec §4.9).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// Config holds all persistent user preferences (spec §3's "Configuration").
type Config struct {
	UI       UISettings
	Keys     KeyBindings
	Tox      ToxSettings
	Audio    AudioSettings
	Sounds   SoundSettings

	FriendOverrides map[string]ContactOverride // keyed by pk_<64hex>
	GroupOverrides  map[string]ContactOverride
	BlockedWords    []string
}

// UISettings mirrors spec §3's flat UI-facing config fields.
type UISettings struct {
	Timestamps          bool
	Timestamp24Hour      bool
	TimestampFormat      string
	LogTimestampFormat   string
	AlertsEnabled        bool
	BellOnMessage        bool
	BellOnInvite         bool
	BellOnFiletrans      bool
	BellOnFiletransAccept bool
	NativeColors         bool
	AutologDefault       bool
	HistorySize          int
	NotificationTimeout  int
	ShowTypingSelf       bool
	ShowTypingOther      bool
	ShowWelcomeMsg       bool
	ShowConnectionMsg    bool
	ShowGroupConnectionMsg bool
	AutoSaveFrequency    int
	LineHintGlyph        string
	GroupPartMessage     string
	MultiplexAwayEnabled bool
	MultiplexAwayNote    string
	DownloadPath         string
	ChatlogsPath         string
	AvatarPath           string
	AutorunPath          string
	PasswordEvalPath     string
	ColorBar1, ColorBar2, ColorBar3, ColorBar4 string
}

// KeyBindings holds the ten configurable key bindings (spec §3), stored
// as strings like "ctrl+x", "tab", "page up".
type KeyBindings struct {
	NextTab        string
	PrevTab        string
	ScrollUp       string
	ScrollDown     string
	HalfPageUp     string
	HalfPageDown   string
	PageBottom     string
	TogglePeerlist string
	TogglePaste    string
	ReloadConfig   string
}

// ToxSettings holds network-identity-adjacent preferences not owned by the
// network core itself.
type ToxSettings struct {
	Nospam uint32
}

// AudioSettings mirrors spec §3's per-process audio defaults.
type AudioSettings struct {
	InputDeviceIndex  int
	OutputDeviceIndex int
	VADThreshold      float64
	InputChannels     int
	OutputChannels    int
	PushToTalkDefault bool
}

// SoundSettings gates which events play a sound, independent of the UI
// bell flags above (kept distinct to mirror the source's separate
// "sounds" config section).
type SoundSettings struct {
	Enabled bool
}

// ContactOverride is the per-public-key-keyed settings block for both
// friends and groups/conferences (spec §3: "tab colour, auto-accept,
// autolog, show-connection-msg, alias-set").
type ContactOverride struct {
	TabColor       string
	AutoAccept     bool
	AutoLog        bool
	ShowConnectMsg bool
	Alias          string
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	return Config{
		UI: UISettings{
			Timestamps:         true,
			Timestamp24Hour:    true,
			TimestampFormat:    "%H:%M:%S",
			LogTimestampFormat: "%Y/%m/%d [%H:%M:%S]",
			AlertsEnabled:      true,
			ShowWelcomeMsg:     true,
			ShowConnectionMsg:  true,
			ShowGroupConnectionMsg: true,
			HistorySize:        700,
			NotificationTimeout: 10,
			ShowTypingSelf:     true,
			ShowTypingOther:    true,
			AutoSaveFrequency:  600,
			LineHintGlyph:      "-",
			GroupPartMessage:   "Leaving",
			ColorBar1:          "blue",
			ColorBar2:          "green",
			ColorBar3:          "cyan",
			ColorBar4:          "magenta",
		},
		Keys: KeyBindings{
			NextTab:        "ctrl+down",
			PrevTab:        "ctrl+up",
			ScrollUp:       "page up",
			ScrollDown:     "page down",
			HalfPageUp:     "ctrl+f",
			HalfPageDown:   "ctrl+v",
			PageBottom:     "ctrl+b",
			TogglePeerlist: "ctrl+p",
			TogglePaste:    "ctrl+t",
			ReloadConfig:   "ctrl+r",
		},
		Audio: AudioSettings{
			InputDeviceIndex:  -1,
			OutputDeviceIndex: -1,
			VADThreshold:      40,
			InputChannels:     1,
			OutputChannels:    1,
		},
		Sounds:          SoundSettings{Enabled: true},
		FriendOverrides: make(map[string]ContactOverride),
		GroupOverrides:  make(map[string]ContactOverride),
	}
}

// Path returns the absolute path to the main config file.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "toxterm", "config.ini"), nil
}

// BlockedWordsPath returns the absolute path to the blocked-words list,
// stored alongside the main config (spec §4.9's startup order loads this
// last).
func BlockedWordsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "toxterm", "blocked_words"), nil
}

// Load implements spec §4.9's startup order: defaults, then main config,
// then per-contact overrides, then the blocked-words list. If the file is
// missing or unreadable, the default config is returned — never an error,
// matching the ambient config-loading texture this module follows
// throughout.
func Load() Config {
	path, err := Path()
	if err != nil {
		return Default()
	}
	return LoadFrom(path)
}

// LoadFrom runs the same startup order as Load against an explicit path,
// for the CLI's "force config path" override (spec §6).
func LoadFrom(path string) Config {
	cfg := Default()
	f, err := ini.Load(path)
	if err != nil {
		return cfg
	}
	applySection(f, "ui", &cfg.UI)
	applySection(f, "keys", &cfg.Keys)
	applySection(f, "tox", &cfg.Tox)
	applySection(f, "audio", &cfg.Audio)
	applySection(f, "sounds", &cfg.Sounds)
	loadContactOverrides(f, "pk_", cfg.FriendOverrides)
	loadContactOverrides(f, "grp_", cfg.GroupOverrides)

	if words, err := loadBlockedWords(); err == nil {
		cfg.BlockedWords = words
	}
	return cfg
}

func applySection(f *ini.File, name string, dst interface{}) {
	sec, err := f.GetSection(name)
	if err != nil {
		return
	}
	_ = sec.MapTo(dst)
}

func loadContactOverrides(f *ini.File, prefix string, dst map[string]ContactOverride) {
	for _, sec := range f.Sections() {
		if len(sec.Name()) <= len(prefix) || sec.Name()[:len(prefix)] != prefix {
			continue
		}
		var ov ContactOverride
		sec.MapTo(&ov)
		dst[sec.Name()] = ov
	}
}

func loadBlockedWords() ([]string, error) {
	path, err := BlockedWordsPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var words []string
	cur := ""
	for _, b := range data {
		if b == '\n' {
			if cur != "" {
				words = append(words, cur)
			}
			cur = ""
			continue
		}
		cur += string(b)
	}
	if cur != "" {
		words = append(words, cur)
	}
	return words, nil
}

// Save writes cfg to disk, creating the directory if needed, and persists
// every per-contact override as its own section named by its map key:
// pk_<64hex> for friends, grp_<64hex> (see GroupContactKey) for groups.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	f := ini.Empty()
	if err := reflectInto(f, "ui", cfg.UI); err != nil {
		return err
	}
	if err := reflectInto(f, "keys", cfg.Keys); err != nil {
		return err
	}
	if err := reflectInto(f, "tox", cfg.Tox); err != nil {
		return err
	}
	if err := reflectInto(f, "audio", cfg.Audio); err != nil {
		return err
	}
	if err := reflectInto(f, "sounds", cfg.Sounds); err != nil {
		return err
	}
	for key, ov := range cfg.FriendOverrides {
		if err := reflectInto(f, key, ov); err != nil {
			return err
		}
	}
	for key, ov := range cfg.GroupOverrides {
		if err := reflectInto(f, key, ov); err != nil {
			return err
		}
	}

	return f.SaveTo(path)
}

func reflectInto(f *ini.File, name string, v interface{}) error {
	sec, err := f.NewSection(name)
	if err != nil {
		return err
	}
	return sec.ReflectFrom(v)
}

// ContactKey formats a 64-hex lowercase public key into its pk_ section
// name form, per spec §6.
func ContactKey(hexPubKey string) string {
	return fmt.Sprintf("pk_%s", hexPubKey)
}

// GroupContactKey formats a 64-hex lowercase chat id into its grp_ section
// name form — deliberately a different prefix than ContactKey's pk_, since
// FriendOverrides and GroupOverrides are distinct maps saved side by side
// and need distinguishable section names to round-trip through LoadFrom.
func GroupContactKey(hexChatID string) string {
	return fmt.Sprintf("grp_%s", hexChatID)
}
