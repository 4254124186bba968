package scan

import "path/filepath"

// Dispatch selects how previews are delivered for a host application.
type Dispatch int

const (
	// DispatchInline renders directly into the application's output.
	DispatchInline Dispatch = iota
	// DispatchSeparatePane defers to a separate pane or window.
	DispatchSeparatePane
	// DispatchOverlay renders a floating overlay.
	DispatchOverlay
	// DispatchExternal hands off to an external viewer.
	DispatchExternal
	// DispatchNone detects and logs only; rendering is suppressed.
	DispatchNone
)

// Kind selects the scanning strategy for a host application.
type Kind int

const (
	// KindGeneric applies the standard path/URL/data-URI patterns.
	KindGeneric Kind = iota
	// KindEditor scans status lines and command feedback like generic
	// output.
	KindEditor
	// KindFileManager scans the whole line for bare filenames without
	// requiring path separators.
	KindFileManager
	// KindBrowser additionally surfaces image URLs.
	KindBrowser
)

// Profile describes a known full-screen terminal application. The table
// is static and consulted read-only; a profile governs dispatch and
// pattern width, not detection accuracy.
type Profile struct {
	Name           string
	SupportsImages bool
	Dispatch       Dispatch
	Kind           Kind
}

var profiles = map[string]Profile{
	// Editors.
	"vim":  {Name: "Vim", SupportsImages: false, Dispatch: DispatchExternal, Kind: KindEditor},
	"nvim": {Name: "Neovim", SupportsImages: true, Dispatch: DispatchOverlay, Kind: KindEditor},

	// File managers.
	"ranger": {Name: "Ranger", SupportsImages: true, Dispatch: DispatchSeparatePane, Kind: KindFileManager},
	"lf":     {Name: "LF", SupportsImages: true, Dispatch: DispatchSeparatePane, Kind: KindFileManager},
	"nnn":    {Name: "NNN", SupportsImages: true, Dispatch: DispatchExternal, Kind: KindFileManager},

	// Browsers.
	"w3m":  {Name: "w3m", SupportsImages: true, Dispatch: DispatchInline, Kind: KindBrowser},
	"lynx": {Name: "Lynx", SupportsImages: false, Dispatch: DispatchExternal, Kind: KindBrowser},

	// Multiplexers.
	"tmux":   {Name: "Tmux", SupportsImages: true, Dispatch: DispatchSeparatePane, Kind: KindGeneric},
	"screen": {Name: "Screen", SupportsImages: false, Dispatch: DispatchExternal, Kind: KindGeneric},

	// Git TUIs.
	"tig":   {Name: "Tig", SupportsImages: false, Dispatch: DispatchExternal, Kind: KindGeneric},
	"gitui": {Name: "GitUI", SupportsImages: false, Dispatch: DispatchExternal, Kind: KindGeneric},

	// System monitors: detect for logging only.
	"htop": {Name: "htop", SupportsImages: false, Dispatch: DispatchNone, Kind: KindGeneric},
	"btop": {Name: "btop", SupportsImages: false, Dispatch: DispatchNone, Kind: KindGeneric},
}

// LookupProfile returns the profile for the invoked binary, keyed by
// basename, or nil for commands with no known profile.
func LookupProfile(command string) *Profile {
	name := filepath.Base(command)
	if p, ok := profiles[name]; ok {
		return &p
	}
	return nil
}
