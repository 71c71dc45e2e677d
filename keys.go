package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	selectDir  key.Binding
	move       key.Binding
	pan        key.Binding
	next       key.Binding
	prev       key.Binding
	zoomIn     key.Binding
	zoomOut    key.Binding
	connect    key.Binding
	unlink     key.Binding
	importClip key.Binding
	copyChart  key.Binding
	exportPNG  key.Binding
	exportTXT  key.Binding
	confirm    key.Binding
	cancel     key.Binding
	backspace  key.Binding
	yes        key.Binding
	no         key.Binding
	toggleHelp key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		selectDir: key.NewBinding(
			key.WithKeys("h", "j", "k", "l"),
			key.WithHelp("hjkl", "select"),
		),
		move: key.NewBinding(
			key.WithKeys("H", "J", "K", "L"),
			key.WithHelp("HJKL", "move task"),
		),
		pan: key.NewBinding(
			key.WithKeys("left", "down", "up", "right"),
			key.WithHelp("←↓↑→", "pan"),
		),
		next: key.NewBinding(
			key.WithKeys("tab", "n"),
			key.WithHelp("tab", "next task"),
		),
		prev: key.NewBinding(
			key.WithKeys("shift+tab", "N"),
			key.WithHelp("shift+tab", "prev task"),
		),
		zoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		zoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "zoom out"),
		),
		connect: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "connect"),
		),
		unlink: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete connection"),
		),
		importClip: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "import flowchart"),
		),
		copyChart: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy as mermaid"),
		),
		exportPNG: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "export png"),
		),
		exportTXT: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "export txt"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		backspace: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("backspace", "delete char"),
		),
		yes: key.NewBinding(
			key.WithKeys("y", "Y", "enter"),
			key.WithHelp("y", "yes"),
		),
		no: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "no"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.selectDir,
		k.move,
		k.connect,
		k.unlink,
		k.importClip,
		k.toggleHelp,
		k.quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.selectDir, k.next, k.prev, k.move},
		{k.pan, k.zoomIn, k.zoomOut},
		{k.connect, k.unlink, k.confirm, k.cancel},
		{k.importClip, k.copyChart, k.exportPNG, k.exportTXT},
		{k.toggleHelp, k.quit},
	}
}

// connectHelp is the help shown while a connection is being drawn.
type connectHelp struct {
	keys      keyMap
	labelling bool
}

func (c connectHelp) ShortHelp() []key.Binding {
	if c.labelling {
		return []key.Binding{c.keys.confirm, c.keys.backspace, c.keys.cancel}
	}
	return []key.Binding{c.keys.next, c.keys.prev, c.keys.selectDir, c.keys.confirm, c.keys.cancel}
}

func (c connectHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{c.ShortHelp()}
}
