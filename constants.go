package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeConfirm
)

type ConfirmAction int

const (
	ConfirmNone ConfirmAction = iota
	ConfirmDeleteConnection
)

type ExportFormat int

const (
	FormatPNG ExportFormat = iota
	FormatTXT
	FormatMermaid
)

// Canvas coordinate units. One unit is one terminal column horizontally and
// half a row vertically at zoom 1.0.
const (
	NodeWidth    = 28.0
	NodeHeight   = 6.0
	GridSpacingX = 36.0
	GridSpacingY = 10.0
)

const (
	minZoom  = 0.3
	maxZoom  = 3.0
	zoomStep = 0.1

	viewportMargin = 10.0
	moveStep       = 2.0
	panStep        = 4.0

	anchorEpsilon   = 0.001
	arrowHeadLength = 2.0
	arrowHeadSpread = 0.5 // radians
	arrowHeadRatio  = 0.3
	markerSize      = 1.0
)
