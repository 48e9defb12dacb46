package reportbro

// Border describes which table borders are drawn.
type Border int

const (
	BorderGrid Border = iota + 1
	BorderFrameRow
	BorderFrame
	BorderRow
	BorderNone
)

func parseBorder(s string) Border {
	switch s {
	case "grid":
		return BorderGrid
	case "frame_row":
		return BorderFrameRow
	case "frame":
		return BorderFrame
	case "row":
		return BorderRow
	}
	return BorderNone
}

// RenderElementType classifies a render slice of an element which may be
// split across several pages. Borders at the top are only drawn for the
// first slice, borders at the bottom only for the last.
type RenderElementType int

const (
	RenderElementNone RenderElementType = iota
	RenderElementComplete
	RenderElementBetween
	RenderElementFirst
	RenderElementLast
)

// docElementType identifies the element kind in the template definition.
type docElementType string

const (
	elementTypeText      docElementType = "text"
	elementTypeImage     docElementType = "image"
	elementTypeLine      docElementType = "line"
	elementTypePageBreak docElementType = "page_break"
	elementTypeTable     docElementType = "table"
	elementTypeBarCode   docElementType = "bar_code"
	elementTypeFrame     docElementType = "frame"
	elementTypeSection   docElementType = "section"
)

// ParameterType is the declared type of a report parameter.
type ParameterType int

const (
	ParameterTypeNone ParameterType = iota
	ParameterTypeString
	ParameterTypeNumber
	ParameterTypeBoolean
	ParameterTypeDate
	ParameterTypeArray
	ParameterTypeSimpleArray
	ParameterTypeMap
	ParameterTypeSum
	ParameterTypeAverage
	ParameterTypeImage
)

func parseParameterType(s string) ParameterType {
	switch s {
	case "string":
		return ParameterTypeString
	case "rich_text":
		// rich text content is not supported, the value is used as plain text
		return ParameterTypeString
	case "number":
		return ParameterTypeNumber
	case "boolean":
		return ParameterTypeBoolean
	case "date":
		return ParameterTypeDate
	case "array":
		return ParameterTypeArray
	case "simple_array":
		return ParameterTypeSimpleArray
	case "map":
		return ParameterTypeMap
	case "sum":
		return ParameterTypeSum
	case "average":
		return ParameterTypeAverage
	case "image":
		return ParameterTypeImage
	}
	return ParameterTypeNone
}

// BandType distinguishes the header, content and footer bands of the
// document and of table/section row patterns.
type BandType int

const (
	BandHeader BandType = iota + 1
	BandContent
	BandFooter
)

// PageFormat is the page size of the generated document.
type PageFormat int

const (
	PageFormatA4 PageFormat = iota + 1
	PageFormatA5
	PageFormatLetter
	PageFormatUserDefined
)

func parsePageFormat(s string) PageFormat {
	switch s {
	case "a4":
		return PageFormatA4
	case "a5":
		return PageFormatA5
	case "letter":
		return PageFormatLetter
	}
	return PageFormatUserDefined
}

// Unit of user defined page dimensions.
type Unit int

const (
	UnitPoint Unit = iota + 1
	UnitMillimeter
	UnitInch
)

func parseUnit(s string) Unit {
	switch s {
	case "mm":
		return UnitMillimeter
	case "inch":
		return UnitInch
	}
	return UnitPoint
}

// Orientation of the generated document.
type Orientation int

const (
	OrientationPortrait Orientation = iota + 1
	OrientationLandscape
)

func parseOrientation(s string) Orientation {
	if s == "landscape" {
		return OrientationLandscape
	}
	return OrientationPortrait
}

// BandDisplay controls on which pages the document header/footer band shows.
type BandDisplay int

const (
	BandDisplayNever BandDisplay = iota + 1
	BandDisplayAlways
	BandDisplayNotOnFirstPage
)

func parseBandDisplay(s string) BandDisplay {
	switch s {
	case "always":
		return BandDisplayAlways
	case "notOnFirstPage":
		return BandDisplayNotOnFirstPage
	}
	return BandDisplayNever
}

// HorizontalAlignment of text, images and barcodes.
type HorizontalAlignment int

const (
	HAlignLeft HorizontalAlignment = iota + 1
	HAlignCenter
	HAlignRight
	HAlignJustify
)

func parseHorizontalAlignment(s string) HorizontalAlignment {
	switch s {
	case "center":
		return HAlignCenter
	case "right":
		return HAlignRight
	case "justify":
		return HAlignJustify
	}
	return HAlignLeft
}

// VerticalAlignment of text, images and barcodes.
type VerticalAlignment int

const (
	VAlignTop VerticalAlignment = iota + 1
	VAlignMiddle
	VAlignBottom
)

func parseVerticalAlignment(s string) VerticalAlignment {
	switch s {
	case "middle":
		return VAlignMiddle
	case "bottom":
		return VAlignBottom
	}
	return VAlignTop
}

// SpreadsheetType forces a typed cell when content is exported to a
// spreadsheet, e.g. so a formatted number string becomes a numeric cell.
type SpreadsheetType int

const (
	SpreadsheetTypeDefault SpreadsheetType = iota
	SpreadsheetTypeNumber
	SpreadsheetTypeDate
)

func parseSpreadsheetType(s string) SpreadsheetType {
	switch s {
	case "number":
		return SpreadsheetTypeNumber
	case "date":
		return SpreadsheetTypeDate
	}
	return SpreadsheetTypeDefault
}
