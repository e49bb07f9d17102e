package authpdf

// mmPerInch converts millimeters to the inches Chrome's print API expects.
const mmPerInch = 25.4

// A2 paper and margins in millimeters.
const (
	a2ShortEdgeMM = 420
	a2LongEdgeMM  = 594
	pageMarginMM  = 10
)

// PrintSettings are the page parameters passed to Chrome's PDF printer.
// Dimensions are in inches. Width and height describe the portrait sheet;
// Landscape rotates it.
type PrintSettings struct {
	PaperWidth      float64
	PaperHeight     float64
	Landscape       bool
	PrintBackground bool
	MarginTop       float64
	MarginRight     float64
	MarginBottom    float64
	MarginLeft      float64
}

// A2PrintSettings returns the fixed export layout: A2 landscape, printed
// backgrounds, 10mm margins on every side.
func A2PrintSettings() PrintSettings {
	margin := mmToInches(pageMarginMM)
	return PrintSettings{
		PaperWidth:      mmToInches(a2ShortEdgeMM),
		PaperHeight:     mmToInches(a2LongEdgeMM),
		Landscape:       true,
		PrintBackground: true,
		MarginTop:       margin,
		MarginRight:     margin,
		MarginBottom:    margin,
		MarginLeft:      margin,
	}
}

func mmToInches(mm float64) float64 {
	return mm / mmPerInch
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
