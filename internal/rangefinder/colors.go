package rangefinder

// palette is the fixed Tableau base set with blue and orange moved to the
// end of the cycle, so the low-contrast defaults come up last.
var palette = []string{
	"#2ca02c", // green
	"#d62728", // red
	"#9467bd", // purple
	"#8c564b", // brown
	"#e377c2", // pink
	"#7f7f7f", // gray
	"#bcbd22", // olive
	"#17becf", // cyan
	"#1f77b4", // blue
	"#ff7f0e", // orange
}

// Colors returns n display colors, cycling the base palette when more
// colors than the palette size are requested.
func Colors(n int) []string {
	if n <= 0 {
		return nil
	}
	if n <= len(palette) {
		return append([]string(nil), palette[:n]...)
	}

	out := make([]string, 0, n)
	times, extra := n/len(palette), n%len(palette)
	for i := 0; i < times; i++ {
		out = append(out, palette...)
	}
	return append(out, palette[:extra]...)
}
