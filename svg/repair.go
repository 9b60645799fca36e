package svg

import "strings"

const fontFamilyAttr = `font-family="`

// RepairFontFamily rewrites quotes nested inside font-family attribute values
// as single quotes. Some generators emit values like
// font-family="Inter, "Segoe UI", sans-serif" which are not valid XML.
// A quote closes the value only when followed by a space, '/', '>' or the
// end of input.
func RepairFontFamily(svg string) string {
	if !strings.Contains(svg, fontFamilyAttr) {
		return svg
	}
	var sb strings.Builder
	sb.Grow(len(svg))
	for {
		i := strings.Index(svg, fontFamilyAttr)
		if i < 0 {
			sb.WriteString(svg)
			return sb.String()
		}
		sb.WriteString(svg[:i+len(fontFamilyAttr)])
		svg = svg[i+len(fontFamilyAttr):]
		j := 0
		for ; j < len(svg); j++ {
			if svg[j] != '"' {
				sb.WriteByte(svg[j])
				continue
			}
			if j+1 == len(svg) || strings.IndexByte(" />", svg[j+1]) >= 0 {
				sb.WriteByte('"')
				j++
				break
			}
			sb.WriteByte('\'')
		}
		svg = svg[j:]
	}
}
