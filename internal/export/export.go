// Package export writes single frames as standalone documents.
package export

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/san-kum/stickycaps/internal/caps"
	"github.com/san-kum/stickycaps/internal/stage"
)

// glyphAspect approximates average advance width as a fraction of font size.
const glyphAspect = 0.6

// FrameToHTML returns a complete HTML document showing f on its configured
// background, font and size.
func FrameToHTML(f stage.Frame) string {
	s := f.Settings
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>stickycaps #%d</title>
</head>
<body style="margin: 0">
<div style="display: flex; align-items: center; justify-content: center; min-height: 100vh; white-space: pre-wrap; background-color: %s; font-size: %dpx; font-family: %s">`,
		f.Seq, attr(string(s.Background)), s.FontSize, attr(s.FontFamily.CSS())))

	sb.WriteString(f.Output.HTML())
	sb.WriteString("</div>\n</body>\n</html>\n")
	return sb.String()
}

// FrameToSVG returns an SVG image of f. Width is estimated from the rune
// count since no font metrics are available.
func FrameToSVG(f stage.Frame) string {
	s := f.Settings
	size := float64(s.FontSize)
	n := utf8.RuneCountInString(f.Output.Text())

	width := float64(n)*size*glyphAspect + size
	height := size * 1.6

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<text x="50%%" y="50%%" dominant-baseline="middle" text-anchor="middle" font-size="%d" font-family="%s" xml:space="preserve">`,
		width, height, width, height, attr(string(s.Background)), s.FontSize, attr(s.FontFamily.CSS())))

	for _, run := range f.Output.Runs {
		text := html.EscapeString(run.Text)
		// Caseless runs take the lowercase colour; SVG has no inherited text colour.
		fill := f.Output.Lowercase
		if run.Role == caps.RoleUpper {
			fill = f.Output.Uppercase
		}
		sb.WriteString(fmt.Sprintf(`<tspan fill="%s">%s</tspan>`, attr(string(fill)), text))
	}

	sb.WriteString("</text>\n</svg>\n")
	return sb.String()
}

func attr(s string) string { return html.EscapeString(s) }
