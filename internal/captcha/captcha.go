// Package captcha generates scribbled SVG challenges and tracks them
// in an expiring in-memory store.
package captcha

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const (
	// alphabet omits glyphs that are easy to confuse on a noisy image
	// (I/l/1, O/o/0).
	alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

	codeLength = 4

	svgWidth  = 120
	svgHeight = 40
	fontSize  = 24

	distractorLines = 5
	distractorDots  = 30
)

// NewCode returns a fresh challenge code.
func NewCode() string {
	var b strings.Builder
	for range codeLength {
		b.WriteByte(alphabet[rand.IntN(len(alphabet))])
	}
	return b.String()
}

// newID returns an opaque challenge id: base36 millisecond timestamp
// followed by a base36 random suffix.
func newID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + randBase36(11)
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randBase36(n int) string {
	var b strings.Builder
	for range n {
		b.WriteByte(base36[rand.IntN(len(base36))])
	}
	return b.String()
}

// Render draws the code as an SVG with randomized distractor lines, dots,
// and per-character rotation and color jitter.
func Render(code string) []byte {
	var svg strings.Builder
	fmt.Fprintf(&svg, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, svgWidth, svgHeight)
	fmt.Fprintf(&svg, `<rect width="%d" height="%d" fill="#f0f0f0"/>`, svgWidth, svgHeight)

	for range distractorLines {
		fmt.Fprintf(&svg, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`,
			rand.Float64()*svgWidth, rand.Float64()*svgHeight,
			rand.Float64()*svgWidth, rand.Float64()*svgHeight,
			jitterColor(200))
	}

	for range distractorDots {
		fmt.Fprintf(&svg, `<circle cx="%.2f" cy="%.2f" r="1" fill="%s"/>`,
			rand.Float64()*svgWidth, rand.Float64()*svgHeight, jitterColor(200))
	}

	charWidth := float64(svgWidth) / float64(len(code)+1)
	for i, c := range code {
		x := charWidth * float64(i+1)
		y := float64(svgHeight)/2 + float64(fontSize)/3
		rotation := (rand.Float64() - 0.5) * 30
		fmt.Fprintf(&svg, `<text x="%.2f" y="%.2f" font-size="%d" font-family="Arial" font-weight="bold" fill="%s" transform="rotate(%.2f, %.2f, %.2f)">%c</text>`,
			x, y, fontSize, jitterColor(100), rotation, x, y, c)
	}

	svg.WriteString(`</svg>`)
	return []byte(svg.String())
}

// jitterColor returns a random dark-ish rgb() value with each channel
// below max.
func jitterColor(max int) string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rand.IntN(max), rand.IntN(max), rand.IntN(max))
}
