package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/piee-kun/flux-screensavers/internal/gpu"
	"github.com/piee-kun/flux-screensavers/internal/render"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a grid of braille cells with an optional color per cell.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]string
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Colors: make([][]string, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]string, w)
	}
	c.Clear()
	return c
}

// Set sets a dot at (x, y) in sub-cell coordinates. The canvas size in dots
// is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = ""
		}
	}
}

// Paint thresholds a framebuffer into dots, one dot per pixel, and colors
// each cell with the mean color of its lit pixels.
func (c *Canvas) Paint(fb *gpu.Texture, threshold float64) {
	c.Clear()
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			var r, g, b, n int
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					x, y := col*2+dx, row*4+dy
					if render.Luma(fb, x, y) <= threshold {
						continue
					}
					c.Set(x, y)
					i := (y*fb.Width + x) * 4
					r += int(fb.U8[i])
					g += int(fb.U8[i+1])
					b += int(fb.U8[i+2])
					n++
				}
			}
			if n > 0 {
				c.Colors[row][col] = hexColor(r/n, g/n, b/n)
			}
		}
	}
}

// Lit returns the number of set dots.
func (c *Canvas) Lit() int {
	n := 0
	for _, row := range c.Grid {
		for _, cell := range row {
			for bits := cell - blank; bits != 0; bits &= bits - 1 {
				n++
			}
		}
	}
	return n
}

func (c *Canvas) String() string {
	styles := make(map[string]lipgloss.Style)
	var b strings.Builder
	for i, row := range c.Grid {
		for j, cell := range row {
			color := c.Colors[i][j]
			if color == "" {
				b.WriteRune(cell)
				continue
			}
			st, ok := styles[color]
			if !ok {
				st = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
				styles[color] = st
			}
			b.WriteString(st.Render(string(cell)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
