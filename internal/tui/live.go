package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/san-kum/edmd/internal/particle"
)

const (
	canvasWidth  = 70
	canvasHeight = 20
	clearScreen  = "\033[2J\033[H"
	hideCursor   = "\033[?25l"
	showCursor   = "\033[?25h"
)

// LiveRenderer projects the particle set's XY plane onto a fixed
// ASCII canvas and reprints it at most frameRate times per second,
// the same throttled full-repaint idiom the teacher used for its
// phase-space renderers, now drawing a scatter of particles instead
// of a single generalized-coordinate trajectory.
type LiveRenderer struct {
	frameRate int
	lastFrame time.Time
	canvas    [][]rune
	boxX, boxY float64
}

func NewLiveRenderer(frameRate int, boxX, boxY float64) *LiveRenderer {
	canvas := make([][]rune, canvasHeight)
	for i := range canvas {
		canvas[i] = make([]rune, canvasWidth)
	}
	if boxX <= 0 {
		boxX = 1
	}
	if boxY <= 0 {
		boxY = 1
	}
	return &LiveRenderer{frameRate: frameRate, canvas: canvas, boxX: boxX, boxY: boxY}
}

// OnStep redraws the canvas if enough wall-clock time has passed since
// the last frame; called from a Simulation's OnEvent hook.
func (r *LiveRenderer) OnStep(now float64, steps int, particles []*particle.Particle) {
	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	r.clear()
	for _, p := range particles {
		x := int(p.Pos.X / r.boxX * float64(canvasWidth-1))
		y := int(p.Pos.Y / r.boxY * float64(canvasHeight-1))
		r.set(x, y, glyph(p.Vel.Norm()))
	}
	r.render(now, steps)
}

func glyph(speed float64) rune {
	switch {
	case speed < 0.5:
		return '.'
	case speed < 1.5:
		return 'o'
	default:
		return 'O'
	}
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < canvasWidth && y >= 0 && y < canvasHeight {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) render(t float64, steps int) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  edmd  t=%.4f  steps=%d\n", t, steps))
	b.WriteString("  " + strings.Repeat("-", canvasWidth) + "\n")
	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	b.WriteString("  " + strings.Repeat("-", canvasWidth) + "\n")
	fmt.Print(b.String())
}

func (r *LiveRenderer) Start() { fmt.Print(hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Print(showCursor) }
