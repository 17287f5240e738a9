package demo

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	commentwrap "github.com/themissingcow/nvim-comment-wrap"
	"github.com/themissingcow/nvim-comment-wrap/event"
	"github.com/themissingcow/nvim-comment-wrap/host"
	"github.com/themissingcow/nvim-comment-wrap/syntax"
)

const bufID = "demo.go"

const sampleText = `package demo

// Move the cursor into this comment block and watch the
// status bar switch to the comment wrap options. Move it
// back out and the original options come right back.
func Sample() int {
	total := 0 // inline comments count too
	for i := 0; i < 10; i++ {
		total += i
	}
	return total
}`

// Run drives the interactive demo until the user quits with q or Esc.
// Arrow keys (and hjkl) move the cursor; F2 toggles paragraph-preserve.
func Run(user map[string]any, opts ...commentwrap.Option) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	defer screen.Fini()

	prov := NewProvider("//")
	prov.SetText(bufID, sampleText)

	h := host.NewMemoryHost()
	h.AddBuffer(bufID, "go", host.BufferOptions{
		TextWidth:           80,
		FormatFlags:         "cql",
		CommentContinuation: "://",
	})

	eng, err := commentwrap.New(h, prov, user, opts...)
	if err != nil {
		return err
	}
	eng.Enable()
	defer eng.Close()

	lines := prov.Lines(bufID)
	cursor := host.Cursor{Line: 1, Col: 0}

	for {
		draw(screen, lines, cursor, h, eng)

		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventInterrupt:
			// Redraw after the debounced evaluation had its chance.
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Rune() == 'q':
				return nil
			case ev.Key() == tcell.KeyF2:
				eng.TogglePreserveWrap()
			default:
				next, moved := moveCursor(ev, cursor, lines)
				if !moved {
					continue
				}
				cursor = next
				h.SetCursor(bufID, cursor)
				h.Events().Publish(event.TopicCursorMoved, event.CursorMoved{
					BufferID: bufID,
					Position: syntax.Point{Row: cursor.Line - 1, Column: cursor.Col},
				})
				time.AfterFunc(150*time.Millisecond, func() {
					_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
				})
			}
		}
	}
}

func moveCursor(ev *tcell.EventKey, cur host.Cursor, lines []string) (host.Cursor, bool) {
	next := cur
	switch {
	case ev.Key() == tcell.KeyUp || ev.Rune() == 'k':
		next.Line--
	case ev.Key() == tcell.KeyDown || ev.Rune() == 'j':
		next.Line++
	case ev.Key() == tcell.KeyLeft || ev.Rune() == 'h':
		next.Col--
	case ev.Key() == tcell.KeyRight || ev.Rune() == 'l':
		next.Col++
	default:
		return cur, false
	}

	if next.Line < 1 {
		next.Line = 1
	}
	if next.Line > len(lines) {
		next.Line = len(lines)
	}
	if next.Col < 0 {
		next.Col = 0
	}
	if max := len(lines[next.Line-1]); next.Col > max {
		next.Col = max
	}
	return next, next != cur
}

func draw(screen tcell.Screen, lines []string, cursor host.Cursor, h *host.MemoryHost, eng *commentwrap.Engine) {
	screen.Clear()
	width, height := screen.Size()

	text := tcell.StyleDefault
	comment := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	for y, line := range lines {
		if y >= height-1 {
			break
		}
		style := text
		for x, r := range line {
			if x >= width {
				break
			}
			if style == text && x+2 <= len(line) && line[x] == '/' && line[x+1] == '/' {
				style = comment
			}
			screen.SetContent(x, y, r, nil, style)
		}
	}

	drawStatusBar(screen, width, height-1, h, eng)
	screen.ShowCursor(cursor.Col, cursor.Line-1)
	screen.Show()
}

func drawStatusBar(screen tcell.Screen, width, y int, h *host.MemoryHost, eng *commentwrap.Engine) {
	opts, _ := h.Options(bufID)
	left := fmt.Sprintf(" %s  tw=%d fo=%s", bufID, opts.TextWidth, opts.FormatFlags)
	if s := eng.Status(); s != "" {
		left += "  " + s
	}
	right := "arrows/hjkl move · F2 toggle wrap · q quit "

	bar := tcell.StyleDefault.Reverse(true)
	for x := 0; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, bar)
	}
	for x, r := range left {
		if x >= width {
			break
		}
		screen.SetContent(x, y, r, nil, bar)
	}
	start := width - len([]rune(right))
	if start < len(left)+2 {
		return
	}
	for i, r := range []rune(right) {
		screen.SetContent(start+i, y, r, nil, bar)
	}
}
