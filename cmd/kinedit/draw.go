package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/patchclamp/kinedit/pkg/editor"
	"github.com/patchclamp/kinedit/pkg/kinetic"
)

// Styles
var (
	styleDefault   = tcell.StyleDefault
	styleMenu      = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleMenuSel   = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleState     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleStateOpen = tcell.StyleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleStateSel  = tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)
	styleTrans     = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleTransSel  = tcell.StyleDefault.Background(tcell.ColorTeal).Foreground(tcell.ColorBlack)
	styleRate      = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleSidebar   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSidebarH  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo   = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError  = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleHelp      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleInput     = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleBorder    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleDragging  = tcell.StyleDefault.Background(tcell.ColorPurple).Foreground(tcell.ColorWhite)
	styleIssue     = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

const sidebarWidth = 32

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()

	if len(ed.store.Model().States) > 0 {
		ed.drawCanvas(w, h)
		ed.drawSidebar(w, h)
	}

	switch ed.ui {
	case UIMenu:
		ed.drawMenuOverlay(w, h)
	case UIInput:
		ed.drawInputBox(w, h)
	case UIHelp:
		ed.drawHelpOverlay(w, h)
	case UIIssues:
		ed.drawIssuesOverlay(w, h)
	}

	ed.drawStatusBar(w, h)
}

// cellOf converts a canvas coordinate to a terminal cell.
func cellOf(x, y float64) (int, int) {
	return int(x) / cellW, int(y) / cellH
}

func (ed *Editor) drawCanvas(w, h int) {
	canvasW := w - sidebarWidth
	canvasH := h - 2

	for y := 0; y < canvasH; y++ {
		ed.screen.SetContent(canvasW, y, '│', nil, styleBorder)
	}

	// Pair lines first so state glyphs render on top
	for _, l := range ed.store.Pairing() {
		lineStyle := styleTrans
		if ed.store.LineSelected(l) {
			lineStyle = styleTransSel
		}

		x1, y1 := cellOf(l.X1, l.Y1)
		x2, y2 := cellOf(l.X2, l.Y2)
		ed.drawArc(x1, y1, x2, y2, canvasW, canvasH, lineStyle)

		// Rate labels sit at the offset anchors, forward above the
		// line and backward below
		if l.Forward != nil && l.Forward.RateEquationID != "" {
			lx, ly := cellOf(l.TopX, l.TopY)
			ed.drawLabel(lx, ly, l.Forward.RateEquationID, canvasW, canvasH, styleRate)
		}
		if l.Backward != nil && l.Backward.RateEquationID != "" {
			lx, ly := cellOf(l.BottomX, l.BottomY)
			ed.drawLabel(lx, ly, l.Backward.RateEquationID, canvasW, canvasH, styleRate)
		}
	}

	m := ed.store.Model()
	for _, s := range m.States {
		_, cy := cellOf(s.CenterX(), s.CenterY())
		x, _ := cellOf(s.X, s.Y)

		gate := "○"
		style := styleState
		if s.GateStatus == kinetic.GateOpen {
			gate = "●"
			style = styleStateOpen
		}
		if s.ID == ed.store.SelectedState() {
			style = styleStateSel
		}
		if s.ID == ed.ctrl.Dragging() {
			style = styleDragging
		}
		if ed.ctrl.Mode() == editor.ModeAwaitTransitionEnd && s.ID == ed.ctrl.TransitionStart() {
			style = styleStateSel
		}

		label := fmt.Sprintf("%s[%s]", gate, s.DisplayName())
		if x < 0 || x >= canvasW-2 || cy < 0 || cy >= canvasH {
			continue
		}
		ed.drawString(x, cy, label, style)
	}
}

func (ed *Editor) drawArc(x1, y1, x2, y2, canvasW, canvasH int, style tcell.Style) {
	if y1 == y2 {
		minX, maxX := x1, x2
		if minX > maxX {
			minX, maxX = maxX, minX
		}
		for x := minX + 1; x < maxX; x++ {
			if x >= 0 && x < canvasW && y1 >= 0 && y1 < canvasH {
				ed.screen.SetContent(x, y1, '─', nil, style)
			}
		}
		return
	}
	if x1 == x2 {
		minY, maxY := y1, y2
		if minY > maxY {
			minY, maxY = maxY, minY
		}
		for y := minY + 1; y < maxY; y++ {
			if x1 >= 0 && x1 < canvasW && y >= 0 && y < canvasH {
				ed.screen.SetContent(x1, y, '│', nil, style)
			}
		}
		return
	}

	// Diagonal: horizontal run at the source row, then vertical down to
	// the target
	cornerX, cornerY := x2, y1
	minX, maxX := x1, cornerX
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	for x := minX + 1; x < maxX; x++ {
		if x >= 0 && x < canvasW && cornerY >= 0 && cornerY < canvasH {
			ed.screen.SetContent(x, cornerY, '─', nil, style)
		}
	}
	if cornerX >= 0 && cornerX < canvasW && cornerY >= 0 && cornerY < canvasH {
		var corner rune
		switch {
		case x2 > x1 && y2 > y1:
			corner = '╮'
		case x2 > x1 && y2 < y1:
			corner = '╯'
		case x2 < x1 && y2 > y1:
			corner = '╭'
		default:
			corner = '╰'
		}
		ed.screen.SetContent(cornerX, cornerY, corner, nil, style)
	}
	minY, maxY := cornerY, y2
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	for y := minY + 1; y < maxY; y++ {
		if cornerX >= 0 && cornerX < canvasW && y >= 0 && y < canvasH {
			ed.screen.SetContent(cornerX, y, '│', nil, style)
		}
	}
}

func (ed *Editor) drawLabel(x, y int, label string, canvasW, canvasH int, style tcell.Style) {
	if y < 0 || y >= canvasH {
		return
	}
	for i, r := range label {
		if x+i >= 0 && x+i < canvasW {
			ed.screen.SetContent(x+i, y, r, nil, style)
		}
	}
}

func (ed *Editor) drawSidebar(w, h int) {
	x := w - sidebarWidth + 2
	y := 0
	m := ed.store.Model()

	title := m.ModelName
	if title == "" {
		title = "untitled model"
	}
	ed.drawString(x, y, truncate(title, sidebarWidth-4), styleSidebarH)
	y += 2

	ed.drawString(x, y, "States:", styleSidebarH)
	y++
	for _, s := range m.States {
		gate := "closed"
		if s.GateStatus == kinetic.GateOpen {
			gate = "open"
		}
		style := styleSidebar
		if s.ID == ed.store.SelectedState() {
			style = styleMenuSel
		}
		line := fmt.Sprintf("  %s (%s)", s.DisplayName(), gate)
		ed.drawString(x, y, truncate(line, sidebarWidth-4), style)
		y++
		if y >= h-3 {
			return
		}
	}
	y++

	ed.drawString(x, y, "Transitions:", styleSidebarH)
	y++
	for _, t := range m.Transitions {
		from := m.StateByID(t.From)
		to := m.StateByID(t.To)
		if from == nil || to == nil {
			continue
		}
		rate := t.RateEquationID
		if rate == "" {
			rate = "?"
		}
		style := styleSidebar
		if t.ID == ed.store.SelectedTransition() {
			style = styleMenuSel
		}
		line := fmt.Sprintf("  %s --%s--> %s", from.DisplayName(), rate, to.DisplayName())
		ed.drawString(x, y, truncate(line, sidebarWidth-4), style)
		y++
		if y >= h-3 {
			ed.drawString(x, y, "  ...", styleSidebar)
			return
		}
	}
	y++

	if len(m.RateFunctions) > 0 && y < h-4 {
		ed.drawString(x, y, "Rate functions:", styleSidebarH)
		y++
		for _, rf := range m.RateFunctions {
			line := fmt.Sprintf("  %s = %s", rf.ID, rf.Equation)
			ed.drawString(x, y, truncate(line, sidebarWidth-4), styleSidebar)
			y++
			if y >= h-3 {
				return
			}
		}
	}
}

func (ed *Editor) drawMenuOverlay(w, h int) {
	menuWidth := 40
	menuHeight := len(ed.menuItems) + 4

	startX := (w - menuWidth) / 2
	startY := (h - menuHeight) / 2
	if startX < 0 {
		startX = 0
	}
	if startY < 0 {
		startY = 0
	}

	ed.drawTitledBox(startX, startY, menuWidth, menuHeight, "kinedit")

	for i, item := range ed.menuItems {
		style := styleMenu
		if i == ed.menuSelected {
			style = styleMenuSel
		}
		paddedItem := fmt.Sprintf(" %-*s", menuWidth-3, item)
		ed.drawString(startX+1, startY+2+i, paddedItem, style)
	}
}

func (ed *Editor) drawInputBox(w, h int) {
	boxW := 60
	boxH := 3
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	ed.drawBox(boxX, boxY, boxW, boxH, styleInput)
	ed.drawString(boxX+2, boxY+1, ed.inputPrompt, styleInput)
	ed.drawString(boxX+2+len(ed.inputPrompt), boxY+1, ed.inputBuffer+"_", styleInput)
}

func (ed *Editor) drawHelpOverlay(w, h int) {
	lines := []string{
		"Mouse:",
		"  click state        select it",
		"  click line         select transition pair",
		"  click empty        clear selection",
		"  drag state         move it",
		"",
		"Keys:",
		"  a    add state",
		"  t    transition mode (click two states)",
		"  g    toggle gate of selected state",
		"  n    rename selected state",
		"  e    edit rate of selected transition",
		"  m    rename model",
		"  v    validate",
		"  s    run simulation",
		"  r    render to " + ed.config.FileType,
		"  Del  delete selection",
		"  Ctrl+Z / Ctrl+Y  undo / redo",
		"  Ctrl+S           save",
		"  Esc  menu",
	}

	boxW := 50
	boxH := len(lines) + 4
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2
	if boxY < 0 {
		boxY = 0
	}

	ed.drawTitledBox(boxX, boxY, boxW, boxH, "help")
	for i, line := range lines {
		ed.drawString(boxX+2, boxY+2+i, truncate(line, boxW-4), styleMenu)
	}
}

func (ed *Editor) drawIssuesOverlay(w, h int) {
	boxW := 60
	boxH := len(ed.issues) + 4
	if boxH > h-4 {
		boxH = h - 4
	}
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2
	if boxY < 0 {
		boxY = 0
	}

	ed.drawTitledBox(boxX, boxY, boxW, boxH, "validation issues")
	for i, issue := range ed.issues {
		if i >= boxH-4 {
			break
		}
		ed.drawString(boxX+2, boxY+2+i, truncate(issue, boxW-4), styleIssue)
	}
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1

	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	fileInfo := "[new]"
	if ed.filename != "" {
		fileInfo = truncate(ed.filename, 30)
	}
	if ed.modified {
		fileInfo += " *"
	}
	ed.drawString(1, y, fileInfo, styleStatus)

	modeStr := ""
	if ed.ui == UICanvas {
		modeStr = ed.ctrl.Mode().String()
	}
	ed.drawString(w/2-len(modeStr)/2, y, modeStr, styleStatus)

	if ed.message != "" {
		style := styleMsgInfo
		if ed.messageType == MsgError {
			style = styleMsgError
		}
		ed.drawString(w-len(ed.message)-2, y, ed.message, style)
	}

	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, ed.helpString(), styleHelp)
}

func (ed *Editor) helpString() string {
	switch ed.ui {
	case UIMenu:
		return "↑↓:Select  Enter:Confirm  Esc:Canvas"
	case UICanvas:
		return "a:Add  t:Transition  g:Gate  n:Name  e:Rate  v:Validate  s:Simulate  Del:Delete  h:Help  Esc:Menu"
	case UIInput:
		return "Type text  Enter:Confirm  Esc:Cancel"
	case UIHelp, UIIssues:
		return "Any key to close"
	}
	return ""
}

func (ed *Editor) drawTitledBox(x, y, w, h int, title string) {
	ed.drawBox(x, y, w, h, styleDefault)
	if title != "" {
		titleX := x + (w-len(title)-2)/2
		ed.screen.SetContent(titleX, y, ' ', nil, styleBorder)
		ed.drawString(titleX+1, y, title, styleSidebarH)
		ed.screen.SetContent(titleX+1+len(title), y, ' ', nil, styleBorder)
	}
}

func (ed *Editor) drawBox(x, y, w, h int, style tcell.Style) {
	ed.screen.SetContent(x, y, '┌', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)
	ed.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)

	for i := x + 1; i < x+w-1; i++ {
		ed.screen.SetContent(i, y, '─', nil, styleBorder)
		ed.screen.SetContent(i, y+h-1, '─', nil, styleBorder)
	}
	for i := y + 1; i < y+h-1; i++ {
		ed.screen.SetContent(x, i, '│', nil, styleBorder)
		ed.screen.SetContent(x+w-1, i, '│', nil, styleBorder)
	}
	for row := y + 1; row < y+h-1; row++ {
		for col := x + 1; col < x+w-1; col++ {
			ed.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	for i, r := range s {
		ed.screen.SetContent(x+i, y, r, nil, style)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
