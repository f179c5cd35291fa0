package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/example/netsim_playback/core"
)

// Tick label and legend layout.
const (
	cornerMargin  = 8
	tickPadX      = 6
	tickPadY      = 4
	legendPad     = 8
	legendIconCol = 24
	legendGap     = 6
	legendTitle   = "Legend"
)

// TickLabel formats the tick counter.
func TickLabel(tick int64) string {
	return fmt.Sprintf("%d ns", tick)
}

func drawTick(fc *frameContext) {
	label := TickLabel(fc.frame.Tick)
	w := float64(fc.text.Measure(label) + 2*tickPadX)
	h := float64(fc.text.LineHeight() + 2*tickPadY)
	box := core.Rect{Min: core.Pt(cornerMargin, cornerMargin), Max: core.Pt(cornerMargin+w, cornerMargin+h)}
	fc.canvas.FillRoundedRect(box, 4, fc.theme.TickFill)
	fc.text.Draw(fc.canvas.Image(), label, image.Pt(cornerMargin+tickPadX, cornerMargin+tickPadY), fc.theme.TickText)
}

type legendRow struct {
	icon    image.Image
	dash    []float64
	color   color.RGBA
	caption string
}

func legendRows(icons IconSet, theme Theme) []legendRow {
	var rows []legendRow
	for _, kind := range core.AllPacketKinds() {
		rows = append(rows, legendRow{icon: icons.Icon(kind.IconKey()), caption: kind.Caption()})
	}
	for _, st := range core.AllSubtypes() {
		if !st.HasMarker() || st == core.PacketOnFly {
			continue
		}
		rows = append(rows, legendRow{icon: icons.Icon(st.IconKey()), caption: st.Caption()})
	}
	rows = append(rows,
		legendRow{dash: primaryDash, color: theme.Primary, caption: "Primary LSP"},
		legendRow{dash: backupDash, color: theme.Backup, caption: "Backup LSP"},
	)
	return rows
}

// legendSize returns the panel size for rows: the widest caption plus the icon
// column and paddings.
func legendSize(text *textDrawer, rows []legendRow) (int, int) {
	widest := text.Measure(legendTitle) - legendIconCol - legendGap
	for _, r := range rows {
		widest = max(widest, text.Measure(r.caption))
	}
	rowH := max(text.LineHeight(), MarkerIconSize) + 2
	return widest + legendIconCol + legendGap + 2*legendPad, (len(rows)+1)*rowH + 2*legendPad
}

func drawLegend(fc *frameContext) {
	if !fc.showLegend {
		return
	}
	rows := legendRows(fc.icons, fc.theme)
	w, h := legendSize(fc.text, rows)
	b := fc.canvas.Bounds()
	x0 := max(b.Max.X-w-cornerMargin, 0)
	y0 := max(b.Max.Y-h-cornerMargin, 0)
	panel := core.Rect{Min: core.Pt(float64(x0), float64(y0)), Max: core.Pt(float64(x0+w), float64(y0+h))}
	fc.canvas.FillRoundedRect(panel, 6, fc.theme.LegendFill)

	rowH := max(fc.text.LineHeight(), MarkerIconSize) + 2
	dst := fc.canvas.Image()
	y := y0 + legendPad
	fc.text.Draw(dst, legendTitle, image.Pt(x0+legendPad, y), fc.theme.LegendText)
	y += rowH
	for _, r := range rows {
		mid := core.Pt(float64(x0+legendPad+legendIconCol/2), float64(y+rowH/2))
		if r.dash != nil {
			half := float64(legendIconCol/2 - 1)
			fc.canvas.DashedLine(mid.Sub(core.Pt(half, 0)), mid.Add(core.Pt(half, 0)), pathWidth, r.dash, r.color)
		} else {
			fc.canvas.DrawImage(r.icon, mid)
		}
		textY := y + (rowH-fc.text.LineHeight())/2
		fc.text.Draw(dst, r.caption, image.Pt(x0+legendPad+legendIconCol+legendGap, textY), fc.theme.LegendText)
		y += rowH
	}
}
