package render

import (
	"image/color"

	"github.com/example/netsim_playback/core"
)

// Theme holds the palette used by the draw passes.
type Theme struct {
	Background   color.RGBA
	Domain       color.RGBA
	DomainEdge   color.RGBA
	LinkInternal color.RGBA
	LinkExternal color.RGBA
	LinkBroken   color.RGBA
	Primary      color.RGBA
	Backup       color.RGBA
	CalloutFill  color.RGBA
	CalloutText  color.RGBA
	LegendFill   color.RGBA
	LegendText   color.RGBA
	TickFill     color.RGBA
	TickText     color.RGBA
}

// DefaultTheme returns the built-in palette.
func DefaultTheme() Theme {
	return Theme{
		Background:   color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Domain:       color.RGBA{R: 0xe4, G: 0xec, B: 0xf7, A: 0xff},
		DomainEdge:   color.RGBA{R: 0xa9, G: 0xbd, B: 0xdb, A: 0xff},
		LinkInternal: color.RGBA{R: 0x3a, G: 0x57, B: 0x8f, A: 0xff},
		LinkExternal: color.RGBA{R: 0x7a, G: 0x7a, B: 0x7a, A: 0xff},
		LinkBroken:   color.RGBA{R: 0xd0, G: 0x2b, B: 0x2b, A: 0xff},
		Primary:      color.RGBA{R: 0x1f, G: 0x9d, B: 0x55, A: 0xff},
		Backup:       color.RGBA{R: 0xe0, G: 0x8e, B: 0x0b, A: 0xff},
		CalloutFill:  color.RGBA{R: 0xff, G: 0xf6, B: 0xc8, A: 0xff},
		CalloutText:  color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff},
		LegendFill:   color.RGBA{R: 0xf4, G: 0xf4, B: 0xf4, A: 0xff},
		LegendText:   color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff},
		TickFill:     color.RGBA{R: 0x20, G: 0x2a, B: 0x3a, A: 0xff},
		TickText:     color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
}

var packetColors = map[core.PacketKind]color.RGBA{
	core.PacketIPv4:    {R: 0x2f, G: 0x80, B: 0xed, A: 0xff},
	core.PacketIPv4GoS: {R: 0x0b, G: 0x4f, B: 0xb3, A: 0xff},
	core.PacketMPLS:    {R: 0x27, G: 0xae, B: 0x60, A: 0xff},
	core.PacketMPLSGoS: {R: 0x14, G: 0x6b, B: 0x3a, A: 0xff},
	core.PacketTLDP:    {R: 0x9b, G: 0x51, B: 0xe0, A: 0xff},
	core.PacketGPSRP:   {R: 0xeb, G: 0x57, B: 0x57, A: 0xff},
	core.PacketRLPRP:   {R: 0xf2, G: 0x99, B: 0x4a, A: 0xff},
}

var nodeColors = map[core.NodeKind]color.RGBA{
	core.NodeTrafficGenerator: {R: 0x56, G: 0xcc, B: 0xf2, A: 0xff},
	core.NodeTrafficSink:      {R: 0x82, G: 0x82, B: 0x82, A: 0xff},
	core.NodeLER:              {R: 0x2d, G: 0x9c, B: 0xdb, A: 0xff},
	core.NodeActiveLER:        {R: 0x1b, G: 0x6c, B: 0xa8, A: 0xff},
	core.NodeLSR:              {R: 0x6f, G: 0xcf, B: 0x97, A: 0xff},
	core.NodeActiveLSR:        {R: 0x21, G: 0x96, B: 0x53, A: 0xff},
}

var bandColors = map[string]color.RGBA{
	core.BandLow.String():  {R: 0xf2, G: 0xc9, B: 0x4c, A: 0xff},
	core.BandMid.String():  {R: 0xf2, G: 0x99, B: 0x4a, A: 0xff},
	core.BandHigh.String(): {R: 0xeb, G: 0x38, B: 0x38, A: 0xff},
}

func packetColor(kind core.PacketKind) color.RGBA {
	if c, ok := packetColors[kind]; ok {
		return c
	}
	return color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
}
