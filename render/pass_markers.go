package render

import (
	"fmt"

	"github.com/example/netsim_playback/core"
)

func drawMarkers(fc *frameContext) {
	for _, ev := range fc.frame.Events {
		st := ev.Subtype()
		if st.Valid() && !st.HasMarker() {
			continue
		}
		if err := fc.drawMarker(ev); err != nil {
			fc.fault("markers", st, err)
			continue
		}
		fc.markers++
	}
}

func (fc *frameContext) drawMarker(ev core.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMarkerPanic, r)
		}
	}()
	at, ok, err := ev.MarkerAnchor()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	key := ev.MarkerKey()
	icon := fc.icons.Icon(key)
	if icon == nil {
		icon = fc.icons.Icon(ev.Subtype().IconKey())
	}
	if icon == nil {
		return fmt.Errorf("%w: %s", ErrMissingIcon, key)
	}
	fc.canvas.DrawImage(icon, at)
	return nil
}
