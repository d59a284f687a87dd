// services/panel/panel.go
package panel

import (
	"context"
	"fmt"
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"

	"freqgate-go/bus"
	"freqgate-go/services/meter"
	"freqgate-go/types"
)

// Service renders the resolved measurement range and the live range mode on
// a small monochrome display. It is a passive consumer of the meter's
// retained topics; the measurement itself never depends on it, and a board
// without a display simply doesn't start it.
type Service struct {
	disp drivers.Displayer
}

func New(disp drivers.Displayer) *Service { return &Service{disp: disp} }

func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	if s.disp == nil {
		return nil // not fitted
	}
	go s.serviceLoop(ctx, conn)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	stSub := conn.Subscribe(meter.TopicState())
	tbSub := conn.Subscribe(meter.TopicTimebase())
	rgSub := conn.Subscribe(meter.TopicRange())
	defer conn.Unsubscribe(stSub)
	defer conn.Unsubscribe(tbSub)
	defer conn.Unsubscribe(rgSub)

	var (
		level string
		info  *types.TimebaseInfo
		ext   bool
	)
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-stSub.Channel():
			if st, ok := m.Payload.(types.MeterState); ok {
				level = st.Level
				if level == types.LevelFault {
					s.drawFault(st.Status)
					continue
				}
			}
		case m := <-tbSub.Channel():
			if tb, ok := m.Payload.(types.TimebaseInfo); ok {
				info = &tb
			}
		case m := <-rgSub.Channel():
			if rv, ok := m.Payload.(types.RangeValue); ok {
				ext = rv.Extended
			}
		}
		if level == types.LevelReady && info != nil {
			s.drawStatus(*info, ext)
		}
	}
}

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func (s *Service) drawStatus(info types.TimebaseInfo, ext bool) {
	s.clear()
	div := uint64(1)
	mode := "x1"
	if ext {
		div = 10
		mode = "x10"
	}
	tinyfont.WriteLine(s.disp, &tinyfont.TomThumb, 2, 8, "FREQ GATE "+mode, white)
	tinyfont.WriteLine(s.disp, &tinyfont.TomThumb, 2, 20, "top "+fmtHz(info.TopHz/div), white)
	tinyfont.WriteLine(s.disp, &tinyfont.TomThumb, 2, 30, "res "+fmtHz(uint64(info.ResolutionHz)/div), white)
	tinyfont.WriteLine(s.disp, &tinyfont.TomThumb, 2, 40,
		fmt.Sprintf("gate %d us", info.GateNs*div/1000), white)
	_ = s.disp.Display()
}

func (s *Service) drawFault(status string) {
	s.clear()
	tinyfont.WriteLine(s.disp, &tinyfont.TomThumb, 2, 8, "CONFIG FAULT", white)
	tinyfont.WriteLine(s.disp, &tinyfont.TomThumb, 2, 20, status, white)
	_ = s.disp.Display()
}

func (s *Service) clear() {
	w, h := s.disp.Size()
	for y := int16(0); y < h; y++ {
		for x := int16(0); x < w; x++ {
			s.disp.SetPixel(x, y, color.RGBA{})
		}
	}
}

// fmtHz prints a frequency in the largest unit that keeps the number short,
// with one decimal when it isn't whole (12.8 MHz, 640 kHz, 50 Hz).
func fmtHz(hz uint64) string {
	switch {
	case hz >= 1_000_000:
		return scaled(hz, 1_000_000) + " MHz"
	case hz >= 1000:
		return scaled(hz, 1000) + " kHz"
	default:
		return fmt.Sprintf("%d Hz", hz)
	}
}

func scaled(hz, unit uint64) string {
	whole := hz / unit
	tenth := hz % unit * 10 / unit
	if tenth == 0 {
		return fmt.Sprintf("%d", whole)
	}
	return fmt.Sprintf("%d.%d", whole, tenth)
}
