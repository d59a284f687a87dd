package heartbeat

import (
	"context"
	"time"

	"freqgate-go/bus"
	"freqgate-go/services/meter"
	"freqgate-go/types"
)

// Service periodically reports that the gate is alive: meter level plus the
// ISR's open/close transition counters. With the display and LEDs driven by
// the external counter, the console heartbeat is the only sign of life the
// firmware itself gives.
type Service struct {
	Interval time.Duration                 // default 10s
	Counts   func() (opens, closes uint32) // usually meter.Service.Counts
}

func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	stSub := conn.Subscribe(meter.TopicState())
	defer conn.Unsubscribe(stSub)

	iv := s.Interval
	if iv <= 0 {
		iv = 10 * time.Second
	}
	tick := time.NewTicker(iv)
	defer tick.Stop()

	level := "unknown"
	for {
		select {
		case <-ctx.Done():
			println("Info: heartbeat service stopping")
			return
		case m := <-stSub.Channel():
			if st, ok := m.Payload.(types.MeterState); ok {
				level = st.Level
			}
		case <-tick.C:
			var opens, closes uint32
			if s.Counts != nil {
				opens, closes = s.Counts()
			}
			println("Info: heartbeat", level, "opens", opens, "closes", closes)
		}
	}
}
