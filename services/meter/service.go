// services/meter/service.go
package meter

import (
	"context"
	"time"

	"freqgate-go/bus"
	"freqgate-go/errcode"
	"freqgate-go/internal/gatecore"
	"freqgate-go/internal/platform"
	"freqgate-go/types"
	"freqgate-go/x/timex"
)

// Params re-exports the timebase parameters so integrators configure the
// meter without reaching into internal packages.
type Params = gatecore.Params

// Topics published by the service. State, timebase and range are retained so
// late subscribers (panel, heartbeat) see the current values immediately.
func TopicState() bus.Topic    { return bus.T("meter", "state") }
func TopicTimebase() bus.Topic { return bus.T("meter", "timebase") }
func TopicRange() bus.Topic    { return bus.T("meter", "range") }

type Options struct {
	Params Params
	Poll   time.Duration // foreground sampling interval; default 2 ms
}

// Service owns the measurement core: it resolves the timebase once, arms the
// interrupt-driven gate engine and then becomes the foreground loop that
// samples the range-select input.
type Service struct {
	opts   Options
	board  *platform.Board
	engine *gatecore.Engine
}

func New(board *platform.Board, opts Options) *Service {
	return &Service{opts: opts, board: board}
}

// Timebase resolves the configured parameters without touching hardware.
// main uses it for the boot banner; Run performs its own resolution so a
// fault can never slip past into an armed timer.
func (s *Service) Timebase() (gatecore.Timebase, error) {
	return gatecore.Resolve(s.opts.Params)
}

// Counts reports gate transitions seen so far (zero before arming).
func (s *Service) Counts() (opens, closes uint32) {
	if s.engine == nil {
		return 0, 0
	}
	return s.engine.Counts()
}

// Run blocks until ctx is cancelled. On an invalid configuration it
// publishes the fault (retained) and returns the error with the timer never
// armed and both counter outputs untouched - the safe idle state.
func (s *Service) Run(ctx context.Context, conn *bus.Connection) error {
	s.publishState(conn, types.LevelResolving, "")

	tb, err := gatecore.Resolve(s.opts.Params)
	if err != nil {
		s.publishState(conn, types.LevelFault, string(errcode.Of(err)))
		return err
	}

	s.engine = gatecore.NewEngine(s.board.Timer, s.board.Gate, s.board.Reset, s.board.Hold)
	if err := s.engine.Arm(tb); err != nil {
		s.publishState(conn, types.LevelFault, string(errcode.Of(err)))
		return err
	}
	rs, err := gatecore.NewRangeSelect(s.board.RangeBtn, s.board.RangeLED, s.engine.Reload(), tb)
	if err != nil {
		s.engine.Stop()
		s.publishState(conn, types.LevelFault, string(errcode.Of(err)))
		return err
	}

	conn.Publish(conn.NewMessage(TopicTimebase(), types.TimebaseInfo{
		ClockHz:      tb.ClockHz,
		FullScaleHz:  tb.FullScaleHz,
		Prescaler:    tb.Prescaler,
		Ticks:        tb.Ticks,
		GateNs:       tb.GateNs(),
		TopHz:        tb.TopHz(),
		ResolutionHz: tb.ResolutionHz(),
	}, true))
	conn.Publish(conn.NewMessage(TopicRange(), types.RangeValue{}, true))
	s.publishState(conn, types.LevelReady, "")

	poll := s.opts.Poll
	if poll <= 0 {
		poll = 2 * time.Millisecond
	}
	tick := time.NewTicker(poll)
	defer tick.Stop()

	extended := false
	for {
		select {
		case <-ctx.Done():
			s.engine.Stop()
			return nil
		case <-tick.C:
			if ext := rs.Step(); ext != extended {
				extended = ext
				conn.Publish(conn.NewMessage(TopicRange(), types.RangeValue{Extended: ext}, true))
			}
		}
	}
}

func (s *Service) publishState(conn *bus.Connection, level, status string) {
	conn.Publish(conn.NewMessage(TopicState(), types.MeterState{
		Level:  level,
		Status: status,
		TS:     timex.NowMs(),
	}, true))
}
