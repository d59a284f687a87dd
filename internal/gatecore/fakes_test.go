package gatecore

// Shared test doubles for the engine and range-select tests. The event log
// captures the exact order of pin writes and holds so waveform assertions
// can check pulse placement, not just end state.

type eventLog struct {
	events []string
}

func (l *eventLog) add(e string) { l.events = append(l.events, e) }

type fakePin struct {
	n     int
	level bool
	isOut bool
	pull  Pull

	name string
	log  *eventLog
}

func (p *fakePin) ConfigureInput(pull Pull) error {
	p.isOut = false
	p.pull = pull
	return nil
}

func (p *fakePin) ConfigureOutput(initial bool) error {
	p.isOut = true
	p.level = initial
	return nil
}

func (p *fakePin) Set(level bool) {
	p.level = level
	if p.log != nil {
		if level {
			p.log.add(p.name + "=1")
		} else {
			p.log.add(p.name + "=0")
		}
	}
}

func (p *fakePin) Get() bool   { return p.level }
func (p *fakePin) Toggle()     { p.Set(!p.level) }
func (p *fakePin) Number() int { return p.n }

var _ GPIOPin = (*fakePin)(nil)

type fakeTimer struct {
	cfg      TimerConfig
	handler  func()
	preloads []uint8
	started  bool
	stopped  bool
}

func (t *fakeTimer) Configure(cfg TimerConfig) error { t.cfg = cfg; return nil }
func (t *fakeTimer) SetHandler(h func())             { t.handler = h }
func (t *fakeTimer) Preload(v uint8)                 { t.preloads = append(t.preloads, v) }
func (t *fakeTimer) Start() error                    { t.started = true; return nil }
func (t *fakeTimer) Stop()                           { t.stopped = true }

// fire simulates one timer expiry: the hardware would call the overflow ISR.
func (t *fakeTimer) fire() {
	if t.handler != nil {
		t.handler()
	}
}

var _ IntervalTimer = (*fakeTimer)(nil)

type fakeHold struct {
	calls int
	log   *eventLog
}

func (h *fakeHold) Hold() {
	h.calls++
	if h.log != nil {
		h.log.add("hold")
	}
}

var _ Hold = (*fakeHold)(nil)
