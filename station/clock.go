package station

// Clock is the fixed-rate simulated clock shared by every device.
type Clock struct {
	start float64
	now   float64
	dt    float64
	warp  float64
	tick  int32
}

// NewClock creates a clock at start advancing dt*warp simulated seconds per tick.
func NewClock(start, dt, warp float64) *Clock {
	return &Clock{start: start, now: start, dt: dt, warp: warp}
}

// Now returns the current universal time.
func (c *Clock) Now() float64 { return c.now }

// TickDeltaTime returns the warped duration of one tick.
func (c *Clock) TickDeltaTime() float64 { return c.dt * c.warp }

// Elapsed returns the simulated seconds since the clock's start time.
func (c *Clock) Elapsed() float64 { return c.now - c.start }

// Tick returns the number of ticks advanced.
func (c *Clock) Tick() int32 { return c.tick }

// Advance moves the clock forward by one tick.
func (c *Clock) Advance() {
	c.now += c.TickDeltaTime()
	c.tick++
}

// Set moves the clock to a saved position.
func (c *Clock) Set(tick int32, now float64) {
	c.tick = tick
	c.now = now
}
