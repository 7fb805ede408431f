package observable

import "sync/atomic"

// testConsumer is a minimal Consumer with a dirty flag and a schedule
// counter, mirroring what the render runtime provides.
type testConsumer struct {
	id        uint64
	dirty     atomic.Bool
	scheduled atomic.Int64
}

var testConsumerID uint64

func newTestConsumer() *testConsumer {
	return &testConsumer{id: atomic.AddUint64(&testConsumerID, 1)}
}

func (c *testConsumer) ID() uint64 {
	return c.id
}

func (c *testConsumer) Dirty() bool {
	return c.dirty.Load()
}

func (c *testConsumer) scheduledCount() int64 {
	return c.scheduled.Load()
}

// testBridge is a hand-rolled RenderBridge for driving the membrane in
// tests without the runtime package.
type testBridge struct {
	active  bool
	current Consumer
}

func newTestBridge() *testBridge {
	return &testBridge{}
}

func (b *testBridge) RenderingActive() bool {
	return b.active
}

func (b *testBridge) CurrentConsumer() Consumer {
	return b.current
}

func (b *testBridge) MarkDirty(c Consumer) {
	if tc, ok := c.(*testConsumer); ok {
		tc.dirty.Store(true)
	}
}

func (b *testBridge) ScheduleRerender(c Consumer) {
	if tc, ok := c.(*testConsumer); ok {
		tc.scheduled.Add(1)
	}
}

// renderAs runs fn as a render pass for c.
func (b *testBridge) renderAs(c Consumer, fn func()) {
	b.active = true
	b.current = c
	defer func() {
		b.active = false
		b.current = nil
	}()
	fn()
}
