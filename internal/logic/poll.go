package logic

type pending struct {
	handler Handler
	state   State
	repeat  bool
}

// Poll delivers every pending gesture and repeat flag, in button index order.
// Each pending condition produces exactly one handler call and is then
// cleared. Handlers run without the bank lock held, so they may call State,
// SetState and friends. Concurrent Poll calls are serialized.
func (b *Bank) Poll() int {
	b.pollMu.Lock()
	defer b.pollMu.Unlock()

	b.mu.Lock()
	work := make([]pending, 0, b.n)
	for i := 0; i < b.n; i++ {
		btn := &b.buttons[i]
		if btn.current == Cleared && !btn.repeatPending {
			continue
		}
		work = append(work, pending{
			handler: btn.cfg.Handler,
			state:   btn.current,
			repeat:  btn.repeatPending,
		})
		btn.current = Cleared
		btn.repeatPending = false
	}
	b.mu.Unlock()

	calls := 0
	for _, p := range work {
		if p.handler == nil {
			continue
		}
		if p.state != Cleared {
			p.handler(p.state)
			calls++
		}
		if p.repeat {
			p.handler(HeldRepeat)
			calls++
		}
	}
	return calls
}
