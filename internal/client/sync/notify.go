package sync

import stdsync "sync"

// subscriber is a registered state callback. since is the state version it
// was registered at; older transitions still in the outbox are not sent to it.
type subscriber struct {
	fn    func(State)
	since uint64
}

// delivery is one state waiting in the outbox. to limits it to a single
// subscriber (the initial call of Subscribe); -1 means every subscriber.
type delivery struct {
	state   State
	version uint64
	to      int
}

// Subscribe registers fn. fn first receives the current state and then
// every transition, one call at a time and in order.
// When no delivery is in progress fn is called before Subscribe returns;
// otherwise the running delivery makes the call.
// fn may call back into the engine and the Command Layer.
func (e *Engine) Subscribe(fn func(State)) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = &subscriber{fn: fn, since: e.version}
	drain := e.enqueueLocked(delivery{state: e.state, version: e.version, to: id})
	e.mu.Unlock()

	if drain {
		e.drain()
	}

	var once stdsync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
		})
	}
}

// publish moves to a new state and delivers it on the calling goroutine,
// unless another goroutine is delivering already.
func (e *Engine) publish(status Status, pending int) {
	if e.transition(State{Status: status, Pending: pending}) {
		e.drain()
	}
}

// publishAsync is publish for a pass: delivery never runs on the pass
// goroutine, so a subscriber may wait for the pass to finish.
func (e *Engine) publishAsync(status Status, pending int) {
	if e.transition(State{Status: status, Pending: pending}) {
		go e.drain()
	}
}

// transition records next and queues it for delivery.
// It reports whether the caller has to start draining the outbox.
func (e *Engine) transition(next State) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == next {
		return false
	}
	e.state = next
	e.version++
	return e.enqueueLocked(delivery{state: next, version: e.version, to: -1})
}

// enqueueLocked appends d and claims delivery if nobody holds it.
// The caller holds e.mu.
func (e *Engine) enqueueLocked(d delivery) bool {
	e.outbox = append(e.outbox, d)
	if e.delivering {
		return false
	}
	e.delivering = true
	return true
}

// drain delivers queued states until the outbox is empty.
// Only the goroutine that claimed delivery runs it; callbacks are invoked
// without holding any engine lock.
func (e *Engine) drain() {
	for {
		e.mu.Lock()
		if len(e.outbox) == 0 {
			e.delivering = false
			e.drained.Broadcast()
			e.mu.Unlock()
			return
		}
		d := e.outbox[0]
		e.outbox = e.outbox[1:]
		targets := e.targetsLocked(d)
		e.mu.Unlock()

		for _, fn := range targets {
			fn(d.state)
		}
	}
}

func (e *Engine) targetsLocked(d delivery) []func(State) {
	if d.to >= 0 {
		if sub, ok := e.subs[d.to]; ok {
			return []func(State){sub.fn}
		}
		return nil
	}

	targets := make([]func(State), 0, len(e.subs))
	for _, sub := range e.subs {
		// Подписчик уже получил это состояние как начальное
		if sub.since >= d.version {
			continue
		}
		targets = append(targets, sub.fn)
	}
	return targets
}

// waitDelivered blocks until the outbox is empty and nobody is delivering
func (e *Engine) waitDelivered() {
	e.mu.Lock()
	for e.delivering || len(e.outbox) > 0 {
		e.drained.Wait()
	}
	e.mu.Unlock()
}
