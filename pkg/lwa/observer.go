package lwa

// Observer receives Authority state transitions.
//
// Callbacks run on the goroutine performing the transition (the Authority's
// refresh goroutine, or the caller's goroutine for the initial delivery on
// registration) and are serialized with the Authority's internal lock. They
// must return promptly and must not call back into the Authority
// synchronously; defer any registration changes or token reads to another
// goroutine.
//
// Observers are identified by interface equality, so implementations should
// be pointer-backed.
type Observer interface {
	OnAuthStateChange(state State)
}

// AddObserver registers o and synchronously delivers the current state to it
// before returning, so a new observer can never miss the state that was true
// at the moment it subscribed. Adding a nil or already-registered observer
// is a no-op.
func (a *Authority) AddObserver(o Observer) {
	if o == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, existing := range a.observers {
		if existing == o {
			return
		}
	}
	a.observers = append(a.observers, o)
	o.OnAuthStateChange(a.state)
}

// RemoveObserver unregisters o. Once RemoveObserver returns, o receives no
// further notifications. Removing a nil or unknown observer is a no-op.
func (a *Authority) RemoveObserver(o Observer) {
	if o == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for i, existing := range a.observers {
		if existing == o {
			a.observers = append(a.observers[:i], a.observers[i+1:]...)
			return
		}
	}
}

// SetObserver replaces the entire observer set with o, delivering the
// current state to it as in AddObserver. A nil o clears the set.
func (a *Authority) SetObserver(o Observer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.observers = a.observers[:0]
	if o == nil {
		return
	}
	a.observers = append(a.observers, o)
	o.OnAuthStateChange(a.state)
}
