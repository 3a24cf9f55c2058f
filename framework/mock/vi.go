package mock

import (
	"sync"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"
)

// Vi is the per-run mocking context handed to test bodies: a Clock plus a registry of the
// spies created through it, so that they can all be cleared or restored at once.
//
// One Vi is shared by all tests of a root module. The runner calls Reset after the module
// has finished and Dispose when the run is over.
type Vi struct {
	*Clock
	spies []*Spy
	lock  sync.Mutex
}

func NewVi(loggers ldlog.Loggers) *Vi {
	return &Vi{Clock: NewClock(loggers)}
}

// Fn creates a spy and registers it.
func (v *Vi) Fn(impl Impl) *Spy {
	return v.register(Fn(impl))
}

// SpyOn replaces a function variable with a spy and registers it; see the package-level
// SpyOn.
func (v *Vi) SpyOn(target interface{}) *Spy {
	return v.register(SpyOn(target))
}

func (v *Vi) register(s *Spy) *Spy {
	v.lock.Lock()
	v.spies = append(v.spies, s)
	v.lock.Unlock()
	return s
}

func (v *Vi) registered() []*Spy {
	v.lock.Lock()
	defer v.lock.Unlock()
	return append([]*Spy(nil), v.spies...)
}

// ClearAllMocks calls MockClear on every registered spy.
func (v *Vi) ClearAllMocks() *Vi {
	for _, s := range v.registered() {
		s.MockClear()
	}
	return v
}

// ResetAllMocks calls MockReset on every registered spy.
func (v *Vi) ResetAllMocks() *Vi {
	for _, s := range v.registered() {
		s.MockReset()
	}
	return v
}

// RestoreAllMocks calls MockRestore on every registered spy, in reverse order of creation
// so that a variable spied on twice ends up with its first original.
func (v *Vi) RestoreAllMocks() *Vi {
	spies := v.registered()
	for i := len(spies) - 1; i >= 0; i-- {
		spies[i].MockRestore()
	}
	return v
}

// Reset restores every spy, forgets the registry, and puts the clock back in real mode
// with no timers.
func (v *Vi) Reset() {
	v.RestoreAllMocks()
	v.lock.Lock()
	v.spies = nil
	v.lock.Unlock()
	v.Clock.Reset()
}

// Dispose is Reset followed by releasing the clock.
func (v *Vi) Dispose() {
	v.Reset()
	v.Clock.Dispose()
}
