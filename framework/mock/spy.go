package mock

import (
	"fmt"
	"reflect"
	"runtime"
	"sync"
)

// Impl is the implementation behind a spy. Returning a non-nil error is how a spied
// function reports failure; a panic is recorded and then propagated to the caller.
type Impl func(args ...interface{}) (interface{}, error)

// Call is one recorded invocation of a spy.
type Call struct {
	Args     []interface{}
	Result   interface{}
	Err      error
	Panicked bool
}

// Returned is true if the call completed without an error or a panic.
func (c Call) Returned() bool {
	return !c.Panicked && c.Err == nil
}

// ThrownError wraps a panic value that was not itself an error.
type ThrownError struct {
	Value interface{}
}

func (e ThrownError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Spy records every call made through it and forwards the call to its current
// implementation. Calls made directly to the underlying function are not recorded.
type Spy struct {
	name     string
	original Impl
	impl     Impl
	once     []Impl
	calls    []Call
	restore  func()
	lock     sync.Mutex
}

// Fn creates a spy. If impl is nil, calls return (nil, nil) until an implementation is set.
func Fn(impl Impl) *Spy {
	return &Spy{name: "spy", original: impl, impl: impl}
}

// SpyOn replaces the function stored in *target with a spy that records calls and forwards
// them to the original function. target must be a non-nil pointer to a variable of any
// function type. MockRestore puts the original function back.
func SpyOn(target interface{}) *Spy {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() || ptr.Elem().Kind() != reflect.Func {
		panic(fmt.Errorf("SpyOn requires a pointer to a function variable, got %T", target))
	}
	fnVal := ptr.Elem()
	fnType := fnVal.Type()
	original := reflect.ValueOf(fnVal.Interface())

	s := Fn(nil)
	if !original.IsNil() {
		s.original = reflectImpl(original)
		s.impl = s.original
		if f := runtime.FuncForPC(original.Pointer()); f != nil {
			s.name = f.Name()
		}
	}
	wrapper := reflect.MakeFunc(fnType, func(in []reflect.Value) []reflect.Value {
		args := make([]interface{}, len(in))
		for i, v := range in {
			args[i] = v.Interface()
		}
		result, err := s.Call(args...)
		return reflectOutputs(fnType, result, err)
	})
	fnVal.Set(wrapper)
	s.restore = func() { fnVal.Set(original) }
	return s
}

// Call invokes the spy. The next once-implementation is used if there is one, otherwise the
// current implementation.
func (s *Spy) Call(args ...interface{}) (interface{}, error) {
	s.lock.Lock()
	impl := s.impl
	if len(s.once) > 0 {
		impl = s.once[0]
		s.once = s.once[1:]
	}
	s.lock.Unlock()

	call := Call{Args: append([]interface{}(nil), args...)}
	defer func() {
		if r := recover(); r != nil {
			call.Panicked = true
			if err, ok := r.(error); ok {
				call.Err = err
			} else {
				call.Err = ThrownError{Value: r}
			}
			s.record(call)
			panic(r)
		}
	}()
	if impl != nil {
		call.Result, call.Err = impl(args...)
	}
	s.record(call)
	return call.Result, call.Err
}

func (s *Spy) record(call Call) {
	s.lock.Lock()
	s.calls = append(s.calls, call)
	s.lock.Unlock()
}

// Calls returns a copy of the recorded calls, oldest first.
func (s *Spy) Calls() []Call {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Call(nil), s.calls...)
}

func (s *Spy) CallCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.calls)
}

// LastCall returns the most recent call, or false if there have been none.
func (s *Spy) LastCall() (Call, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.calls) == 0 {
		return Call{}, false
	}
	return s.calls[len(s.calls)-1], true
}

func (s *Spy) MockImplementation(impl Impl) *Spy {
	s.lock.Lock()
	s.impl = impl
	s.lock.Unlock()
	return s
}

// MockImplementationOnce queues an implementation for the next call only. Several queued
// implementations are used in the order they were added.
func (s *Spy) MockImplementationOnce(impl Impl) *Spy {
	s.lock.Lock()
	s.once = append(s.once, impl)
	s.lock.Unlock()
	return s
}

func (s *Spy) MockReturnValue(value interface{}) *Spy {
	return s.MockImplementation(func(...interface{}) (interface{}, error) { return value, nil })
}

func (s *Spy) MockReturnValueOnce(value interface{}) *Spy {
	return s.MockImplementationOnce(func(...interface{}) (interface{}, error) { return value, nil })
}

// MockClear forgets the recorded calls but keeps the implementation.
func (s *Spy) MockClear() *Spy {
	s.lock.Lock()
	s.calls = nil
	s.lock.Unlock()
	return s
}

// MockReset forgets the recorded calls and goes back to the implementation the spy was
// created with.
func (s *Spy) MockReset() *Spy {
	s.lock.Lock()
	s.calls = nil
	s.once = nil
	s.impl = s.original
	s.lock.Unlock()
	return s
}

// MockRestore does everything MockReset does and, for a spy created by SpyOn, puts the
// original function back into the spied variable.
func (s *Spy) MockRestore() {
	s.MockReset()
	s.lock.Lock()
	restore := s.restore
	s.restore = nil
	s.lock.Unlock()
	if restore != nil {
		restore()
	}
}

func (s *Spy) MockName(name string) *Spy {
	s.lock.Lock()
	s.name = name
	s.lock.Unlock()
	return s
}

func (s *Spy) Name() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.name
}

func (s *Spy) String() string {
	return fmt.Sprintf("[spy %s]", s.Name())
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// reflectImpl adapts a function of any signature to Impl. A trailing error result becomes
// the error; any other results become the value (nil for none, the value itself for one,
// a []interface{} for several).
func reflectImpl(fn reflect.Value) Impl {
	fnType := fn.Type()
	return func(args ...interface{}) (interface{}, error) {
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			in[i] = argValue(fnType, i, a)
		}
		var out []reflect.Value
		if fnType.IsVariadic() && len(in) == fnType.NumIn() {
			out = fn.CallSlice(in)
		} else {
			out = fn.Call(in)
		}
		var err error
		if n := len(out); n > 0 && fnType.Out(n-1) == errorType {
			if e := out[n-1].Interface(); e != nil {
				err = e.(error)
			}
			out = out[:n-1]
		}
		switch len(out) {
		case 0:
			return nil, err
		case 1:
			return out[0].Interface(), err
		}
		values := make([]interface{}, len(out))
		for i, o := range out {
			values[i] = o.Interface()
		}
		return values, err
	}
}

func argValue(fnType reflect.Type, i int, a interface{}) reflect.Value {
	var t reflect.Type
	switch {
	case i < fnType.NumIn():
		t = fnType.In(i)
	case fnType.IsVariadic():
		t = fnType.In(fnType.NumIn() - 1).Elem()
	}
	if a == nil {
		if t == nil {
			return reflect.Value{}
		}
		return reflect.Zero(t)
	}
	v := reflect.ValueOf(a)
	if t != nil && !v.Type().AssignableTo(t) && v.Type().ConvertibleTo(t) {
		v = v.Convert(t)
	}
	return v
}

// reflectOutputs is the inverse of reflectImpl, used when the spy's implementation has been
// replaced and its results must be returned through the original function type.
func reflectOutputs(fnType reflect.Type, result interface{}, err error) []reflect.Value {
	n := fnType.NumOut()
	out := make([]reflect.Value, n)
	valueCount := n
	if n > 0 && fnType.Out(n-1) == errorType {
		valueCount = n - 1
		if err != nil {
			out[n-1] = reflect.ValueOf(&err).Elem()
		} else {
			out[n-1] = reflect.Zero(errorType)
		}
	}
	var values []interface{}
	switch {
	case valueCount == 1:
		values = []interface{}{result}
	case valueCount > 1:
		values, _ = result.([]interface{})
	}
	for i := 0; i < valueCount; i++ {
		t := fnType.Out(i)
		if i >= len(values) || values[i] == nil {
			out[i] = reflect.Zero(t)
			continue
		}
		v := reflect.ValueOf(values[i])
		if v.Type() != t && v.Type().ConvertibleTo(t) {
			v = v.Convert(t)
		}
		out[i] = v
	}
	return out
}
