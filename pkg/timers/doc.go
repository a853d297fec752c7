// Package timers provides scoped timers that are cancelled together when
// their owner is torn down, plus values that clear themselves after a TTL.
//
// A Scope belongs to one owner (a form, a verification flow). Every timer
// created through it is stopped by Close, and a callback that races with
// Close never runs, so owners never observe updates after teardown:
//
//	scope := timers.NewScope(nil) // real clock
//	defer scope.Close()
//
//	scope.After(3*time.Second, func() { banner.Clear() })
//	tick := scope.Every(time.Second, countdown.Tick)
//	scope.Debounce("validate", 80*time.Millisecond, form.validateTouched)
//
// Transient holds a banner-like value for a fixed duration:
//
//	msg := timers.NewTransient[string](scope)
//	msg.Set("Signup successful!", 3*time.Second)
//
// Tests drive time with FakeClock instead of sleeping.
package timers
