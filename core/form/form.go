package form

import (
	"sync"

	"github.com/dmitrymomot/authscreens/pkg/timers"
)

// BannerKind tells success and error banners apart.
type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

// Banner is a form-level message shown for the profile's banner TTL.
type Banner struct {
	Kind    BannerKind
	Message string
}

const debounceKey = "validate"

// Form holds the input state of one form instance.
// Safe for concurrent use; timer callbacks mutate it under the same lock.
type Form struct {
	profile    Profile
	validator  *Validator
	scope      *timers.Scope
	onValidate func(Errors)

	mu      sync.Mutex
	order   []string
	fields  map[string]*FormField
	pending timers.Handle

	backend *timers.Transient[Errors]
	banner  *timers.Transient[Banner]
}

// Option configures a Form.
type Option func(*formOptions)

type formOptions struct {
	clock      timers.Clock
	onValidate func(Errors)
}

// WithClock schedules debounce and banner timers on clock.
func WithClock(clock timers.Clock) Option {
	return func(o *formOptions) {
		o.clock = clock
	}
}

// WithOnValidate registers fn to receive the visible errors after each
// debounced validation batch.
func WithOnValidate(fn func(Errors)) Option {
	return func(o *formOptions) {
		o.onValidate = fn
	}
}

// New creates a form for profile with every field empty and untouched.
func New(profile Profile, opts ...Option) *Form {
	var o formOptions
	for _, opt := range opts {
		opt(&o)
	}

	profile = profile.withDefaults()
	v := profile.Validator()
	scope := timers.NewScope(o.clock)

	f := &Form{
		profile:    profile,
		validator:  v,
		scope:      scope,
		onValidate: o.onValidate,
		order:      v.Fields(),
		fields:     make(map[string]*FormField),
		backend:    timers.NewTransient[Errors](scope),
		banner:     timers.NewTransient[Banner](scope),
	}
	for _, name := range f.order {
		f.fields[name] = &FormField{Name: name}
	}
	return f
}

// Profile returns the profile the form was built from, with defaults applied.
func (f *Form) Profile() Profile {
	return f.profile
}

// Validator returns the form's validator.
func (f *Form) Validator() *Validator {
	return f.validator
}

// Change records a new value for field. Unknown fields are ignored.
func (f *Form) Change(field, value string) {
	f.mu.Lock()
	ff, ok := f.fields[field]
	if !ok {
		f.mu.Unlock()
		return
	}
	ff.Value = value

	if f.profile.Timing == DebouncedLive {
		ff.Touched = true
		f.mu.Unlock()
		h := f.scope.Debounce(debounceKey, f.profile.Debounce, f.validateTouched)
		f.mu.Lock()
		f.pending = h
		f.mu.Unlock()
	} else {
		values := f.valuesLocked()
		if ff.Touched {
			ff.Error = f.validator.Validate(field, value, values)
		}
		for _, name := range f.profile.dependents(field) {
			if dep, ok := f.fields[name]; ok && dep.Touched {
				dep.Error = f.validator.Validate(name, dep.Value, values)
			}
		}
		f.mu.Unlock()
	}

	if b, ok := f.banner.Get(); ok && b.Kind == BannerSuccess {
		f.banner.Clear()
	}
}

// Blur marks field touched. With OnBlurThenLive it is validated right away.
func (f *Form) Blur(field string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ff, ok := f.fields[field]
	if !ok {
		return
	}
	ff.Touched = true
	if f.profile.Timing != DebouncedLive {
		ff.Error = f.validator.Validate(field, ff.Value, f.valuesLocked())
	}
}

// Fill sets several values at once without validating, as when a submitted
// request body is loaded into a fresh form.
func (f *Form) Fill(values Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, value := range values {
		if ff, ok := f.fields[name]; ok {
			ff.Value = value
		}
	}
}

// Submit touches every field, validates all of them against current values
// and returns the values with the errors that block submission.
// A pending debounced batch is cancelled.
func (f *Form) Submit() (Values, Errors) {
	f.mu.Lock()
	pending := f.pending
	f.pending = timers.Handle{}
	values := f.valuesLocked()
	errs := make(Errors)
	for _, name := range f.order {
		ff := f.fields[name]
		ff.Touched = true
		ff.Error = f.validator.Validate(name, ff.Value, values)
		if ff.Error != "" {
			errs[name] = ff.Error
		}
	}
	f.mu.Unlock()

	pending.Stop()
	return values, errs
}

// Values returns the current raw values.
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valuesLocked()
}

// Fields returns a snapshot of every field in display order.
func (f *Form) Fields() []FormField {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FormField, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, *f.fields[name])
	}
	return out
}

// VisibleErrors returns errors of touched fields overlaid with any backend
// errors that have not expired yet.
func (f *Form) VisibleErrors() Errors {
	f.mu.Lock()
	local := f.localErrorsLocked()
	f.mu.Unlock()

	backend, _ := f.backend.Get()
	return local.Merge(backend)
}

// ApplyBackendErrors shows errs until the banner TTL elapses.
func (f *Form) ApplyBackendErrors(errs Errors) {
	if !errs.Any() {
		return
	}
	f.backend.Set(errs.clone(), f.profile.BannerTTL)
}

// ApplyBackendMessages routes free-text backend messages through the
// profile's error routes and shows them.
func (f *Form) ApplyBackendMessages(messages ...string) Errors {
	errs := MapBackendErrors(messages, f.profile.ErrorRoutes)
	f.ApplyBackendErrors(errs)
	return errs
}

// Succeed shows a success banner.
func (f *Form) Succeed(msg string) {
	f.banner.Set(Banner{Kind: BannerSuccess, Message: msg}, f.profile.BannerTTL)
}

// Fail shows an error banner.
func (f *Form) Fail(msg string) {
	f.banner.Set(Banner{Kind: BannerError, Message: msg}, f.profile.BannerTTL)
}

// Banner returns the current banner, if any.
func (f *Form) Banner() (Banner, bool) {
	return f.banner.Get()
}

// Reset empties every field and drops backend errors. The banner is kept so
// a success message survives the reset that follows a successful submit.
func (f *Form) Reset() {
	f.mu.Lock()
	pending := f.pending
	f.pending = timers.Handle{}
	for _, name := range f.order {
		f.fields[name] = &FormField{Name: name}
	}
	f.mu.Unlock()

	pending.Stop()
	f.backend.Clear()
}

// Close cancels pending validation and banner timers.
func (f *Form) Close() {
	f.scope.Close()
}

func (f *Form) validateTouched() {
	f.mu.Lock()
	f.pending = timers.Handle{}
	values := f.valuesLocked()
	for _, name := range f.order {
		ff := f.fields[name]
		ff.Error = ""
		if ff.Touched {
			ff.Error = f.validator.Validate(name, ff.Value, values)
		}
	}
	local := f.localErrorsLocked()
	cb := f.onValidate
	f.mu.Unlock()

	if cb != nil {
		backend, _ := f.backend.Get()
		cb(local.Merge(backend))
	}
}

func (f *Form) valuesLocked() Values {
	values := make(Values, len(f.order))
	for _, name := range f.order {
		values[name] = f.fields[name].Value
	}
	return values
}

func (f *Form) localErrorsLocked() Errors {
	errs := make(Errors)
	for _, name := range f.order {
		if ff := f.fields[name]; ff.Touched && ff.Error != "" {
			errs[name] = ff.Error
		}
	}
	return errs
}
