package form_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authscreens/core/form"
	"github.com/dmitrymomot/authscreens/pkg/timers"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newForm(t *testing.T, p form.Profile, opts ...form.Option) (*form.Form, *timers.FakeClock) {
	t.Helper()
	clock := timers.NewFakeClock(epoch)
	f := form.New(p, append([]form.Option{form.WithClock(clock)}, opts...)...)
	t.Cleanup(f.Close)
	return f, clock
}

func TestForm_OnBlurThenLive(t *testing.T) {
	t.Parallel()

	f, _ := newForm(t, form.SignupProfile())

	f.Change(form.FieldEmail, "bad")
	assert.Empty(t, f.VisibleErrors(), "untouched fields are not validated on change")

	f.Blur(form.FieldEmail)
	assert.Equal(t, "Email is not valid.", f.VisibleErrors().Get(form.FieldEmail))

	f.Change(form.FieldEmail, "a@b.com")
	assert.False(t, f.VisibleErrors().Has(form.FieldEmail), "touched fields validate live")

	f.Change(form.FieldEmail, "")
	assert.Equal(t, "Email is required.", f.VisibleErrors().Get(form.FieldEmail))
}

func TestForm_DebouncedLive(t *testing.T) {
	t.Parallel()

	var batches []form.Errors
	f, clock := newForm(t, form.RegisterProfile(), form.WithOnValidate(func(errs form.Errors) {
		batches = append(batches, errs)
	}))

	f.Change(form.FieldUsername, "1")
	clock.Advance(50 * time.Millisecond)
	f.Change(form.FieldUsername, "1ab")
	clock.Advance(50 * time.Millisecond)
	assert.Empty(t, batches, "later change cancels the pending batch")
	assert.Empty(t, f.VisibleErrors())

	clock.Advance(30 * time.Millisecond)
	require.Len(t, batches, 1)
	want := form.Errors{form.FieldUsername: "Username cannot start with a number."}
	if diff := cmp.Diff(want, batches[0]); diff != "" {
		t.Errorf("batch mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, want, f.VisibleErrors())
	assert.False(t, f.VisibleErrors().Has(form.FieldEmail), "untouched fields stay silent")
}

func TestForm_SubmitValidatesFresh(t *testing.T) {
	t.Parallel()

	f, clock := newForm(t, form.RegisterProfile())

	f.Change(form.FieldUsername, "john_doe")
	f.Change(form.FieldEmail, "a@b.com")
	f.Change(form.FieldPassword, "Abcdef1!")

	values, errs := f.Submit()
	assert.False(t, errs.Any())
	assert.Equal(t, "john_doe", values.Get(form.FieldUsername))

	// The pending debounce was cancelled by Submit.
	assert.Equal(t, 0, clock.Pending())
}

func TestForm_SubmitTouchesEveryField(t *testing.T) {
	t.Parallel()

	f, _ := newForm(t, form.SignupProfile())
	f.Change(form.FieldEmail, "a@b.com")

	_, errs := f.Submit()
	assert.Equal(t, "Username is required.", errs.Get(form.FieldName))
	assert.Equal(t, "Password is required.", errs.Get(form.FieldPassword))
	assert.False(t, errs.Has(form.FieldEmail))

	for _, field := range f.Fields() {
		assert.True(t, field.Touched, field.Name)
	}
}

func TestForm_BackendErrorsExpire(t *testing.T) {
	t.Parallel()

	f, clock := newForm(t, form.SignupProfile())
	f.Change(form.FieldEmail, "a@b.com")
	f.Blur(form.FieldEmail)

	mapped := f.ApplyBackendMessages("Email already registered", "Rate limit exceeded")
	assert.Equal(t, "Rate limit exceeded", mapped.Get(form.FieldForm))

	visible := f.VisibleErrors()
	assert.Equal(t, "Email already registered", visible.Get(form.FieldEmail))
	assert.Equal(t, "Rate limit exceeded", visible.Get(form.FieldForm))

	clock.Advance(form.DefaultBannerTTL)
	assert.Empty(t, f.VisibleErrors())
}

func TestForm_Banners(t *testing.T) {
	t.Parallel()

	f, clock := newForm(t, form.SignupProfile())

	f.Succeed("Signup successful!")
	b, ok := f.Banner()
	require.True(t, ok)
	assert.Equal(t, form.BannerSuccess, b.Kind)

	f.Change(form.FieldName, "x")
	_, ok = f.Banner()
	assert.False(t, ok, "typing clears the success banner")

	f.Fail("Network error. Try again.")
	f.Change(form.FieldName, "xy")
	b, ok = f.Banner()
	require.True(t, ok, "error banners stay until their TTL")
	assert.Equal(t, form.BannerError, b.Kind)

	clock.Advance(3 * time.Second)
	_, ok = f.Banner()
	assert.False(t, ok)
}

func TestForm_Reset(t *testing.T) {
	t.Parallel()

	f, _ := newForm(t, form.SignupProfile())
	f.Fill(form.Values{form.FieldName: "john", form.FieldEmail: "bad", "unknown": "x"})
	f.Blur(form.FieldEmail)
	f.ApplyBackendErrors(form.Errors{form.FieldForm: "boom"})
	f.Succeed("Signup successful!")

	f.Reset()

	for _, field := range f.Fields() {
		assert.Equal(t, form.FormField{Name: field.Name}, field)
	}
	assert.Empty(t, f.VisibleErrors())
	_, ok := f.Banner()
	assert.True(t, ok)
}

func TestForm_CloseStopsTimers(t *testing.T) {
	t.Parallel()

	called := false
	f, clock := newForm(t, form.RegisterProfile(), form.WithOnValidate(func(form.Errors) { called = true }))

	f.Change(form.FieldUsername, "x")
	f.Close()
	clock.Advance(time.Second)

	assert.False(t, called)
	assert.Equal(t, 0, clock.Pending())
}

func TestForm_ConfirmPasswordFlow(t *testing.T) {
	t.Parallel()

	f, _ := newForm(t, form.NewPasswordProfile())
	f.Change(form.FieldPassword, "Abcdef1!")
	f.Change(form.FieldConfirmPassword, "Abcdef1")

	_, errs := f.Submit()
	assert.Equal(t, form.Errors{form.FieldConfirmPassword: "Passwords do not match."}, errs)

	f.Change(form.FieldConfirmPassword, "Abcdef1!")
	_, errs = f.Submit()
	assert.False(t, errs.Any())
}

func TestForm_OnBlurRevalidatesConfirmation(t *testing.T) {
	t.Parallel()

	p := form.NewPasswordProfile()
	p.Timing = form.OnBlurThenLive
	f, _ := newForm(t, p)

	f.Change(form.FieldPassword, "Abcdef1!")
	f.Blur(form.FieldPassword)
	f.Change(form.FieldConfirmPassword, "Abcdef1?")
	f.Blur(form.FieldConfirmPassword)
	assert.Equal(t, "Passwords do not match.", f.VisibleErrors().Get(form.FieldConfirmPassword))

	f.Change(form.FieldPassword, "Abcdef1?")
	assert.False(t, f.VisibleErrors().Has(form.FieldConfirmPassword), "confirmation follows the password")

	f.Change(form.FieldPassword, "Abcdef1!")
	assert.Equal(t, "Passwords do not match.", f.VisibleErrors().Get(form.FieldConfirmPassword))
}
