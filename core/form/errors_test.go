package form_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/authscreens/core/form"
)

func TestMapBackendErrors(t *testing.T) {
	t.Parallel()

	routes := form.SignupProfile().ErrorRoutes

	tests := []struct {
		name     string
		messages []string
		want     form.Errors
	}{
		{
			name:     "keyword routing",
			messages: []string{"Email already taken", "Password too weak", "Username exists"},
			want: form.Errors{
				form.FieldEmail:    "Email already taken",
				form.FieldPassword: "Password too weak",
				form.FieldName:     "Username exists",
			},
		},
		{
			name:     "case insensitive",
			messages: []string{"INVALID EMAIL"},
			want:     form.Errors{form.FieldEmail: "INVALID EMAIL"},
		},
		{
			name:     "first route wins",
			messages: []string{"email and password mismatch"},
			want:     form.Errors{form.FieldEmail: "email and password mismatch"},
		},
		{
			name:     "unmatched goes to form bucket",
			messages: []string{"Server is busy"},
			want:     form.Errors{form.FieldForm: "Server is busy"},
		},
		{
			name:     "last message per field wins",
			messages: []string{"email taken", "email blocked"},
			want:     form.Errors{form.FieldEmail: "email blocked"},
		},
		{
			name:     "empty messages skipped",
			messages: []string{"", "oops"},
			want:     form.Errors{form.FieldForm: "oops"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, form.MapBackendErrors(tt.messages, routes)); diff != "" {
				t.Errorf("MapBackendErrors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeFieldErrors(t *testing.T) {
	t.Parallel()

	got := form.MergeFieldErrors(map[string]string{
		"email":   "taken",
		"captcha": "wrong",
		"token":   "expired",
		"other":   "",
	}, form.FieldEmail, form.FieldPassword)

	want := form.Errors{
		form.FieldEmail: "taken",
		form.FieldForm:  "expired",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergeFieldErrors mismatch (-want +got):\n%s", diff)
	}

	got = form.MergeFieldErrors(map[string]string{"form": "locked", "captcha": "wrong"})
	assert.Equal(t, "locked", got.Get(form.FieldForm))
}

func TestErrors_Merge(t *testing.T) {
	t.Parallel()

	base := form.Errors{form.FieldEmail: "local", form.FieldPassword: "weak"}
	merged := base.Merge(form.Errors{form.FieldEmail: "remote", form.FieldForm: ""})

	assert.Equal(t, form.Errors{form.FieldEmail: "remote", form.FieldPassword: "weak"}, merged)
	assert.Equal(t, "local", base.Get(form.FieldEmail))
	assert.True(t, merged.Any())
	assert.False(t, form.Errors{"x": ""}.Any())
}
