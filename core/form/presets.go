package form

// Profile names used by the screens and by LoadProfiles documents.
const (
	ProfileSignup         = "signup"
	ProfileRegister       = "register"
	ProfileLogin          = "login"
	ProfileSignin         = "signin"
	ProfileForgotPassword = "forgot-password"
	ProfileNewPassword    = "new-password"
)

const registerUsernameLength = "Username must be between 3 and 20 characters."

// SignupProfile is the account sign-up form: a "name" field with a 3 to 30
// character username, validated on blur and then live.
func SignupProfile() Profile {
	return Profile{
		Name: ProfileSignup,
		Username: &UsernamePolicy{
			Field: FieldName,
			Min:   3,
			Max:   30,
			ForbiddenStart: []PatternRule{
				{Pattern: `^[\d\s#_]`, Message: "Username cannot start with number, space, '#' or '_'."},
			},
			Charset: `^[a-zA-Z0-9_-]+$`,
			Messages: UsernameMessages{
				Required: "Username is required.",
				TooShort: "Username must be at least 3 characters.",
				TooLong:  "Username cannot be longer than 30 characters.",
				Charset:  "Username can only contain letters, numbers, '-' and '_'.",
			},
		},
		Email: &EmailPolicy{
			Field: FieldEmail,
			Messages: EmailMessages{
				Required: "Email is required.",
				Invalid:  "Email is not valid.",
			},
		},
		Password: &PasswordPolicy{
			Field: FieldPassword,
			Min:   8,
			Messages: PasswordMessages{
				Required: "Password is required.",
				TooShort: "Password must be at least 8 characters.",
				Upper:    "Password must contain at least one uppercase letter.",
				Lower:    "Password must contain at least one lowercase letter.",
				Digit:    "Password must contain at least one number.",
				Symbol:   "Password must contain at least one symbol.",
			},
		},
		ErrorRoutes: []ErrorRoute{
			{Field: FieldEmail, Keywords: []string{"email"}},
			{Field: FieldPassword, Keywords: []string{"password"}},
			{Field: FieldName, Keywords: []string{"name", "username"}},
		},
		Timing:    OnBlurThenLive,
		Debounce:  DefaultDebounce,
		BannerTTL: DefaultBannerTTL,
	}
}

// RegisterProfile is the registration form: a "username" field of 3 to 20
// characters measured after trimming, validated live with an 80ms debounce.
func RegisterProfile() Profile {
	return Profile{
		Name: ProfileRegister,
		Username: &UsernamePolicy{
			Field:         FieldUsername,
			Min:           3,
			Max:           20,
			TrimForLength: true,
			ForbiddenStart: []PatternRule{
				{Pattern: `^[0-9]`, Message: "Username cannot start with a number."},
				{Pattern: `^[^a-zA-Z]`, Message: "Username cannot start with special characters."},
			},
			Charset: `^[a-zA-Z0-9_]+$`,
			Messages: UsernameMessages{
				Required: registerUsernameLength,
				TooShort: registerUsernameLength,
				TooLong:  registerUsernameLength,
				Charset:  "Username can only contain letters, numbers, and underscores.",
			},
		},
		Email: &EmailPolicy{
			Field:    FieldEmail,
			Messages: EmailMessages{Invalid: "Invalid email format."},
		},
		Password: strictPassword(),
		ErrorRoutes: []ErrorRoute{
			{Field: FieldUsername, Keywords: []string{"username"}},
			{Field: FieldEmail, Keywords: []string{"email"}},
			{Field: FieldPassword, Keywords: []string{"password"}},
		},
		Timing:    DebouncedLive,
		Debounce:  DefaultDebounce,
		BannerTTL: DefaultBannerTTL,
	}
}

// LoginProfile only requires email and password.
func LoginProfile() Profile {
	return Profile{
		Name: ProfileLogin,
		Email: &EmailPolicy{
			Field:    FieldEmail,
			Messages: EmailMessages{Required: "Email is required."},
		},
		Password: &PasswordPolicy{
			Field:    FieldPassword,
			Messages: PasswordMessages{Required: "Password is required."},
		},
		Timing:    OnBlurThenLive,
		Debounce:  DefaultDebounce,
		BannerTTL: DefaultBannerTTL,
	}
}

// SigninProfile is the legacy sign-in form with one shared message.
func SigninProfile() Profile {
	const missing = "Please enter your email and password."
	return Profile{
		Name: ProfileSignin,
		Email: &EmailPolicy{
			Field:    FieldEmail,
			Messages: EmailMessages{Required: missing},
		},
		Password: &PasswordPolicy{
			Field:    FieldPassword,
			Messages: PasswordMessages{Required: missing},
		},
		Timing:    OnBlurThenLive,
		Debounce:  DefaultDebounce,
		BannerTTL: DefaultBannerTTL,
	}
}

// ForgotPasswordProfile requires a well-formed email.
func ForgotPasswordProfile() Profile {
	return Profile{
		Name: ProfileForgotPassword,
		Email: &EmailPolicy{
			Field: FieldEmail,
			Messages: EmailMessages{
				Required: "Email is required",
				Invalid:  "Please enter a valid email address",
			},
		},
		ErrorRoutes: []ErrorRoute{
			{Field: FieldEmail, Keywords: []string{"email"}},
		},
		Timing:    OnBlurThenLive,
		Debounce:  DefaultDebounce,
		BannerTTL: DefaultBannerTTL,
	}
}

// NewPasswordProfile sets a new password with confirmation.
func NewPasswordProfile() Profile {
	return Profile{
		Name:     ProfileNewPassword,
		Password: strictPassword(),
		Confirm: &ConfirmPolicy{
			Field:   FieldConfirmPassword,
			Against: FieldPassword,
			Message: "Passwords do not match.",
		},
		ErrorRoutes: []ErrorRoute{
			{Field: FieldPassword, Keywords: []string{"password"}},
		},
		Timing:    DebouncedLive,
		Debounce:  DefaultDebounce,
		BannerTTL: DefaultBannerTTL,
	}
}

// Profiles returns every built-in profile keyed by name.
func Profiles() map[string]Profile {
	return map[string]Profile{
		ProfileSignup:         SignupProfile(),
		ProfileRegister:       RegisterProfile(),
		ProfileLogin:          LoginProfile(),
		ProfileSignin:         SigninProfile(),
		ProfileForgotPassword: ForgotPasswordProfile(),
		ProfileNewPassword:    NewPasswordProfile(),
	}
}

// strictPassword requires 8 characters with every class and a symbol from
// a fixed set. An empty password reports the length message.
func strictPassword() *PasswordPolicy {
	return &PasswordPolicy{
		Field:   FieldPassword,
		Min:     8,
		Symbols: "!@#$%^&*",
		Messages: PasswordMessages{
			TooShort: "Password must be at least 8 characters.",
			Upper:    "Password must contain at least one uppercase letter.",
			Lower:    "Password must contain at least one lowercase letter.",
			Digit:    "Password must contain at least one digit.",
			Symbol:   "Password must contain at least one special character (!@#$%^&*).",
		},
	}
}
