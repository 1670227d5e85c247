package emailtemplate

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Account Confirmation", "accountconfirmation"},
		{"  Password   Reset ", "passwordreset"},
		{"Account\tId\nRecovery", "accountidrecovery"},
		{"ALLCAPS", "allcaps"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[a-zA-Z0-9 \t]{0,40}`).Draw(t, "name")
		n := Normalize(name)

		if Normalize(n) != n {
			t.Fatalf("not idempotent: %q -> %q -> %q", name, n, Normalize(n))
		}
		if strings.ToLower(n) != n {
			t.Fatalf("not lowercase: %q", n)
		}
		if strings.IndexFunc(n, unicode.IsSpace) >= 0 {
			t.Fatalf("contains whitespace: %q", n)
		}
	})
}

func TestTypePath(t *testing.T) {
	require.Equal(t, "/identity/email/accountconfirmation", TypePath(TemplatePath, "Account Confirmation"))
	require.Equal(t, "/x/y/passwordreset", TypePath("x/y/", "Password Reset"))
}

func TestValidateTemplateType(t *testing.T) {
	v := DefaultValidator()

	for _, ok := range []string{"Account Confirmation", "abc", "Password Reset 2"} {
		require.NoError(t, v.ValidateTemplateType(ok), ok)
	}
	for _, bad := range []string{"", "   ", "a/b", "a-b", "a.b", "a;b", "ñandú", `a"b`} {
		err := v.ValidateTemplateType(bad)
		require.True(t, IsClient(err), "%q: got %v", bad, err)
	}
}

func TestValidateLocale(t *testing.T) {
	v := DefaultValidator()

	for _, ok := range []string{"en_US", "es-AR", "pt_BR", "zh_Hans_CN"} {
		require.NoError(t, v.ValidateLocale(ok), ok)
	}
	for _, bad := range []string{"", " ", "en;US", "en<US", "en,US", "en'US"} {
		require.True(t, IsClient(v.ValidateLocale(bad)), bad)
	}
}

func TestValidateTemplate_CorrectsType(t *testing.T) {
	tpl := &EmailTemplate{
		TemplateDisplayName: "Account Lock",
		TemplateType:        "wrong",
		Locale:              "en_US",
		Subject:             "s",
		Body:                "b",
		Footer:              "f",
	}
	require.NoError(t, DefaultValidator().ValidateTemplate(tpl))
	require.Equal(t, "accountlock", tpl.TemplateType)

	// Diferencias de mayúsculas se respetan
	tpl.TemplateType = "AccountLock"
	require.NoError(t, DefaultValidator().ValidateTemplate(tpl))
	require.Equal(t, "AccountLock", tpl.TemplateType)
}

func TestNewValidator_CustomPatterns(t *testing.T) {
	v, err := NewValidator(ValidationConfig{TemplateNamePattern: `^[a-z_]+$`})
	require.NoError(t, err)

	require.NoError(t, v.ValidateTemplateType("account_lock"))
	require.True(t, IsClient(v.ValidateTemplateType("Account Lock")))
	// El blacklist por defecto sigue activo
	require.True(t, IsClient(v.ValidateLocale("en;US")))

	_, err = NewValidator(ValidationConfig{InvalidCharsPattern: `[`})
	require.Error(t, err)
}
