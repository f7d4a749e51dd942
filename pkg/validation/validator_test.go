package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPassword(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"short1", false},
		{"alllettersnodigit", false},
		{"1234567890", false},
		{"Passw0rd", true},
		{"P@ssw0rd!", true},
		{"Pass w0rd", false},
		{"Passw0rd^", false},
		{strings.Repeat("a1", 64), true},
		{strings.Repeat("a1", 64) + "x", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.ok, CheckPassword(tc.in) == "")
		})
	}
}

type registerInput struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,mailbox"`
	Password string `json:"password" validate:"required,password_policy"`
	Answer   string `json:"answer" validate:"omitempty,answer_choice"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestCustomTags(t *testing.T) {
	v := newValidator()

	ok := registerInput{Username: "alice.b", Email: "alice@example.com", Password: "Passw0rd", Answer: "c"}
	require.NoError(t, v.Struct(ok))

	bad := registerInput{Username: "alice b", Email: "not-an-email", Password: "short1", Answer: "E"}
	err := v.Struct(bad)
	require.Error(t, err)

	details := ToDetails(err)
	assert.Contains(t, details["username"], "valid username")
	assert.Equal(t, "Enter a valid email address.", details["email"])
	assert.Equal(t, "Password must be between 8 and 128 characters.", details["password"])
	assert.Equal(t, "Must be one of A, B, C, D.", details["answer"])
}

func TestToDetails_BadJSON(t *testing.T) {
	var dst map[string]any
	err := json.Unmarshal([]byte(`{"a":`), &dst)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	err = json.Unmarshal([]byte(`{"a" 1}`), &dst)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
}
