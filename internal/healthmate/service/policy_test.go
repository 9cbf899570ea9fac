package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		policy   *PasswordPolicy
		password string
		inputs   []string
		wantErr  bool
	}{
		{"nil policy accepts six runes", nil, "abcdef", nil, false},
		{"nil policy rejects five runes", nil, "abcde", nil, true},
		{"length counts runes not bytes", NewPasswordPolicy(0), "ümläut", nil, false},
		{"upper bound", NewPasswordPolicy(0), strings.Repeat("x", MaxPasswordLength+1), nil, true},
		{"at upper bound", NewPasswordPolicy(0), strings.Repeat("x", MaxPasswordLength), nil, false},
		{"score zero disables strength", NewPasswordPolicy(0), "password", nil, false},
		{"weak password under score 3", NewPasswordPolicy(3), "password1", nil, true},
		{"strong password under score 3", NewPasswordPolicy(3), "vT9#qLm2$Zx8!wRp", nil, false},
		{"scores above four are capped", NewPasswordPolicy(9), "vT9#qLm2$Zx8!wRp", nil, false},
		{"personal details are weak", NewPasswordPolicy(3), "maryjohnson1975", []string{"maryjohnson1975@example.com", "Mary Johnson"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate(tt.password, tt.inputs...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
