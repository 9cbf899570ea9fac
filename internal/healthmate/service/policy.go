package service

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
	MaxNameLength     = 100
)

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordPolicy applies a sequence of password rules. A nil policy only
// enforces the length bounds.
type PasswordPolicy struct {
	rules []PasswordRule
}

// NewPasswordPolicy constructs the registration policy: rune length bounds,
// then a zxcvbn score of at least minScore (0 disables the strength check).
func NewPasswordPolicy(minScore int) *PasswordPolicy {
	return &PasswordPolicy{rules: []PasswordRule{
		LengthRule(MinPasswordLength, MaxPasswordLength),
		StrengthRule(minScore),
	}}
}

// Validate returns the first violated rule. userInputs are fed to zxcvbn so
// passwords built from the email or name score lower.
func (p *PasswordPolicy) Validate(password string, userInputs ...string) error {
	if p == nil {
		return LengthRule(MinPasswordLength, MaxPasswordLength).Validate(password)
	}
	for _, rule := range p.rules {
		if sr, ok := rule.(strengthRule); ok {
			rule = sr.with(userInputs)
		}
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// LengthRule bounds the password length in runes.
func LengthRule(min, max int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		return validation.Validate(password, validation.RuneLength(min, max))
	})
}

type strengthRule struct {
	minScore   int
	userInputs []string
}

func (r strengthRule) with(userInputs []string) strengthRule {
	r.userInputs = userInputs
	return r
}

func (r strengthRule) Validate(password string) error {
	if r.minScore <= 0 {
		return nil
	}
	minScore := min(r.minScore, 4)

	result := zxcvbn.PasswordStrength(password, r.userInputs)
	if result.Score >= minScore {
		return nil
	}
	return fmt.Errorf("password is too weak (strength %d of %d)", result.Score, minScore)
}

// StrengthRule enforces a minimum zxcvbn score to reject weak passwords.
func StrengthRule(minScore int) PasswordRule {
	return strengthRule{minScore: minScore}
}
