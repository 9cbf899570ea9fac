package service

import "github.com/healthmate/server/internal/healthmate/domain"

// Identity is an authenticated caller: the token subject (email) and the
// account id the token was issued for.
type Identity struct {
	Email     string
	AccountID string
}

// EmailIdentity identifies a caller by email alone. The account id binding
// is skipped, so only use it where the email was already authenticated
// in-process.
func EmailIdentity(email string) Identity { return Identity{Email: email} }

// owns reports whether acct is the account the identity was issued for.
// An account re-registered under the same email has a new id and is not
// owned by tokens minted for its predecessor.
func (id Identity) owns(acct domain.Account) bool {
	return id.AccountID == "" || id.AccountID == acct.ID
}
