// Package auth verifies the single shared credential pair kept in the
// login configuration file.
package auth

import (
	"os"
	"regexp"

	"github.com/soverin/inkpot/internal/apperr"
)

// credRe matches the single-line credential format [username]:[password].
var credRe = regexp.MustCompile(`\[([^\]]+)\]:\[([^\]]+)\]`)

// Verifier checks submitted credentials against the configuration file.
// The file is re-read on every attempt, so edits take effect without a
// restart.
type Verifier struct {
	path string
}

// NewVerifier creates a verifier reading credentials from path.
func NewVerifier(path string) *Verifier {
	return &Verifier{path: path}
}

// Verify returns nil when username and password match the configured
// pair. A missing or malformed credential file fails with
// apperr.ErrBadCredentialFile; a mismatch with apperr.ErrBadCredentials.
func (v *Verifier) Verify(username, password string) error {
	data, err := os.ReadFile(v.path)
	if err != nil {
		return apperr.ErrBadCredentialFile
	}
	m := credRe.FindSubmatch(data)
	if m == nil {
		return apperr.ErrBadCredentialFile
	}
	if username != string(m[1]) || password != string(m[2]) {
		return apperr.ErrBadCredentials
	}
	return nil
}
