package twitter

import (
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
)

// totpCode derives the RFC 6238 code for a base32 secret at time t.
// Secrets are often pasted in space-separated groups; the library handles case and padding.
func totpCode(secret string, t time.Time) (string, error) {
	return totp.GenerateCode(strings.ReplaceAll(secret, " ", ""), t)
}
