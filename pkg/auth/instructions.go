package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowCredentialGuide explains the ways credentials can be supplied
func ShowCredentialGuide(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "TWITTER CREDENTIALS")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Log in with a username and password (optionally email and 2FA secret),")
	fmt.Fprintln(w, "or with the four OAuth 1.0a values of a developer app.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  1. feedscraper auth login           store them in the keychain")
	fmt.Fprintln(w, "  2. twitter: section of config.yaml  see feedscraper config init")
	fmt.Fprintln(w, "  3. environment variables or .env:")
	for _, name := range []string{
		"TWITTER_USERNAME", "TWITTER_PASSWORD", "TWITTER_EMAIL", "TWITTER_TWO_FACTOR_SECRET",
		"TWITTER_API_KEY", "TWITTER_API_SECRET_KEY", "TWITTER_ACCESS_TOKEN", "TWITTER_ACCESS_TOKEN_SECRET",
	} {
		fmt.Fprintf(w, "       %s\n", name)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stored credentials are encrypted on disk; set %s to choose the passphrase.\n", PassphraseEnv)
	fmt.Fprintln(w, strings.Repeat("=", 72))
}
