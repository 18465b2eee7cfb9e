// Package twitter is a minimal client for reading user timelines.
//
// A Client carries transport settings (timeout, SOCKS proxy, user agent).
// Login opens a Session either through the web onboarding flow using a
// username and password, with optional TOTP two-factor and email
// confirmation, or with OAuth 1.0a application keys. Sessions expose
// timelines as iterators:
//
//	client, _ := twitter.NewClient(twitter.WithTimeout(30 * time.Second))
//	session, err := client.Login(ctx, creds)
//	for tweet, err := range session.GetTweets(ctx, "golang", 20) {
//		...
//	}
//
// Breaking out of the loop stops further page requests.
package twitter
