package twitter

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// oauth1Signer signs v1.1 requests with OAuth 1.0a HMAC-SHA1
type oauth1Signer struct {
	consumerKey    string
	consumerSecret string
	token          string
	tokenSecret    string
	nowFn          func() time.Time
	nonceFn        func() string
}

func newOAuth1Signer(creds Credentials) *oauth1Signer {
	return &oauth1Signer{
		consumerKey:    creds.APIKey,
		consumerSecret: creds.APISecretKey,
		token:          creds.AccessToken,
		tokenSecret:    creds.AccessTokenSecret,
		nowFn:          time.Now,
		nonceFn:        func() string { return strconv.FormatInt(rand.Int63(), 36) },
	}
}

// sign sets the Authorization header for req; queryParams must be the
// exact parameters encoded in the request URL.
func (s *oauth1Signer) sign(req *http.Request, queryParams map[string]string) {
	oauth := map[string]string{
		"oauth_consumer_key":     s.consumerKey,
		"oauth_nonce":            s.nonceFn(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(s.nowFn().Unix(), 10),
		"oauth_token":            s.token,
		"oauth_version":          "1.0",
	}

	all := make(map[string]string, len(oauth)+len(queryParams))
	for k, v := range oauth {
		all[k] = v
	}
	for k, v := range queryParams {
		all[k] = v
	}

	baseURL := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path
	base := strings.ToUpper(req.Method) + "&" + rfc3986(baseURL) + "&" + rfc3986(joinSorted(all, "&", "%s=%s"))
	signingKey := rfc3986(s.consumerSecret) + "&" + rfc3986(s.tokenSecret)

	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(base))
	oauth["oauth_signature"] = base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req.Header.Set("Authorization", "OAuth "+joinSorted(oauth, ", ", `%s="%s"`))
	req.Header.Set("Accept", "application/json")
}

// joinSorted percent-encodes and joins m in key order using format for each pair
func joinSorted(m map[string]string, sep, format string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(format, rfc3986(k), rfc3986(m[k])))
	}
	return strings.Join(parts, sep)
}

// encodeQuery encodes params in key order so the URL matches the signature base
func encodeQuery(params map[string]string) string {
	return joinSorted(params, "&", "%s=%s")
}

// rfc3986 percent-encodes s as OAuth requires
func rfc3986(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(url.QueryEscape(s), "+", "%20"), "*", "%2A")
}
