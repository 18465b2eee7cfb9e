package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"feedscraper/pkg/errors"

	"github.com/tidwall/gjson"
)

const maxLoginSteps = 12

// Session is an authenticated connection to the platform.
// It is safe for sequential use by one collector at a time.
type Session struct {
	client     *Client
	http       *http.Client
	oauth      *oauth1Signer
	guestToken string
	username   string

	mu      sync.Mutex
	userIDs map[string]string

	now func() time.Time
}

// Login opens a session. Username/password credentials are preferred;
// OAuth 1.0a keys are used when no password is configured.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	s := c.newSession()

	switch {
	case creds.HasPassword():
		c.logger.InfoWithFields("logging in", map[string]interface{}{
			"username": creds.Username,
			"method":   "password",
		})
		if err := s.passwordLogin(ctx, creds); err != nil {
			return nil, err
		}
	case creds.HasOAuth1():
		c.logger.InfoWithFields("logging in", map[string]interface{}{"method": "oauth1"})
		s.oauth = newOAuth1Signer(creds)
	default:
		return nil, errors.New(errors.ErrorTypeAuth, "no credentials configured: set a username and password or all four API keys")
	}

	s.username = creds.Username
	c.logger.Info("login successful")
	return s, nil
}

func (c *Client) newSession() *Session {
	jar, _ := cookiejar.New(nil)
	return &Session{
		client: c,
		http: &http.Client{
			Transport: c.transport,
			Timeout:   c.timeout,
			Jar:       jar,
		},
		userIDs: make(map[string]string),
		now:     time.Now,
	}
}

// LoggedIn reports whether the session holds usable credentials
func (s *Session) LoggedIn() bool {
	if s.oauth != nil {
		return true
	}
	return s.cookie("auth_token") != "" && s.cookie("ct0") != ""
}

// Username returns the account the session was opened for, if any
func (s *Session) Username() string {
	return s.username
}

func (s *Session) passwordLogin(ctx context.Context, creds Credentials) error {
	if err := s.activateGuest(ctx); err != nil {
		return err
	}

	flowToken, subtask, err := s.executeFlow(ctx, s.client.apiURL+onboardingTaskPath+"?flow_name=login", map[string]interface{}{
		"flow_name": "login",
		"input_flow_data": map[string]interface{}{
			"flow_context": map[string]interface{}{
				"debug_overrides": map[string]interface{}{},
				"start_location":  map[string]interface{}{"location": "splash_screen"},
			},
		},
	})
	if err != nil {
		return err
	}

	for step := 0; step < maxLoginSteps; step++ {
		switch subtask {
		case "LoginSuccessSubtask":
			return nil
		case "DenyLoginSubtask":
			return errors.New(errors.ErrorTypeAuth, "login denied by the platform")
		case "":
			if s.LoggedIn() {
				return nil
			}
			return errors.New(errors.ErrorTypeAuth, "login flow ended without a session")
		}

		input, err := s.subtaskInput(subtask, creds)
		if err != nil {
			return err
		}
		s.client.logger.DebugWithFields("login subtask", map[string]interface{}{"subtask": subtask})

		flowToken, subtask, err = s.executeFlow(ctx, s.client.apiURL+onboardingTaskPath, map[string]interface{}{
			"flow_token":     flowToken,
			"subtask_inputs": []interface{}{input},
		})
		if err != nil {
			return err
		}
	}
	return errors.New(errors.ErrorTypeAuth, "login flow did not complete after %d steps", maxLoginSteps)
}

// subtaskInput answers one onboarding subtask
func (s *Session) subtaskInput(subtask string, creds Credentials) (map[string]interface{}, error) {
	switch subtask {
	case "LoginJsInstrumentationSubtask":
		return map[string]interface{}{
			"subtask_id":         subtask,
			"js_instrumentation": map[string]interface{}{"response": "{}", "link": "next_link"},
		}, nil
	case "LoginEnterUserIdentifierSSO":
		return map[string]interface{}{
			"subtask_id": subtask,
			"settings_list": map[string]interface{}{
				"setting_responses": []interface{}{
					map[string]interface{}{
						"key": "user_identifier",
						"response_data": map[string]interface{}{
							"text_data": map[string]interface{}{"result": creds.Username},
						},
					},
				},
				"link": "next_link",
			},
		}, nil
	case "LoginEnterPassword":
		return map[string]interface{}{
			"subtask_id":     subtask,
			"enter_password": map[string]interface{}{"password": creds.Password, "link": "next_link"},
		}, nil
	case "AccountDuplicationCheck":
		return map[string]interface{}{
			"subtask_id":              subtask,
			"check_logged_in_account": map[string]interface{}{"link": "AccountDuplicationCheck_false"},
		}, nil
	case "LoginTwoFactorAuthChallenge":
		if creds.TwoFactorSecret == "" {
			return nil, errors.New(errors.ErrorTypeAuth, "two-factor authentication required but no secret configured")
		}
		code, err := totpCode(creds.TwoFactorSecret, s.now())
		if err != nil {
			return nil, errors.Wrap(errors.ErrorTypeConfig, err, "failed to generate two-factor code")
		}
		return enterText(subtask, code), nil
	case "LoginAcid", "LoginEnterAlternateIdentifierSubtask":
		if creds.Email == "" {
			return nil, errors.New(errors.ErrorTypeAuth, "%s requires an email address but none is configured", subtask)
		}
		return enterText(subtask, creds.Email), nil
	default:
		return nil, errors.New(errors.ErrorTypeAuth, "unsupported login subtask: %s", subtask)
	}
}

func enterText(subtask, text string) map[string]interface{} {
	return map[string]interface{}{
		"subtask_id": subtask,
		"enter_text": map[string]interface{}{"text": text, "link": "next_link"},
	}
}

func (s *Session) activateGuest(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.apiURL+guestActivatePath, nil)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeNetwork, err, "failed to create guest request")
	}
	body, err := s.client.doRequest(s.http, req, map[string]string{
		"Authorization": "Bearer " + s.client.bearer,
	})
	if err != nil {
		return errors.Wrap(errors.ErrorTypeAuth, err, "failed to obtain guest token")
	}
	token := gjson.GetBytes(body, "guest_token").String()
	if token == "" {
		return errors.New(errors.ErrorTypeAuth, "guest token missing from response")
	}
	s.guestToken = token
	return nil
}

// executeFlow posts one onboarding step and returns the next flow token and subtask
func (s *Session) executeFlow(ctx context.Context, endpoint string, payload interface{}) (string, string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", "", errors.Wrap(errors.ErrorTypeParsing, err, "failed to encode login step")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", "", errors.Wrap(errors.ErrorTypeNetwork, err, "failed to create login request")
	}

	headers := s.headers()
	headers["Content-Type"] = "application/json"
	headers["x-guest-token"] = s.guestToken

	body, err := s.client.doRequest(s.http, req, headers)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeAuth) {
			return "", "", err
		}
		return "", "", errors.Wrap(errors.ErrorTypeAuth, err, "login step failed")
	}

	if msg := gjson.GetBytes(body, "errors.0.message").String(); msg != "" {
		return "", "", errors.New(errors.ErrorTypeAuth, "login failed: %s", msg)
	}
	flowToken := gjson.GetBytes(body, "flow_token").String()
	if flowToken == "" {
		return "", "", errors.New(errors.ErrorTypeAuth, "login flow token missing from response")
	}
	return flowToken, gjson.GetBytes(body, "subtasks.0.subtask_id").String(), nil
}

// headers returns the request headers for a cookie session
func (s *Session) headers() map[string]string {
	h := map[string]string{
		"Authorization":             "Bearer " + s.client.bearer,
		"x-twitter-active-user":     "yes",
		"x-twitter-client-language": "en",
	}
	if ct0 := s.cookie("ct0"); ct0 != "" {
		h["x-csrf-token"] = ct0
	}
	if s.cookie("auth_token") != "" {
		h["x-twitter-auth-type"] = "OAuth2Session"
	} else if s.guestToken != "" {
		h["x-guest-token"] = s.guestToken
	}
	return h
}

// cookie looks up a session cookie set by either API host
func (s *Session) cookie(name string) string {
	for _, raw := range []string{s.client.apiURL, s.client.graphqlURL} {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		for _, c := range s.http.Jar.Cookies(u) {
			if c.Name == name {
				return c.Value
			}
		}
	}
	return ""
}
