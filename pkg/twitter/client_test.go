package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"feedscraper/pkg/errors"
	"feedscraper/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform serves the onboarding flow, the user lookup and paged timelines
type fakePlatform struct {
	t *testing.T

	mu            sync.Mutex
	subtasks      []string
	seenInputs    []string
	timelineCalls int
	pages         map[string]string // cursor -> body
	lastOp        string
	lookupStatus  int
	v1Pages       map[string]string // max_id -> body
	v1Auth        []string
}

func newFakePlatform(t *testing.T) *fakePlatform {
	return &fakePlatform{
		t: t,
		subtasks: []string{
			"LoginJsInstrumentationSubtask",
			"LoginEnterUserIdentifierSSO",
			"LoginEnterPassword",
			"LoginTwoFactorAuthChallenge",
			"LoginAcid",
			"AccountDuplicationCheck",
			"LoginSuccessSubtask",
		},
		pages: map[string]string{},
	}
}

func (f *fakePlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == guestActivatePath:
		assert.Equal(f.t, "Bearer "+PublicBearerToken, r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"guest_token":"g-1"}`)

	case r.URL.Path == onboardingTaskPath:
		f.serveOnboarding(w, r)

	case strings.HasSuffix(r.URL.Path, "/UserByScreenName"):
		if f.lookupStatus != 0 {
			w.WriteHeader(f.lookupStatus)
			fmt.Fprint(w, `{"errors":[{"message":"lookup refused"}]}`)
			return
		}
		assert.Equal(f.t, "csrf-1", r.Header.Get("x-csrf-token"))
		assert.Equal(f.t, "OAuth2Session", r.Header.Get("x-twitter-auth-type"))
		fmt.Fprint(w, `{"data":{"user":{"result":{"__typename":"User","rest_id":"42"}}}}`)

	case strings.HasSuffix(r.URL.Path, "/UserTweets"), strings.HasSuffix(r.URL.Path, "/UserTweetsAndReplies"):
		f.timelineCalls++
		f.lastOp = r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		var vars struct {
			UserID string `json:"userId"`
			Count  int    `json:"count"`
			Cursor string `json:"cursor"`
		}
		require.NoError(f.t, json.Unmarshal([]byte(r.URL.Query().Get("variables")), &vars))
		assert.Equal(f.t, "42", vars.UserID)
		assert.LessOrEqual(f.t, vars.Count, MaxGraphQLPageSize)
		fmt.Fprint(w, f.pages[vars.Cursor])

	case r.URL.Path == userTimelinePath:
		f.v1Auth = append(f.v1Auth, r.Header.Get("Authorization"))
		fmt.Fprint(w, f.v1Pages[r.URL.Query().Get("max_id")])

	default:
		http.NotFound(w, r)
	}
}

func (f *fakePlatform) serveOnboarding(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, "g-1", r.Header.Get("x-guest-token"))

	var body struct {
		FlowName      string                   `json:"flow_name"`
		FlowToken     string                   `json:"flow_token"`
		SubtaskInputs []map[string]interface{} `json:"subtask_inputs"`
	}
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))

	step := 0
	if body.FlowName == "login" {
		assert.Equal(f.t, "login", r.URL.Query().Get("flow_name"))
	} else {
		require.Len(f.t, body.SubtaskInputs, 1)
		input := body.SubtaskInputs[0]
		id, _ := input["subtask_id"].(string)
		f.seenInputs = append(f.seenInputs, id)
		assert.Equal(f.t, fmt.Sprintf("flow-%d", len(f.seenInputs)-1), body.FlowToken)

		switch id {
		case "LoginEnterPassword":
			pw := input["enter_password"].(map[string]interface{})["password"]
			if pw != "hunter2" {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"errors":[{"message":"Wrong password!"}]}`)
				return
			}
		case "LoginTwoFactorAuthChallenge":
			text := input["enter_text"].(map[string]interface{})["text"].(string)
			assert.Len(f.t, text, 6)
		case "LoginAcid":
			assert.Equal(f.t, "gopher@example.com", input["enter_text"].(map[string]interface{})["text"])
		case "AccountDuplicationCheck":
			http.SetCookie(w, &http.Cookie{Name: "ct0", Value: "csrf-1", Path: "/"})
			http.SetCookie(w, &http.Cookie{Name: "auth_token", Value: "auth-1", Path: "/"})
		}
		step = len(f.seenInputs)
	}

	subtask := ""
	if step < len(f.subtasks) {
		subtask = f.subtasks[step]
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"flow_token": fmt.Sprintf("flow-%d", step),
		"subtasks":   []map[string]string{{"subtask_id": subtask}},
	})
}

func timelineBody(cursor string, ids ...string) string {
	var entries []string
	for _, id := range ids {
		entries = append(entries, fmt.Sprintf(`{"content":{"entryType":"TimelineTimelineItem","itemContent":{"itemType":"TimelineTweet","tweet_results":{"result":{"rest_id":%q,"core":{"user_results":{"result":{"legacy":{"screen_name":"gopher"}}}},"legacy":{"full_text":"post %s"}}}}}}`, id, id))
	}
	if cursor != "" {
		entries = append(entries, fmt.Sprintf(`{"content":{"entryType":"TimelineTimelineCursor","cursorType":"Bottom","value":%q}}`, cursor))
	}
	return fmt.Sprintf(`{"data":{"user":{"result":{"timeline_v2":{"timeline":{"instructions":[{"type":"TimelineAddEntries","entries":[%s]}]}}}}}}`, strings.Join(entries, ","))
}

var passwordCreds = Credentials{
	Username:        "gopher",
	Password:        "hunter2",
	Email:           "gopher@example.com",
	TwoFactorSecret: "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ",
}

func newTestClient(t *testing.T, platform http.Handler) (*Client, *logger.TestLogger) {
	srv := httptest.NewServer(platform)
	t.Cleanup(srv.Close)

	log := logger.NewTestLogger()
	c, err := NewClient(
		WithBaseURLs(srv.URL, srv.URL+"/graphql"),
		WithLogger(log),
		WithTimeout(5*time.Second),
		WithUserAgent("feedscraper-test"),
	)
	require.NoError(t, err)
	return c, log
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient()
	require.NoError(t, err)
	assert.Equal(t, APIBaseURL, c.apiURL)
	assert.Equal(t, GraphQLBaseURL, c.graphqlURL)
	assert.Equal(t, 30*time.Second, c.timeout)
	assert.Equal(t, defaultUserAgent, c.userAgent)
}

func TestWithProxy(t *testing.T) {
	_, err := NewClient(WithProxy("http://127.0.0.1:8080"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	c, err := NewClient(WithProxy("socks5://127.0.0.1:9050"))
	require.NoError(t, err)
	transport, ok := c.transport.(*http.Transport)
	require.True(t, ok)
	assert.NotNil(t, transport.DialContext)

	c, err = NewClient(WithProxy(""))
	require.NoError(t, err)
	assert.Equal(t, http.DefaultTransport, c.transport)
}

func TestLoginPasswordFlow(t *testing.T) {
	platform := newFakePlatform(t)
	c, log := newTestClient(t, platform)

	session, err := c.Login(context.Background(), passwordCreds)
	require.NoError(t, err)
	assert.True(t, session.LoggedIn())
	assert.Equal(t, "gopher", session.Username())
	assert.Equal(t, []string{
		"LoginJsInstrumentationSubtask",
		"LoginEnterUserIdentifierSSO",
		"LoginEnterPassword",
		"LoginTwoFactorAuthChallenge",
		"LoginAcid",
		"AccountDuplicationCheck",
	}, platform.seenInputs)
	assert.True(t, log.HasMessage("login successful"))
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name     string
		creds    Credentials
		subtasks []string
		contains string
	}{
		{
			name:     "no credentials",
			creds:    Credentials{},
			contains: "no credentials configured",
		},
		{
			name:     "wrong password",
			creds:    Credentials{Username: "gopher", Password: "nope"},
			subtasks: []string{"LoginEnterPassword", "LoginSuccessSubtask"},
			contains: "Wrong password!",
		},
		{
			name:     "denied",
			creds:    passwordCreds,
			subtasks: []string{"DenyLoginSubtask"},
			contains: "denied",
		},
		{
			name:     "unknown subtask",
			creds:    passwordCreds,
			subtasks: []string{"LoginEnterPhoneNumber"},
			contains: "unsupported login subtask: LoginEnterPhoneNumber",
		},
		{
			name:     "two-factor without secret",
			creds:    Credentials{Username: "gopher", Password: "hunter2"},
			subtasks: []string{"LoginTwoFactorAuthChallenge"},
			contains: "no secret configured",
		},
		{
			name:     "email confirmation without email",
			creds:    Credentials{Username: "gopher", Password: "hunter2"},
			subtasks: []string{"LoginAcid"},
			contains: "requires an email address",
		},
		{
			name:     "flow ends without session",
			creds:    passwordCreds,
			subtasks: []string{""},
			contains: "without a session",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := newFakePlatform(t)
			if tt.subtasks != nil {
				platform.subtasks = tt.subtasks
			}
			c, _ := newTestClient(t, platform)

			session, err := c.Login(context.Background(), tt.creds)
			require.Error(t, err)
			assert.Nil(t, session)
			assert.True(t, errors.IsType(err, errors.ErrorTypeAuth), "got %v", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoginStepLimit(t *testing.T) {
	platform := newFakePlatform(t)
	platform.subtasks = make([]string, maxLoginSteps+2)
	for i := range platform.subtasks {
		platform.subtasks[i] = "LoginJsInstrumentationSubtask"
	}
	c, _ := newTestClient(t, platform)

	_, err := c.Login(context.Background(), passwordCreds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not complete")
}

func TestCheckResponseStatus(t *testing.T) {
	tests := []struct {
		status  int
		errType errors.ErrorType
	}{
		{http.StatusUnauthorized, errors.ErrorTypeAuth},
		{http.StatusForbidden, errors.ErrorTypeAuth},
		{http.StatusNotFound, errors.ErrorTypeNotFound},
		{http.StatusTooManyRequests, errors.ErrorTypeRateLimit},
		{http.StatusBadGateway, errors.ErrorTypeServerError},
		{http.StatusTeapot, errors.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			platform := newFakePlatform(t)
			c, _ := newTestClient(t, platform)
			session, err := c.Login(context.Background(), passwordCreds)
			require.NoError(t, err)

			platform.mu.Lock()
			platform.lookupStatus = tt.status
			platform.mu.Unlock()
			var got error
			for _, err := range session.GetTweets(context.Background(), "gopher", 10) {
				got = err
			}
			require.Error(t, got)
			assert.True(t, errors.IsType(got, tt.errType), "got %v", got)
			assert.Contains(t, got.Error(), "lookup refused")

			var typed *errors.Error
			require.ErrorAs(t, got, &typed)
			assert.Equal(t, tt.status, typed.Code)
		})
	}
}
