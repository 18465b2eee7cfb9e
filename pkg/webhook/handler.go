package webhook

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"feedscraper/pkg/config"
	"feedscraper/pkg/feed"
	"feedscraper/pkg/logger"
	"feedscraper/pkg/metrics"
	"feedscraper/pkg/storage"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/tidwall/gjson"
)

const maxBodyBytes = 1 << 20

// Handler runs a scrape per request and answers with a summary
type Handler struct {
	cfg     config.WebhookConfig
	login   feed.LoginFunc
	newSink func(dir string) feed.Sink
	logger  logger.Logger
}

// NewHandler creates the scrape handler. login is called once per request.
func NewHandler(cfg config.WebhookConfig, login feed.LoginFunc, log logger.Logger) *Handler {
	if log == nil {
		log = logger.GetLogger()
	}
	h := &Handler{cfg: cfg, login: login, logger: log}
	h.newSink = func(dir string) feed.Sink {
		return storage.NewManager(dir, "json", h.logger)
	}
	return h
}

type errorResponse struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error"`
}

// ServeHTTP answers CORS preflights, checks the method and token, then runs
// one scrape and replies with its summary
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := h.serve(w, r)
	metrics.IncWebhookRequest(strconv.Itoa(status))

	log := h.logger
	if id := middleware.GetReqID(r.Context()); id != "" {
		log = log.WithField("request_id", id)
	}
	logger.LogRequest(log, r.Method, r.URL.Path, status, time.Since(start))
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) int {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	switch r.Method {
	case http.MethodOptions:
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return http.StatusOK
	case http.MethodGet, http.MethodPost:
	default:
		return writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method Not Allowed"})
	}

	if !h.authorized(r) {
		return writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
	}

	opts := feed.Options{
		MaxPostsPerProfile: h.cfg.MaxPostsPerProfile,
		IncludeRetweets:    h.cfg.IncludeRetweets,
	}
	h.applyQuery(r, &opts)

	var profiles []string
	if r.Method == http.MethodPost {
		profiles = h.applyBody(r, &opts)
	}

	h.logger.InfoWithFields("initializing feed scraper", map[string]interface{}{
		"max_per_profile":  opts.MaxPostsPerProfile,
		"include_retweets": opts.IncludeRetweets,
		"include_replies":  opts.IncludeReplies,
		"profiles":         len(profiles),
	})

	summary, err := h.run(r, opts, profiles)
	if err != nil {
		h.logger.WithError(err).Error("scrape request failed")
		failed := false
		return writeJSON(w, http.StatusInternalServerError, errorResponse{Success: &failed, Error: err.Error()})
	}
	return writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) run(r *http.Request, opts feed.Options, profiles []string) (feed.Summary, error) {
	agent := feed.NewAgent(nil, h.newSink(h.cfg.OutputDirectory), opts, h.logger)

	profilesPath := ""
	if len(profiles) > 0 {
		agent.SetProfiles(profiles)
	} else {
		profilesPath = h.cfg.ProfilesFile
	}
	if err := agent.Initialize(r.Context(), h.login, profilesPath); err != nil {
		return feed.Summary{}, err
	}

	result, outputPath, err := agent.Run(r.Context())
	if err != nil {
		return feed.Summary{}, err
	}
	return feed.Summarize(result, len(agent.Profiles()), outputPath), nil
}

// authorized accepts "Authorization: Bearer <token>" or ?token=<token>
func (h *Handler) authorized(r *http.Request) bool {
	token := ""
	if parts := strings.Fields(r.Header.Get("Authorization")); len(parts) > 1 {
		token = parts[1]
	}
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" || h.cfg.AuthToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.cfg.AuthToken)) == 1
}

func (h *Handler) applyQuery(r *http.Request, opts *feed.Options) {
	q := r.URL.Query()
	if v := q.Get("maxTweets"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.MaxPostsPerProfile = n
		} else {
			h.logger.WarnWithFields("ignoring invalid maxTweets", map[string]interface{}{"value": v})
		}
	}
	if v := q.Get("includeRetweets"); v != "" {
		opts.IncludeRetweets = v == "true"
	}
}

// applyBody reads {"profiles": [...], "options": {...}}. A malformed body
// is logged and ignored so the defaults apply.
func (h *Handler) applyBody(r *http.Request, opts *feed.Options) []string {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(data) == 0 {
		return nil
	}
	if !gjson.ValidBytes(data) {
		h.logger.Warn("error parsing request body: invalid JSON")
		return nil
	}
	body := gjson.ParseBytes(data)

	options := body.Get("options")
	if v := options.Get("maxTweetsPerProfile"); v.Type == gjson.Number && v.Int() > 0 {
		opts.MaxPostsPerProfile = int(v.Int())
	}
	if v := options.Get("includeRetweets"); v.IsBool() {
		opts.IncludeRetweets = v.Bool()
	}
	if v := options.Get("includeReplies"); v.IsBool() {
		opts.IncludeReplies = v.Bool()
	}

	list := body.Get("profiles")
	if !list.IsArray() {
		return nil
	}
	var profiles []string
	list.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String && v.String() != "" {
			profiles = append(profiles, v.String())
		}
		return true
	})
	return profiles
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
	return status
}
