package twitter

import (
	"time"

	"feedscraper/pkg/config"
)

// Credentials holds everything needed to open a session.
// Either Username+Password or the four OAuth 1.0a values must be set.
type Credentials struct {
	Username          string
	Password          string
	Email             string
	TwoFactorSecret   string
	APIKey            string
	APISecretKey      string
	AccessToken       string
	AccessTokenSecret string
}

// HasPassword reports whether an interactive login can be attempted
func (c Credentials) HasPassword() bool {
	return c.Username != "" && c.Password != ""
}

// HasOAuth1 reports whether all four OAuth 1.0a values are present
func (c Credentials) HasOAuth1() bool {
	return c.APIKey != "" && c.APISecretKey != "" && c.AccessToken != "" && c.AccessTokenSecret != ""
}

// CredentialsFromConfig copies credentials out of the loaded configuration
func CredentialsFromConfig(cfg config.TwitterConfig) Credentials {
	return Credentials{
		Username:          cfg.Username,
		Password:          cfg.Password,
		Email:             cfg.Email,
		TwoFactorSecret:   cfg.TwoFactorSecret,
		APIKey:            cfg.APIKey,
		APISecretKey:      cfg.APISecretKey,
		AccessToken:       cfg.AccessToken,
		AccessTokenSecret: cfg.AccessTokenSecret,
	}
}

// Tweet is a post as returned by the platform, before normalization.
// Optional values are pointers and stay nil when the platform omits them.
type Tweet struct {
	ID           string
	Text         string
	Timestamp    *int64
	TimeParsed   *time.Time
	UserID       string
	Username     string
	Name         string
	Likes        int
	Retweets     int
	Replies      int
	Quotes       int
	Views        *int
	IsRetweet    bool
	IsReply      bool
	IsQuoted     bool
	IsPin        bool
	Hashtags     []string
	Mentions     []Mention
	URLs         []string
	Photos       []Photo
	Videos       []Video
	PermanentURL string
	Poll         *Poll
}

// Mention is a user referenced in a post
type Mention struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Photo is an attached image
type Photo struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

// Video is an attached video or animated GIF
type Video struct {
	ID      string `json:"id"`
	Preview string `json:"preview"`
	URL     string `json:"url,omitempty"`
}

// Poll is a card-based poll attached to a post
type Poll struct {
	ID              string       `json:"id"`
	EndDatetime     string       `json:"end_datetime,omitempty"`
	VotingStatus    string       `json:"voting_status,omitempty"`
	DurationMinutes int          `json:"duration_minutes,omitempty"`
	Options         []PollOption `json:"options"`
}

// PollOption is one choice of a poll
type PollOption struct {
	Position int    `json:"position"`
	Label    string `json:"label"`
	Votes    int    `json:"votes"`
}
