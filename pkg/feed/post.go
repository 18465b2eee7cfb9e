package feed

import (
	"feedscraper/pkg/twitter"
)

// DateLayout is the ISO-8601 form used for Post.Date
const DateLayout = "2006-01-02T15:04:05.000Z"

// Post is the flat record written for every collected tweet
type Post struct {
	ID           string          `json:"id"`
	Text         string          `json:"text"`
	Timestamp    *int64          `json:"timestamp"`
	Date         *string         `json:"date"`
	Username     string          `json:"username"`
	Name         string          `json:"name"`
	Likes        int             `json:"likes"`
	Retweets     int             `json:"retweets"`
	Replies      int             `json:"replies"`
	Quotes       int             `json:"quotes"`
	IsRetweet    bool            `json:"isRetweet"`
	IsReply      bool            `json:"isReply"`
	IsQuoted     bool            `json:"isQuoted"`
	Hashtags     []string        `json:"hashtags"`
	Mentions     []string        `json:"mentions"`
	URLs         []string        `json:"urls"`
	Photos       []twitter.Photo `json:"photos"`
	Videos       []twitter.Video `json:"videos"`
	PermanentURL string          `json:"permanentUrl"`
	Poll         *twitter.Poll   `json:"poll"`
}

// NormalizeTweet projects a raw tweet onto Post. Lists are never nil so
// they encode as [] rather than null; a nil tweet yields an empty Post.
func NormalizeTweet(t *twitter.Tweet) Post {
	p := Post{
		Hashtags: []string{},
		Mentions: []string{},
		URLs:     []string{},
		Photos:   []twitter.Photo{},
		Videos:   []twitter.Video{},
	}
	if t == nil {
		return p
	}

	p.ID = t.ID
	p.Text = t.Text
	p.Username = t.Username
	p.Name = t.Name
	p.Likes = t.Likes
	p.Retweets = t.Retweets
	p.Replies = t.Replies
	p.Quotes = t.Quotes
	p.IsRetweet = t.IsRetweet
	p.IsReply = t.IsReply
	p.IsQuoted = t.IsQuoted
	p.PermanentURL = t.PermanentURL

	if t.Timestamp != nil {
		ts := *t.Timestamp
		p.Timestamp = &ts
	}
	if t.TimeParsed != nil {
		date := t.TimeParsed.UTC().Format(DateLayout)
		p.Date = &date
	}
	if t.Poll != nil {
		poll := *t.Poll
		poll.Options = append([]twitter.PollOption(nil), t.Poll.Options...)
		p.Poll = &poll
	}

	p.Hashtags = append(p.Hashtags, t.Hashtags...)
	p.URLs = append(p.URLs, t.URLs...)
	p.Photos = append(p.Photos, t.Photos...)
	p.Videos = append(p.Videos, t.Videos...)
	for _, m := range t.Mentions {
		p.Mentions = append(p.Mentions, m.Username)
	}
	return p
}
