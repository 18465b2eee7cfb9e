package twitter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"feedscraper/pkg/errors"

	"github.com/tidwall/gjson"
)

// timelinePage is one page of a timeline response
type timelinePage struct {
	tweets []*Tweet
	cursor string
}

// parseUserID extracts the numeric user id from a UserByScreenName response
func parseUserID(body []byte, username string) (string, error) {
	result := gjson.GetBytes(body, "data.user.result")
	if !result.Exists() {
		if msg := gjson.GetBytes(body, "errors.0.message").String(); msg != "" {
			return "", errors.New(errors.ErrorTypeParsing, "failed to look up %s: %s", username, msg)
		}
		return "", errors.New(errors.ErrorTypeNotFound, "user not found: %s", username).WithCode(404)
	}
	if result.Get("__typename").String() == "UserUnavailable" {
		return "", errors.New(errors.ErrorTypeNotFound, "user unavailable: %s", username).WithCode(404)
	}
	id := result.Get("rest_id").String()
	if id == "" {
		return "", errors.New(errors.ErrorTypeParsing, "user id missing for %s", username)
	}
	return id, nil
}

// parseTimeline extracts tweets and the bottom cursor from a GraphQL timeline response
func parseTimeline(body []byte) (*timelinePage, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New(errors.ErrorTypeParsing, "invalid JSON in timeline response")
	}

	timeline := gjson.GetBytes(body, "data.user.result.timeline_v2.timeline")
	if !timeline.Exists() {
		timeline = gjson.GetBytes(body, "data.user.result.timeline.timeline")
	}
	if !timeline.Exists() {
		if msg := gjson.GetBytes(body, "errors.0.message").String(); msg != "" {
			return nil, errors.New(errors.ErrorTypeParsing, "timeline error: %s", msg)
		}
		if !gjson.GetBytes(body, "data.user.result").Exists() {
			return nil, errors.New(errors.ErrorTypeNotFound, "timeline not available").WithCode(404)
		}
		return &timelinePage{}, nil
	}

	page := &timelinePage{}
	timeline.Get("instructions").ForEach(func(_, instruction gjson.Result) bool {
		switch instruction.Get("type").String() {
		case "TimelineAddEntries":
			instruction.Get("entries").ForEach(func(_, entry gjson.Result) bool {
				page.addEntry(entry, false)
				return true
			})
		case "TimelinePinEntry":
			page.addEntry(instruction.Get("entry"), true)
		case "TimelineReplaceEntry":
			page.addEntry(instruction.Get("entry"), false)
		}
		return true
	})
	return page, nil
}

func (p *timelinePage) addEntry(entry gjson.Result, pinned bool) {
	content := entry.Get("content")
	entryType := content.Get("entryType").String()
	if entryType == "" {
		entryType = content.Get("__typename").String()
	}

	switch entryType {
	case "TimelineTimelineItem":
		if tweet := parseItemContent(content.Get("itemContent")); tweet != nil {
			tweet.IsPin = pinned
			p.tweets = append(p.tweets, tweet)
		}
	case "TimelineTimelineModule":
		content.Get("items").ForEach(func(_, item gjson.Result) bool {
			if tweet := parseItemContent(item.Get("item.itemContent")); tweet != nil {
				p.tweets = append(p.tweets, tweet)
			}
			return true
		})
	case "TimelineTimelineCursor":
		if content.Get("cursorType").String() == "Bottom" {
			p.cursor = content.Get("value").String()
		}
	}
}

func parseItemContent(item gjson.Result) *Tweet {
	if item.Get("itemType").String() != "TimelineTweet" {
		return nil
	}
	return parseTweetResult(item.Get("tweet_results.result"))
}

// parseTweetResult converts a GraphQL tweet result into a Tweet.
// Tombstones and unavailable tweets yield nil.
func parseTweetResult(result gjson.Result) *Tweet {
	if result.Get("__typename").String() == "TweetWithVisibilityResults" {
		result = result.Get("tweet")
	}
	legacy := result.Get("legacy")
	if !legacy.Exists() {
		return nil
	}

	user := result.Get("core.user_results.result")
	username := firstString(user, "legacy.screen_name", "core.screen_name")
	name := firstString(user, "legacy.name", "core.name")

	id := result.Get("rest_id").String()
	if id == "" {
		id = legacy.Get("id_str").String()
	}

	tweet := parseLegacy(id, legacy, username, name)
	if tweet.UserID == "" {
		tweet.UserID = user.Get("rest_id").String()
	}
	if note := result.Get("note_tweet.note_tweet_results.result.text"); note.Exists() {
		tweet.Text = note.String()
	}
	if views := result.Get("views.count"); views.Exists() {
		if n, err := strconv.Atoi(views.String()); err == nil {
			tweet.Views = &n
		}
	}
	tweet.IsRetweet = tweet.IsRetweet || legacy.Get("retweeted_status_result.result").Exists()
	tweet.Poll = parsePoll(result.Get("card.legacy"))
	return tweet
}

// parseV1Timeline converts a statuses/user_timeline response
func parseV1Timeline(body []byte) ([]*Tweet, error) {
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		if msg := parsed.Get("errors.0.message").String(); msg != "" {
			return nil, errors.New(errors.ErrorTypeParsing, "timeline error: %s", msg)
		}
		return nil, errors.New(errors.ErrorTypeParsing, "expected an array of statuses")
	}

	var tweets []*Tweet
	parsed.ForEach(func(_, status gjson.Result) bool {
		user := status.Get("user")
		tweet := parseLegacy(status.Get("id_str").String(), status, user.Get("screen_name").String(), user.Get("name").String())
		tweet.IsRetweet = tweet.IsRetweet || status.Get("retweeted_status").Exists()
		tweets = append(tweets, tweet)
		return true
	})
	return tweets, nil
}

// parseLegacy reads the fields shared by the GraphQL legacy object and v1.1 statuses
func parseLegacy(id string, legacy gjson.Result, username, name string) *Tweet {
	tweet := &Tweet{
		ID:        id,
		Text:      firstString(legacy, "full_text", "text"),
		UserID:    legacy.Get("user_id_str").String(),
		Username:  username,
		Name:      name,
		Likes:     int(legacy.Get("favorite_count").Int()),
		Retweets:  int(legacy.Get("retweet_count").Int()),
		Replies:   int(legacy.Get("reply_count").Int()),
		Quotes:    int(legacy.Get("quote_count").Int()),
		IsReply:   legacy.Get("in_reply_to_status_id_str").String() != "",
		IsQuoted:  legacy.Get("is_quote_status").Bool(),
		Hashtags:  stringList(legacy.Get("entities.hashtags.#.text")),
		URLs:      stringList(legacy.Get("entities.urls.#.expanded_url")),
		IsRetweet: legacy.Get("retweeted_status_id_str").Exists(),
	}

	if created, err := time.Parse(time.RubyDate, legacy.Get("created_at").String()); err == nil {
		created = created.UTC()
		ts := created.Unix()
		tweet.TimeParsed = &created
		tweet.Timestamp = &ts
	}

	legacy.Get("entities.user_mentions").ForEach(func(_, m gjson.Result) bool {
		tweet.Mentions = append(tweet.Mentions, Mention{
			ID:       m.Get("id_str").String(),
			Username: m.Get("screen_name").String(),
			Name:     m.Get("name").String(),
		})
		return true
	})

	media := legacy.Get("extended_entities.media")
	if !media.Exists() {
		media = legacy.Get("entities.media")
	}
	media.ForEach(func(_, m gjson.Result) bool {
		switch m.Get("type").String() {
		case "photo":
			tweet.Photos = append(tweet.Photos, Photo{
				ID:      m.Get("id_str").String(),
				URL:     m.Get("media_url_https").String(),
				AltText: m.Get("ext_alt_text").String(),
			})
		case "video", "animated_gif":
			tweet.Videos = append(tweet.Videos, Video{
				ID:      m.Get("id_str").String(),
				Preview: m.Get("media_url_https").String(),
				URL:     bestVariant(m.Get("video_info.variants")),
			})
		}
		return true
	})

	if tweet.Username != "" && tweet.ID != "" {
		tweet.PermanentURL = fmt.Sprintf("https://twitter.com/%s/status/%s", tweet.Username, tweet.ID)
	}
	return tweet
}

// bestVariant picks the highest bitrate mp4 URL
func bestVariant(variants gjson.Result) string {
	var best string
	var bestRate int64 = -1
	variants.ForEach(func(_, v gjson.Result) bool {
		if v.Get("content_type").String() != "video/mp4" {
			return true
		}
		if rate := v.Get("bitrate").Int(); rate > bestRate {
			bestRate = rate
			best = v.Get("url").String()
		}
		return true
	})
	return best
}

// parsePoll reads a poll card such as "poll2choice_text_only"
func parsePoll(card gjson.Result) *Poll {
	if !card.Exists() || !strings.HasPrefix(card.Get("name").String(), "poll") {
		return nil
	}

	values := map[string]string{}
	card.Get("binding_values").ForEach(func(_, bv gjson.Result) bool {
		v := bv.Get("value")
		switch {
		case v.Get("string_value").Exists():
			values[bv.Get("key").String()] = v.Get("string_value").String()
		case v.Get("boolean_value").Exists():
			values[bv.Get("key").String()] = v.Get("boolean_value").String()
		}
		return true
	})

	poll := &Poll{
		ID:          strings.TrimPrefix(card.Get("url").String(), "card://"),
		EndDatetime: values["end_datetime_utc"],
	}
	if final, ok := values["counts_are_final"]; ok {
		if final == "true" {
			poll.VotingStatus = "closed"
		} else {
			poll.VotingStatus = "open"
		}
	}
	if d, err := strconv.Atoi(values["duration_minutes"]); err == nil {
		poll.DurationMinutes = d
	}
	for i := 1; i <= 4; i++ {
		label, ok := values[fmt.Sprintf("choice%d_label", i)]
		if !ok {
			break
		}
		votes, _ := strconv.Atoi(values[fmt.Sprintf("choice%d_count", i)])
		poll.Options = append(poll.Options, PollOption{Position: i, Label: label, Votes: votes})
	}
	return poll
}

func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func stringList(r gjson.Result) []string {
	if !r.Exists() {
		return nil
	}
	var out []string
	r.ForEach(func(_, v gjson.Result) bool {
		if s := v.String(); s != "" {
			out = append(out, s)
		}
		return true
	})
	return out
}
