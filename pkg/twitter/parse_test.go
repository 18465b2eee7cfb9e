package twitter

import (
	"testing"

	"feedscraper/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const timelineFixture = `{
  "data": {"user": {"result": {"timeline_v2": {"timeline": {"instructions": [
    {"type": "TimelineClearCache"},
    {"type": "TimelinePinEntry", "entry": {"entryId": "tweet-100", "content": {
      "entryType": "TimelineTimelineItem",
      "itemContent": {"itemType": "TimelineTweet", "tweet_results": {"result": {
        "__typename": "Tweet", "rest_id": "100",
        "core": {"user_results": {"result": {"rest_id": "42", "legacy": {"screen_name": "gopher", "name": "The Gopher"}}}},
        "views": {"count": "1234"},
        "legacy": {
          "full_text": "pinned #golang post @rob",
          "created_at": "Wed Oct 10 20:19:24 +0000 2018",
          "user_id_str": "42",
          "favorite_count": 10, "retweet_count": 2, "reply_count": 3, "quote_count": 1,
          "entities": {
            "hashtags": [{"text": "golang"}],
            "user_mentions": [{"id_str": "7", "screen_name": "rob", "name": "Rob"}],
            "urls": [{"expanded_url": "https://go.dev"}]
          },
          "extended_entities": {"media": [
            {"id_str": "m1", "type": "photo", "media_url_https": "https://pbs.example/m1.jpg", "ext_alt_text": "a gopher"},
            {"id_str": "m2", "type": "video", "media_url_https": "https://pbs.example/m2.jpg", "video_info": {"variants": [
              {"content_type": "application/x-mpegURL", "url": "https://video.example/m2.m3u8"},
              {"content_type": "video/mp4", "bitrate": 256000, "url": "https://video.example/low.mp4"},
              {"content_type": "video/mp4", "bitrate": 2176000, "url": "https://video.example/high.mp4"}
            ]}}
          ]}
        }
      }}}
    }}},
    {"type": "TimelineAddEntries", "entries": [
      {"entryId": "tweet-101", "content": {"entryType": "TimelineTimelineItem",
        "itemContent": {"itemType": "TimelineTweet", "tweet_results": {"result": {
          "__typename": "TweetWithVisibilityResults",
          "tweet": {
            "rest_id": "101",
            "core": {"user_results": {"result": {"rest_id": "42", "core": {"screen_name": "gopher", "name": "The Gopher"}}}},
            "note_tweet": {"note_tweet_results": {"result": {"text": "a long note tweet"}}},
            "legacy": {"full_text": "a long no...", "created_at": "Wed Oct 10 20:19:24 +0000 2018", "in_reply_to_status_id_str": "99"}
          }
        }}}
      }},
      {"entryId": "tweet-102", "content": {"entryType": "TimelineTimelineItem",
        "itemContent": {"itemType": "TimelineTweet", "tweet_results": {"result": {
          "__typename": "Tweet", "rest_id": "102",
          "core": {"user_results": {"result": {"legacy": {"screen_name": "gopher", "name": "The Gopher"}}}},
          "legacy": {"full_text": "RT @rob: hello", "retweeted_status_result": {"result": {"rest_id": "5"}}},
          "card": {"legacy": {"name": "poll2choice_text_only", "url": "card://555", "binding_values": [
            {"key": "choice1_label", "value": {"string_value": "yes"}},
            {"key": "choice1_count", "value": {"string_value": "7"}},
            {"key": "choice2_label", "value": {"string_value": "no"}},
            {"key": "choice2_count", "value": {"string_value": "3"}},
            {"key": "duration_minutes", "value": {"string_value": "1440"}},
            {"key": "end_datetime_utc", "value": {"string_value": "2018-10-11T20:19:24Z"}},
            {"key": "counts_are_final", "value": {"boolean_value": true}}
          ]}}
        }}}
      }},
      {"entryId": "tweet-103", "content": {"entryType": "TimelineTimelineItem",
        "itemContent": {"itemType": "TimelineTweet", "tweet_results": {"result": {"__typename": "TweetTombstone"}}}
      }},
      {"entryId": "profile-conversation-1", "content": {"entryType": "TimelineTimelineModule", "items": [
        {"item": {"itemContent": {"itemType": "TimelineTweet", "tweet_results": {"result": {
          "rest_id": "104",
          "core": {"user_results": {"result": {"legacy": {"screen_name": "gopher"}}}},
          "legacy": {"full_text": "in a conversation", "is_quote_status": true}
        }}}}}
      ]}},
      {"entryId": "cursor-top-1", "content": {"entryType": "TimelineTimelineCursor", "cursorType": "Top", "value": "TOP"}},
      {"entryId": "cursor-bottom-1", "content": {"entryType": "TimelineTimelineCursor", "cursorType": "Bottom", "value": "NEXT"}}
    ]}
  ]}}}}}
}`

func TestParseTimeline(t *testing.T) {
	page, err := parseTimeline([]byte(timelineFixture))
	require.NoError(t, err)

	assert.Equal(t, "NEXT", page.cursor)
	require.Len(t, page.tweets, 4)

	pinned := page.tweets[0]
	assert.Equal(t, "100", pinned.ID)
	assert.True(t, pinned.IsPin)
	assert.Equal(t, "pinned #golang post @rob", pinned.Text)
	assert.Equal(t, "gopher", pinned.Username)
	assert.Equal(t, "The Gopher", pinned.Name)
	assert.Equal(t, "42", pinned.UserID)
	require.NotNil(t, pinned.Timestamp)
	assert.Equal(t, int64(1539202764), *pinned.Timestamp)
	require.NotNil(t, pinned.TimeParsed)
	assert.Equal(t, 2018, pinned.TimeParsed.Year())
	assert.Equal(t, 10, pinned.Likes)
	assert.Equal(t, 2, pinned.Retweets)
	assert.Equal(t, 3, pinned.Replies)
	assert.Equal(t, 1, pinned.Quotes)
	require.NotNil(t, pinned.Views)
	assert.Equal(t, 1234, *pinned.Views)
	assert.Equal(t, []string{"golang"}, pinned.Hashtags)
	assert.Equal(t, []string{"https://go.dev"}, pinned.URLs)
	assert.Equal(t, []Mention{{ID: "7", Username: "rob", Name: "Rob"}}, pinned.Mentions)
	assert.Equal(t, []Photo{{ID: "m1", URL: "https://pbs.example/m1.jpg", AltText: "a gopher"}}, pinned.Photos)
	assert.Equal(t, []Video{{ID: "m2", Preview: "https://pbs.example/m2.jpg", URL: "https://video.example/high.mp4"}}, pinned.Videos)
	assert.Equal(t, "https://twitter.com/gopher/status/100", pinned.PermanentURL)
	assert.False(t, pinned.IsRetweet)
	assert.Nil(t, pinned.Poll)

	reply := page.tweets[1]
	assert.Equal(t, "101", reply.ID)
	assert.Equal(t, "a long note tweet", reply.Text)
	assert.Equal(t, "gopher", reply.Username)
	assert.True(t, reply.IsReply)
	assert.False(t, reply.IsPin)

	retweet := page.tweets[2]
	assert.Equal(t, "102", retweet.ID)
	assert.True(t, retweet.IsRetweet)
	assert.Nil(t, retweet.Timestamp)
	require.NotNil(t, retweet.Poll)
	assert.Equal(t, "555", retweet.Poll.ID)
	assert.Equal(t, "closed", retweet.Poll.VotingStatus)
	assert.Equal(t, 1440, retweet.Poll.DurationMinutes)
	assert.Equal(t, "2018-10-11T20:19:24Z", retweet.Poll.EndDatetime)
	assert.Equal(t, []PollOption{{Position: 1, Label: "yes", Votes: 7}, {Position: 2, Label: "no", Votes: 3}}, retweet.Poll.Options)

	quoted := page.tweets[3]
	assert.Equal(t, "104", quoted.ID)
	assert.True(t, quoted.IsQuoted)
	assert.Nil(t, quoted.Views)
}

func TestParseTimelineLegacyPath(t *testing.T) {
	body := `{"data":{"user":{"result":{"timeline":{"timeline":{"instructions":[
		{"type":"TimelineAddEntries","entries":[
			{"content":{"__typename":"TimelineTimelineItem","itemContent":{"itemType":"TimelineTweet","tweet_results":{"result":{"rest_id":"1","legacy":{"full_text":"hi"}}}}}}
		]}
	]}}}}}}`

	page, err := parseTimeline([]byte(body))
	require.NoError(t, err)
	require.Len(t, page.tweets, 1)
	assert.Equal(t, "hi", page.tweets[0].Text)
	assert.Empty(t, page.cursor)
	assert.Empty(t, page.tweets[0].PermanentURL)
}

func TestParseTimelineErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		errType errors.ErrorType
	}{
		{"invalid json", `{"data":`, errors.ErrorTypeParsing},
		{"api error", `{"errors":[{"message":"Bad guest token"}]}`, errors.ErrorTypeParsing},
		{"missing user", `{"data":{}}`, errors.ErrorTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTimeline([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.errType), "got %v", err)
		})
	}
}

func TestParseTimelineEmptyUser(t *testing.T) {
	page, err := parseTimeline([]byte(`{"data":{"user":{"result":{"__typename":"User"}}}}`))
	require.NoError(t, err)
	assert.Empty(t, page.tweets)
}

func TestParseUserID(t *testing.T) {
	id, err := parseUserID([]byte(`{"data":{"user":{"result":{"__typename":"User","rest_id":"42"}}}}`), "gopher")
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	_, err = parseUserID([]byte(`{"data":{}}`), "ghost")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	assert.Contains(t, err.Error(), "ghost")

	_, err = parseUserID([]byte(`{"data":{"user":{"result":{"__typename":"UserUnavailable"}}}}`), "banned")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestParseV1Timeline(t *testing.T) {
	body := `[
		{"id_str":"300","full_text":"v1 post","created_at":"Wed Oct 10 20:19:24 +0000 2018",
		 "favorite_count":4,"retweet_count":1,"user":{"id_str":"42","screen_name":"gopher","name":"The Gopher"},
		 "entities":{"hashtags":[{"text":"go"}]}},
		{"id_str":"299","full_text":"RT @rob: hi","retweeted_status":{"id_str":"1"},"user":{"screen_name":"gopher"}}
	]`

	tweets, err := parseV1Timeline([]byte(body))
	require.NoError(t, err)
	require.Len(t, tweets, 2)

	assert.Equal(t, "300", tweets[0].ID)
	assert.Equal(t, "v1 post", tweets[0].Text)
	assert.Equal(t, 4, tweets[0].Likes)
	assert.Equal(t, []string{"go"}, tweets[0].Hashtags)
	assert.Equal(t, "https://twitter.com/gopher/status/300", tweets[0].PermanentURL)
	assert.False(t, tweets[0].IsRetweet)
	assert.True(t, tweets[1].IsRetweet)

	_, err = parseV1Timeline([]byte(`{"errors":[{"message":"Not authorized."}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not authorized.")
}
