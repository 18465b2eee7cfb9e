package twitter

import (
	"context"
	"iter"
	"net/http"
	"strconv"

	"feedscraper/pkg/errors"
)

// GetTweets yields the user's own posts and retweets, newest first.
// limit sizes each page request; the caller decides when to stop by
// breaking out of the loop, which ends pagination.
func (s *Session) GetTweets(ctx context.Context, username string, limit int) iter.Seq2[*Tweet, error] {
	return s.timeline(ctx, username, limit, false)
}

// GetTweetsAndReplies is GetTweets including the user's replies
func (s *Session) GetTweetsAndReplies(ctx context.Context, username string, limit int) iter.Seq2[*Tweet, error] {
	return s.timeline(ctx, username, limit, true)
}

func (s *Session) timeline(ctx context.Context, username string, limit int, replies bool) iter.Seq2[*Tweet, error] {
	return func(yield func(*Tweet, error) bool) {
		if s.oauth != nil {
			s.v1Timeline(ctx, username, limit, replies, yield)
			return
		}
		s.graphqlTimeline(ctx, username, limit, replies, yield)
	}
}

func (s *Session) graphqlTimeline(ctx context.Context, username string, limit int, replies bool, yield func(*Tweet, error) bool) {
	userID, err := s.userID(ctx, username)
	if err != nil {
		yield(nil, err)
		return
	}

	op := opUserTweets
	if replies {
		op = opUserTweetsAndReplies
	}

	seen := make(map[string]struct{})
	cursor := ""
	for page := 1; ; page++ {
		endpoint, err := timelineURL(s.client.graphqlURL, op, userID, limit, cursor)
		if err != nil {
			yield(nil, errors.Wrap(errors.ErrorTypeCollection, err, "failed to build timeline request"))
			return
		}
		body, err := s.get(ctx, endpoint)
		if err != nil {
			yield(nil, err)
			return
		}
		parsed, err := parseTimeline(body)
		if err != nil {
			yield(nil, err)
			return
		}

		fresh := 0
		for _, tweet := range parsed.tweets {
			if _, dup := seen[tweet.ID]; dup {
				continue
			}
			seen[tweet.ID] = struct{}{}
			fresh++
			if !yield(tweet, nil) {
				return
			}
		}

		s.client.logger.DebugWithFields("timeline page fetched", map[string]interface{}{
			"username": username,
			"page":     page,
			"tweets":   fresh,
		})

		if fresh == 0 || parsed.cursor == "" || parsed.cursor == cursor {
			return
		}
		cursor = parsed.cursor
	}
}

func (s *Session) v1Timeline(ctx context.Context, username string, limit int, replies bool, yield func(*Tweet, error) bool) {
	seen := make(map[string]struct{})
	maxID := ""
	for {
		params := userTimelineParams(username, limit, replies, maxID)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.client.apiURL+userTimelinePath+"?"+encodeQuery(params), nil)
		if err != nil {
			yield(nil, errors.Wrap(errors.ErrorTypeCollection, err, "failed to build timeline request"))
			return
		}
		s.oauth.sign(req, params)

		body, err := s.client.doRequest(s.http, req, nil)
		if err != nil {
			yield(nil, err)
			return
		}
		tweets, err := parseV1Timeline(body)
		if err != nil {
			yield(nil, err)
			return
		}

		var minID uint64
		fresh := 0
		for _, tweet := range tweets {
			if _, dup := seen[tweet.ID]; dup {
				continue
			}
			seen[tweet.ID] = struct{}{}
			fresh++
			if id, err := strconv.ParseUint(tweet.ID, 10, 64); err == nil && (minID == 0 || id < minID) {
				minID = id
			}
			if !yield(tweet, nil) {
				return
			}
		}

		if fresh == 0 || minID <= 1 {
			return
		}
		maxID = strconv.FormatUint(minID-1, 10)
	}
}

// userID resolves and caches the numeric id behind a username
func (s *Session) userID(ctx context.Context, username string) (string, error) {
	s.mu.Lock()
	id, ok := s.userIDs[username]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	endpoint, err := userByScreenNameURL(s.client.graphqlURL, username)
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeCollection, err, "failed to build user lookup")
	}
	body, err := s.get(ctx, endpoint)
	if err != nil {
		return "", err
	}
	id, err = parseUserID(body, username)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.userIDs[username] = id
	s.mu.Unlock()
	return id, nil
}

func (s *Session) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeNetwork, err, "failed to create request")
	}
	return s.client.doRequest(s.http, req, s.headers())
}
