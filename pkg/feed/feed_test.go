package feed

import (
	"context"
	stderrors "errors"
	"iter"
	"sync"
	"time"

	"feedscraper/pkg/twitter"
)

// fakeProvider yields canned tweets per username and then an optional error
type fakeProvider struct {
	mu     sync.Mutex
	tweets map[string][]*twitter.Tweet
	errs   map[string]error
	pulled map[string]int
	calls  []string
	limits []int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		tweets: map[string][]*twitter.Tweet{},
		errs:   map[string]error{},
		pulled: map[string]int{},
	}
}

func (f *fakeProvider) GetTweets(ctx context.Context, username string, limit int) iter.Seq2[*twitter.Tweet, error] {
	return f.seq("tweets", username, limit)
}

func (f *fakeProvider) GetTweetsAndReplies(ctx context.Context, username string, limit int) iter.Seq2[*twitter.Tweet, error] {
	return f.seq("replies", username, limit)
}

func (f *fakeProvider) seq(kind, username string, limit int) iter.Seq2[*twitter.Tweet, error] {
	return func(yield func(*twitter.Tweet, error) bool) {
		f.mu.Lock()
		f.calls = append(f.calls, kind+":"+username)
		f.limits = append(f.limits, limit)
		tweets := f.tweets[username]
		err := f.errs[username]
		f.mu.Unlock()

		for _, t := range tweets {
			f.mu.Lock()
			f.pulled[username]++
			f.mu.Unlock()
			if !yield(t, nil) {
				return
			}
		}
		if err != nil {
			yield(nil, err)
		}
	}
}

// fakeSink records saves instead of writing files
type fakeSink struct {
	ensured int
	saved   []any
	names   []string
	path    string
	err     error
	dirErr  error
}

func (s *fakeSink) EnsureDir() error {
	s.ensured++
	return s.dirErr
}

func (s *fakeSink) Save(result any, filename string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, result)
	s.names = append(s.names, filename)
	return s.path, nil
}

var errBoom = stderrors.New("rate limited by upstream")

func tweet(id string, retweet bool) *twitter.Tweet {
	ts := int64(1700000000)
	parsed := time.Unix(ts, 0).UTC()
	return &twitter.Tweet{
		ID:           id,
		Text:         "post " + id,
		Timestamp:    &ts,
		TimeParsed:   &parsed,
		Username:     "alice",
		Name:         "Alice",
		Likes:        1,
		IsRetweet:    retweet,
		PermanentURL: "https://twitter.com/alice/status/" + id,
	}
}
