package feed

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ProfileResult is either the posts collected for a profile or the
// message of the error that stopped collection.
type ProfileResult struct {
	Posts []Post
	Err   string
}

// Failed reports whether collection for the profile failed
func (p ProfileResult) Failed() bool {
	return p.Err != ""
}

// MarshalJSON encodes a post array or an {"error": message} marker
func (p ProfileResult) MarshalJSON() ([]byte, error) {
	if p.Failed() {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{p.Err})
	}
	posts := p.Posts
	if posts == nil {
		posts = []Post{}
	}
	return json.Marshal(posts)
}

// UnmarshalJSON accepts either form produced by MarshalJSON
func (p *ProfileResult) UnmarshalJSON(data []byte) error {
	parsed := gjson.ParseBytes(data)
	switch {
	case parsed.IsArray():
		var posts []Post
		if err := json.Unmarshal(data, &posts); err != nil {
			return err
		}
		*p = ProfileResult{Posts: posts}
	case parsed.IsObject() && parsed.Get("error").Exists():
		*p = ProfileResult{Err: parsed.Get("error").String()}
	default:
		return fmt.Errorf("profile result must be an array of posts or an error object")
	}
	return nil
}

// Result maps usernames to their outcome, remembering insertion order
type Result struct {
	entries *orderedmap.OrderedMap[string, ProfileResult]
}

// NewResult creates an empty result
func NewResult() *Result {
	return &Result{entries: orderedmap.New[string, ProfileResult]()}
}

// Set stores the outcome for username. A repeated username keeps its
// original position and takes the new value.
func (r *Result) Set(username string, pr ProfileResult) {
	r.entries.Set(username, pr)
}

// Get returns the outcome recorded for username
func (r *Result) Get(username string) (ProfileResult, bool) {
	return r.entries.Get(username)
}

// Usernames returns the keys in insertion order
func (r *Result) Usernames() []string {
	usernames := make([]string, 0, r.entries.Len())
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		usernames = append(usernames, pair.Key)
	}
	return usernames
}

// Len returns the number of profiles recorded
func (r *Result) Len() int {
	return r.entries.Len()
}

// TotalPosts counts posts across all successful profiles
func (r *Result) TotalPosts() int {
	total := 0
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		total += len(pair.Value.Posts)
	}
	return total
}

// FailedCount returns how many profiles carry an error marker
func (r *Result) FailedCount() int {
	failed := 0
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Failed() {
			failed++
		}
	}
	return failed
}

// MarshalJSON writes the profiles as a JSON object in insertion order
func (r *Result) MarshalJSON() ([]byte, error) {
	return r.entries.MarshalJSON()
}

// UnmarshalJSON reads an object written by MarshalJSON, keeping key order
func (r *Result) UnmarshalJSON(data []byte) error {
	if !gjson.ParseBytes(data).IsObject() {
		return fmt.Errorf("result must be a JSON object")
	}

	decoded := NewResult()
	if err := decoded.entries.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	*r = *decoded
	return nil
}
