package feed

import (
	"fmt"
	"strings"
)

// PreviewLength is how many characters of text a summary keeps
const PreviewLength = 100

// Summary is the response body of a successful webhook run
type Summary struct {
	Success       bool             `json:"success"`
	ProfilesCount int              `json:"profilesCount"`
	TweetsCount   int              `json:"tweetsCount"`
	Summary       []ProfileSummary `json:"summary"`
	OutputPath    string           `json:"outputPath"`
}

// ProfileSummary is one profile's entry in a Summary
type ProfileSummary struct {
	Username string         `json:"username"`
	Count    *int           `json:"count,omitempty"`
	Tweets   []TweetPreview `json:"tweets,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// TweetPreview is a shortened post
type TweetPreview struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Date     *string `json:"date"`
	Likes    int     `json:"likes"`
	Replies  int     `json:"replies"`
	Retweets int     `json:"retweets"`
}

// Summarize builds a Summary of result; profilesCount is the number of
// profiles the run was asked for.
func Summarize(result *Result, profilesCount int, outputPath string) Summary {
	s := Summary{
		Success:       true,
		ProfilesCount: profilesCount,
		TweetsCount:   result.TotalPosts(),
		Summary:       make([]ProfileSummary, 0, result.Len()),
		OutputPath:    outputPath,
	}

	for _, username := range result.Usernames() {
		pr, _ := result.Get(username)
		if pr.Failed() {
			s.Summary = append(s.Summary, ProfileSummary{Username: username, Error: pr.Err})
			continue
		}

		count := len(pr.Posts)
		previews := make([]TweetPreview, 0, count)
		for _, p := range pr.Posts {
			previews = append(previews, TweetPreview{
				ID:       p.ID,
				Text:     Truncate(p.Text, PreviewLength),
				Date:     p.Date,
				Likes:    p.Likes,
				Replies:  p.Replies,
				Retweets: p.Retweets,
			})
		}
		s.Summary = append(s.Summary, ProfileSummary{Username: username, Count: &count, Tweets: previews})
	}
	return s
}

// Truncate cuts text to n characters and appends "..." when it was longer
func Truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

// Lines renders a human readable report of result, one line per profile
// and, when detail is positive, one indented block per post with text cut
// to detail characters.
func Lines(result *Result, detail int) []string {
	var lines []string
	for _, username := range result.Usernames() {
		pr, _ := result.Get(username)
		if pr.Failed() {
			lines = append(lines, fmt.Sprintf("❌ %s: Error - %s", username, pr.Err))
			continue
		}
		lines = append(lines, fmt.Sprintf("✅ %s: %d tweets", username, len(pr.Posts)))
		if detail <= 0 {
			continue
		}
		for i, p := range pr.Posts {
			date := "unknown"
			if p.Date != nil {
				date = *p.Date
			}
			lines = append(lines,
				fmt.Sprintf("  %d. %s", i+1, strings.ReplaceAll(Truncate(p.Text, detail), "\n", " ")),
				fmt.Sprintf("     Posted: %s | Likes: %d | Replies: %d", date, p.Likes, p.Replies),
			)
		}
	}
	return lines
}
