package twitter

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

const (
	// APIBaseURL hosts the REST endpoints: guest activation, onboarding and v1.1 timelines
	APIBaseURL = "https://api.twitter.com"

	// GraphQLBaseURL hosts the web client GraphQL operations
	GraphQLBaseURL = "https://twitter.com/i/api/graphql"

	// PublicBearerToken is the bearer token the web client ships with
	PublicBearerToken = "AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA"

	guestActivatePath  = "/1.1/guest/activate.json"
	onboardingTaskPath = "/1.1/onboarding/task.json"
	userTimelinePath   = "/1.1/statuses/user_timeline.json"

	queryUserByScreenName     = "G3KGOASz96M-Qu0nwmGXNg"
	queryUserTweets           = "V7H0Ap3_Hh2FyS75OCDO3Q"
	queryUserTweetsAndReplies = "E4wA5vo2sjVyvpliUffSCw"

	// MaxGraphQLPageSize is the largest page the GraphQL timeline serves
	MaxGraphQLPageSize = 40

	// MaxV1PageSize is the largest page statuses/user_timeline serves
	MaxV1PageSize = 200
)

// operation names a GraphQL timeline query
type operation struct {
	name    string
	queryID string
}

var (
	opUserByScreenName     = operation{"UserByScreenName", queryUserByScreenName}
	opUserTweets           = operation{"UserTweets", queryUserTweets}
	opUserTweetsAndReplies = operation{"UserTweetsAndReplies", queryUserTweetsAndReplies}
)

var userFeatures = map[string]interface{}{
	"hidden_profile_likes_enabled":                                      true,
	"hidden_profile_subscriptions_enabled":                              true,
	"responsive_web_graphql_exclude_directive_enabled":                  true,
	"verified_phone_label_enabled":                                      false,
	"subscriptions_verification_info_is_identity_verified_enabled":      true,
	"subscriptions_verification_info_verified_since_enabled":            true,
	"highlights_tweets_tab_ui_enabled":                                  true,
	"responsive_web_twitter_article_notes_tab_enabled":                  true,
	"creator_subscriptions_tweet_preview_api_enabled":                   true,
	"responsive_web_graphql_skip_user_profile_image_extensions_enabled": false,
	"responsive_web_graphql_timeline_navigation_enabled":                true,
}

var timelineFeatures = map[string]interface{}{
	"responsive_web_graphql_exclude_directive_enabled":                        true,
	"verified_phone_label_enabled":                                            false,
	"creator_subscriptions_tweet_preview_api_enabled":                         true,
	"responsive_web_graphql_timeline_navigation_enabled":                      true,
	"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
	"communities_web_enable_tweet_community_results_fetch":                    true,
	"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
	"tweetypie_unmention_optimization_enabled":                                true,
	"responsive_web_edit_tweet_api_enabled":                                   true,
	"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
	"view_counts_everywhere_api_enabled":                                      true,
	"longform_notetweets_consumption_enabled":                                 true,
	"responsive_web_twitter_article_tweet_consumption_enabled":                true,
	"tweet_awards_web_tipping_enabled":                                        false,
	"freedom_of_speech_not_reach_fetch_enabled":                               true,
	"standardized_nudges_misinfo":                                             true,
	"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
	"rweb_video_timestamps_enabled":                                           true,
	"longform_notetweets_rich_text_read_enabled":                              true,
	"longform_notetweets_inline_media_enabled":                                true,
	"responsive_web_enhance_cards_enabled":                                    false,
}

// graphqlURL builds a GraphQL GET URL with JSON-encoded query parameters
func graphqlURL(base string, op operation, variables, features, fieldToggles map[string]interface{}) (string, error) {
	params := url.Values{}
	for key, value := range map[string]map[string]interface{}{
		"variables":    variables,
		"features":     features,
		"fieldToggles": fieldToggles,
	} {
		if value == nil {
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("failed to encode %s: %w", key, err)
		}
		params.Set(key, string(encoded))
	}
	return fmt.Sprintf("%s/%s/%s?%s", base, op.queryID, op.name, params.Encode()), nil
}

// userByScreenNameURL constructs the URL resolving a username to a user id
func userByScreenNameURL(base, username string) (string, error) {
	return graphqlURL(base, opUserByScreenName,
		map[string]interface{}{
			"screen_name":              username,
			"withSafetyModeUserFields": true,
		},
		userFeatures,
		map[string]interface{}{"withAuxiliaryUserLabels": false},
	)
}

// timelineURL constructs the URL for one page of a user's timeline
func timelineURL(base string, op operation, userID string, count int, cursor string) (string, error) {
	variables := map[string]interface{}{
		"userId":                 userID,
		"count":                  clamp(count, 1, MaxGraphQLPageSize),
		"includePromotedContent": false,
		"withVoice":              true,
		"withV2Timeline":         true,
	}
	if op == opUserTweetsAndReplies {
		variables["withCommunity"] = true
	} else {
		variables["withQuickPromoteEligibilityTweetFields"] = false
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	return graphqlURL(base, op, variables, timelineFeatures,
		map[string]interface{}{"withArticleRichContentState": false})
}

// userTimelineParams builds the v1.1 statuses/user_timeline query
func userTimelineParams(username string, count int, includeReplies bool, maxID string) map[string]string {
	params := map[string]string{
		"screen_name":     username,
		"count":           strconv.Itoa(clamp(count, 1, MaxV1PageSize)),
		"tweet_mode":      "extended",
		"include_rts":     "true",
		"exclude_replies": strconv.FormatBool(!includeReplies),
	}
	if maxID != "" {
		params["max_id"] = maxID
	}
	return params
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
