// Package feed collects recent posts for a list of profiles.
//
// A Collector walks a Provider's timeline for each profile, skipping
// retweets when asked to and stopping at the per-profile limit. Failures
// are isolated per profile: the Result records an {"error": message}
// entry and the batch moves on. An Agent wraps a Collector with a profile
// list and a Sink so that one Run collects everything and saves it.
package feed
