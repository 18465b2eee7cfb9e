// Package webhook exposes a scrape run over HTTP.
//
// A request to /scrape-tweets is authorized with a shared token, logs in,
// collects the configured profiles, saves the result and answers with a
// short per-profile summary:
//
//	h := webhook.NewHandler(cfg.Webhook, login, log)
//	err := webhook.Serve(ctx, cfg.Webhook.Addr, webhook.NewRouter(h), log)
//
// The token is read from "Authorization: Bearer <token>" or the token
// query parameter. POST bodies may override the profile list and options.
package webhook
