// Package client is a Go client for the site API.
//
// It keeps an admin session in a TokenStore, attaches the bearer token to
// every request, retries transient failures with linear backoff and can
// cache GET responses for a short time. A Keeper checks the session in the
// background so the server keeps extending its expiry.
//
//	c, err := client.New("https://etm-murmansk.ru/api/",
//		client.WithTokenStore(store),
//		client.WithCache(128, time.Minute),
//	)
//	if _, err := c.Login(ctx, "admin", password); err != nil {
//		...
//	}
//	page, err := c.List(ctx, "projects", client.ListOptions{Sort: "-year"})
package client
