// Package api is the HTTP layer of the site backend.
//
// # Routes
//
// Every route lives under the configured prefix (default /api) and is one
// entry of a typed route table built at startup:
//
//	POST   auth/login              issue a token
//	POST   auth/logout             revoke the bearer token
//	GET    auth/check              validate and renew the bearer token
//	GET    {collection}            list (limit, offset, sort)
//	GET    {collection}/{id}       fetch one record
//	POST   {collection}            create (bearer)
//	PUT    {collection}/{id}       replace (bearer)
//	DELETE {collection}/{id}       delete (bearer)
//	POST   upload                  store an image (bearer)
//
// where {collection} is projects, partners or certificates. Unknown paths
// answer 404 "Маршрут не найден" and known paths with another method answer
// 405 "Метод не разрешён".
//
// # Middleware
//
// Requests pass through recovery, request id, logging and CORS before
// reaching the router; matched routes are also instrumented with
// Prometheus metrics. All responses are JSON.
//
// # Usage
//
//	srv := api.NewServer(cfg, api.Dependencies{
//		DB:        db,
//		Auth:      authService,
//		Uploads:   uploadService,
//		Sanitizer: content.NewSanitizer(),
//		Metrics:   metrics,
//		Logger:    logger,
//	})
//	http.ListenAndServe(cfg.Server.Addr(), srv)
package api
