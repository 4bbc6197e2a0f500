// Package cli implements site-cli, the administration tool for the ETM site.
//
// # Administrator accounts
//
// Accounts are never created through the HTTP API. set-password talks to
// the database configured by the usual SITE_* variables:
//
//	SITE_DB_DRIVER=postgres SITE_DB_DSN=postgres://... \
//		site-cli admin set-password -login admin -password '...' -migrate
//
// # Content
//
// The remaining commands use the HTTP API and keep the session token in
// ~/.config/etmsite/session.json:
//
//	site-cli login -api https://etm-murmansk.ru/api/ -login admin
//	site-cli list -resource projects -sort -year -limit 20
//	site-cli get -resource partners -id 3
//	site-cli create -resource certificates -file cert.json
//	site-cli update -resource projects -id 7 -file project.json
//	site-cli delete -resource projects -id 7
//	site-cli upload -file logo.png
//	site-cli check
//	site-cli keepalive -interval 30m
//	site-cli logout
package cli
