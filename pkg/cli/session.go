package cli

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/etm-murmansk/site/pkg/client"
)

// apiFlags are shared by every command that talks to the API
type apiFlags struct {
	url     *string
	session *string
	timeout *time.Duration
}

func addAPIFlags(fs *flag.FlagSet, e *env) apiFlags {
	def := e.getenv("SITE_API_URL")
	if def == "" {
		def = defaultAPIURL
	}
	return apiFlags{
		url:     fs.String("api", def, "API base URL (SITE_API_URL)"),
		session: fs.String("session", e.sessionPath, "Session file (default ~/.config/etmsite/session.json)"),
		timeout: fs.Duration("timeout", client.DefaultTimeout, "Request timeout"),
	}
}

func (f apiFlags) client(e *env, extra ...client.Option) (*client.Client, error) {
	path := *f.session
	if path == "" {
		var err error
		if path, err = client.DefaultSessionPath(); err != nil {
			return nil, err
		}
	}

	opts := []client.Option{
		client.WithTokenStore(client.NewFileTokenStore(path)),
		client.WithHTTPClient(&http.Client{Timeout: *f.timeout}),
	}
	opts = append(opts, e.clientOpts...)
	opts = append(opts, extra...)

	c, err := client.New(*f.url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}
