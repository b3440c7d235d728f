package acquire

import (
	"fmt"
	"net/url"
)

// ViewerURL builds the streaming viewer address for a content URL: the
// content URL is query-encoded into the endpoint's url parameter. Other
// parameters of the endpoint are kept.
func ViewerURL(endpoint, contentURL string) (string, error) {
	if contentURL == "" {
		return "", ErrNoContentURL
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing viewer endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("viewer endpoint %q is not an absolute URL", endpoint)
	}
	q := u.Query()
	q.Set("url", contentURL)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
