package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "MensaFetcher/0.1 (+https://github.com/mensafetch) go-resty"

// Client fetches raw menu pages. Network concerns (timeouts, status
// handling) live here, outside of the parsing core.
type Client struct {
	http *resty.Client
}

func NewClient() Client {
	return Client{
		http: resty.New().
			SetTimeout(time.Second * 10).
			SetHeader("User-Agent", userAgent),
	}
}

// Page fetches a menu page and returns its body as text. Any HTTP
// error status is an error.
func (c Client) Page(ctx context.Context, url string) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", err
	}
	if res.IsError() {
		return "", fmt.Errorf("GET %s: %s", url, res.Status())
	}
	return res.String(), nil
}
