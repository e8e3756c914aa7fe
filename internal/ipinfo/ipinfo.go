package ipinfo

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// UnknownIP значення коли зовнішній lookup недоступний
const UnknownIP = "unknown"

// Client визначає публічну IP адресу через зовнішній сервіс
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient створює новий IP lookup клієнт
func NewClient(endpoint string, timeoutSeconds int) *Client {
	if endpoint == "" {
		endpoint = "https://api.ipify.org"
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = 5
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		endpoint: endpoint,
	}
}

// PublicIP повертає публічну IP адресу або "unknown".
// Lookup ніколи не повертає помилку - аудит логінів не повинен
// блокуватись через недоступність зовнішнього сервісу.
func (c *Client) PublicIP(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return UnknownIP
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UnknownIP
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return UnknownIP
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return UnknownIP
	}

	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return UnknownIP
	}

	return ip
}
