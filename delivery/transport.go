package delivery

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/labnet/testorders/config"
	"github.com/labnet/testorders/errors"
)

const gracePeriod = time.Second * 30

var ErrNotConfigured = fmt.Errorf("%w: delivery transport is not configured", errors.ServiceUnavailable)

// NewTransport returns a gateway transport when a gateway is configured.
func NewTransport(cfg *config.Config, logger *zap.SugaredLogger) Transport {
	if cfg.Delivery.BaseUrl == "" {
		logger.Warn("delivery gateway is not configured, result notifications will fail")
		return unconfiguredTransport{}
	}
	return NewHTTPTransport(cfg.Delivery)
}

type unconfiguredTransport struct{}

func (unconfiguredTransport) SendSMS(context.Context, string) error   { return ErrNotConfigured }
func (unconfiguredTransport) SendEmail(context.Context, string) error { return ErrNotConfigured }

type authenticator struct {
	config *clientcredentials.Config
	mu     *sync.Mutex

	token *oauth2.Token
}

func (a *authenticator) GetToken(ctx context.Context) (*oauth2.Token, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.tokenIsValid() {
		token, err := a.config.Token(ctx)
		if err != nil {
			return nil, err
		}

		a.token = token
	}

	return a.token, nil
}

func (a *authenticator) tokenIsValid() bool {
	return a.token != nil && time.Now().Add(gracePeriod).Before(a.token.Expiry)
}

// HTTPTransport posts link notifications to the notification gateway.
type HTTPTransport struct {
	auth    *authenticator
	baseUrl string
	client  *http.Client
}

func NewHTTPTransport(cfg config.DeliveryConfig) *HTTPTransport {
	transport := &HTTPTransport{
		baseUrl: strings.TrimSuffix(cfg.BaseUrl, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.ClientId != "" {
		transport.auth = &authenticator{
			config: &clientcredentials.Config{
				ClientID:     cfg.ClientId,
				ClientSecret: cfg.ClientSecret,
				TokenURL:     cfg.TokenUrl,
				AuthStyle:    oauth2.AuthStyleInHeader,
			},
			mu: &sync.Mutex{},
		}
	}
	return transport
}

func (h *HTTPTransport) SendSMS(ctx context.Context, linkId string) error {
	return h.send(ctx, ChannelSMS, linkId)
}

func (h *HTTPTransport) SendEmail(ctx context.Context, linkId string) error {
	return h.send(ctx, ChannelEmail, linkId)
}

func (h *HTTPTransport) send(ctx context.Context, channel Channel, linkId string) error {
	endpoint := fmt.Sprintf("%s/v1/links/%s/%s", h.baseUrl, url.PathEscape(linkId), channel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}

	if h.auth != nil {
		token, err := h.auth.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("unable to obtain delivery gateway token: %w", err)
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %v", token.AccessToken))
	}

	res, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to reach delivery gateway: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("delivery gateway responded with status %d", res.StatusCode)
	}
	return nil
}
