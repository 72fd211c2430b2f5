// Package oauth implements the authorization-code flow shared by every
// external integration.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ashureev/careerdesk/internal/apperr"
	"github.com/ashureev/careerdesk/internal/domain"
	"github.com/ashureev/careerdesk/internal/events"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// TokenStore persists service tokens. *profile.Service implements it.
type TokenStore interface {
	Get(ctx context.Context) (*domain.Profile, error)
	SetToken(ctx context.Context, service domain.Service, token string) error
	ClearToken(ctx context.Context, service domain.Service) error
}

// Deps are the collaborators of a Connector.
type Deps struct {
	Tokens     TokenStore
	Events     events.Publisher // optional
	HTTPClient *http.Client     // used for the token exchange
	Logger     *zap.Logger
	StateTTL   time.Duration
}

// Connector runs the OAuth flow for one provider.
type Connector struct {
	provider   Provider
	baseURL    string
	tokens     TokenStore
	events     events.Publisher
	httpClient *http.Client
	states     *stateStore
	logger     *zap.Logger
}

// NewConnector creates a connector. baseURL is the application's public
// address; callbacks land on {baseURL}/auth/{service}/callback.
func NewConnector(p Provider, baseURL string, deps Deps) *Connector {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	client := deps.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Connector{
		provider:   p,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		tokens:     deps.Tokens,
		events:     deps.Events,
		httpClient: client,
		states:     newStateStore(deps.StateTTL),
		logger:     logger.With(zap.String("service", string(p.Service))),
	}
}

// Service returns the service this connector serves.
func (c *Connector) Service() domain.Service {
	return c.provider.Service
}

// CallbackPath is the route the provider redirects back to.
func CallbackPath(s domain.Service) string {
	return "/auth/" + string(s) + "/callback"
}

// RedirectURI returns the absolute callback address.
func (c *Connector) RedirectURI() string {
	return c.baseURL + CallbackPath(c.provider.Service)
}

func (c *Connector) checkConfig() error {
	if c.baseURL == "" {
		return apperr.Configuration("APP_URL is not configured")
	}
	u, err := url.Parse(c.baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperr.Configuration("APP_URL is malformed")
	}
	if len(c.provider.ClientID) < MinClientIDLength {
		return apperr.Configuration(fmt.Sprintf("%s client id is missing or invalid", c.provider.Service)).
			With("client_id_length", len(c.provider.ClientID))
	}
	return nil
}

func (c *Connector) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.provider.ClientID,
		ClientSecret: c.provider.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.provider.AuthURL,
			TokenURL:  c.provider.TokenURL,
			AuthStyle: c.provider.AuthStyle,
		},
		RedirectURL: c.RedirectURI(),
		Scopes:      c.provider.Scopes,
	}
}

// AuthorizationURL validates configuration and returns the URL the popup
// should open. No network call is made. The connector is authorizing until
// the callback arrives or the state expires.
func (c *Connector) AuthorizationURL() (string, error) {
	if err := c.checkConfig(); err != nil {
		return "", err
	}

	state := c.states.issue()

	if c.provider.Simulated {
		q := url.Values{"code": {"simulated"}, "state": {state}}
		return c.RedirectURI() + "?" + q.Encode(), nil
	}

	opts := make([]oauth2.AuthCodeOption, 0, len(c.provider.AuthParams))
	for k, v := range c.provider.AuthParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return c.oauthConfig().AuthCodeURL(state, opts...), nil
}

// HandleCallback exchanges code for an access token and stores it. On any
// failure nothing is persisted and the connector returns to disconnected.
func (c *Connector) HandleCallback(ctx context.Context, code, state string) error {
	if !c.states.consume(state) {
		return apperr.Validation("authorization state is missing or expired")
	}
	if strings.TrimSpace(code) == "" {
		return apperr.Validation("authorization code is missing")
	}

	token := c.provider.SimulatedToken
	if !c.provider.Simulated {
		var err error
		token, err = c.exchange(ctx, code)
		if err != nil {
			return err
		}
	}

	return c.store(ctx, token)
}

func (c *Connector) exchange(ctx context.Context, code string) (string, error) {
	if err := c.checkConfig(); err != nil {
		return "", err
	}
	if c.provider.ClientSecret == "" {
		return "", apperr.Configuration(fmt.Sprintf("%s client secret is not configured", c.provider.Service))
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.oauthConfig().Exchange(ctx, code)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			fields = append(fields, zap.String("error_code", rErr.ErrorCode), zap.Int("status", responseStatus(rErr)))
		}
		c.logger.Warn("Token exchange failed", fields...)
		return "", apperr.External(fmt.Sprintf("%s token exchange failed", c.provider.Service), err)
	}
	if tok.AccessToken == "" {
		return "", apperr.External(fmt.Sprintf("%s returned no access token", c.provider.Service), nil)
	}
	return tok.AccessToken, nil
}

func responseStatus(e *oauth2.RetrieveError) int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// ConnectManually stores a pasted token for providers that allow it.
func (c *Connector) ConnectManually(ctx context.Context, token string) error {
	if !c.provider.AllowManual {
		return apperr.Validation(fmt.Sprintf("%s does not support manual tokens", c.provider.Service))
	}
	token = strings.TrimSpace(token)
	if len(token) < MinManualTokenLength {
		return apperr.Validation(fmt.Sprintf("%s token is too short", c.provider.Service))
	}
	return c.store(ctx, token)
}

// Disconnect clears the stored token and any pending authorization.
func (c *Connector) Disconnect(ctx context.Context) error {
	c.states.clear()
	if err := c.tokens.ClearToken(ctx, c.provider.Service); err != nil {
		return err
	}
	c.publish(events.Disconnected(c.provider.Service))
	return nil
}

// Status reports the connector state.
func (c *Connector) Status(ctx context.Context) (domain.ConnectionState, error) {
	p, err := c.tokens.Get(ctx)
	if err != nil {
		return "", err
	}
	return c.statusFor(p), nil
}

func (c *Connector) statusFor(p *domain.Profile) domain.ConnectionState {
	switch {
	case p.Connected(c.provider.Service):
		return domain.StateConnected
	case c.states.pending():
		return domain.StateAuthorizing
	default:
		return domain.StateDisconnected
	}
}

func (c *Connector) store(ctx context.Context, token string) error {
	if err := c.tokens.SetToken(ctx, c.provider.Service, token); err != nil {
		return err
	}
	c.publish(events.AuthSuccess(c.provider.Service))
	return nil
}

func (c *Connector) publish(ev events.Event) {
	if c.events != nil {
		c.events.Publish(ev)
	}
}
