package oauth

import (
	"github.com/ashureev/careerdesk/internal/config"
	"github.com/ashureev/careerdesk/internal/domain"
	"golang.org/x/oauth2"
)

// Provider describes one external service's OAuth conventions. The
// connector logic is shared; only these values differ per service.
type Provider struct {
	Service      domain.Service
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string

	// AuthStyle selects how client credentials reach the token endpoint:
	// HTTP Basic (oauth2.AuthStyleInHeader) or request body (oauth2.AuthStyleInParams).
	AuthStyle  oauth2.AuthStyle
	Scopes     []string
	AuthParams map[string]string

	// AllowManual permits pasting a token instead of running the flow.
	AllowManual bool

	// Simulated providers never contact the service: the authorization URL
	// points straight back at the local callback, which stores SimulatedToken.
	Simulated      bool
	SimulatedToken string
}

// Minimum lengths accepted for client ids and pasted tokens.
const (
	MinClientIDLength    = 5
	MinManualTokenLength = 10
)

// NotionProvider returns the note-service provider.
func NotionProvider(cfg config.NotionConfig) Provider {
	return Provider{
		Service:      domain.ServiceNotion,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		AuthURL:      cfg.AuthURL,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
		AuthParams:   map[string]string{"owner": "user"},
		AllowManual:  true,
	}
}

// GitHubProvider returns the code-host provider.
func GitHubProvider(cfg config.GitHubConfig) Provider {
	return Provider{
		Service:      domain.ServiceGitHub,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		AuthURL:      cfg.AuthURL,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
		Scopes:       []string{"repo", "user"},
	}
}

// LinkedInMockToken is stored by the simulated professional-network connector.
const LinkedInMockToken = "mock_linkedin_token_123"

// LinkedInProvider returns the simulated professional-network provider.
func LinkedInProvider(cfg config.LinkedInConfig) Provider {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "MOCK_ID"
	}
	return Provider{
		Service:        domain.ServiceLinkedIn,
		ClientID:       clientID,
		AuthURL:        cfg.AuthURL,
		Scopes:         []string{"r_liteprofile", "w_member_social"},
		Simulated:      true,
		SimulatedToken: LinkedInMockToken,
	}
}
