// Package domain contains core domain types for the career dashboard.
package domain

import "strings"

// ProfileID is the fixed primary key of the singleton profile row.
const ProfileID = 1

// Default profile values written when the database is first created.
const (
	DefaultFullName    = "Kullanıcı"
	DefaultCurrentRole = "Yazılım Geliştirici"
	DefaultTargetRole  = "Kıdemli Yazılım Mimarı"
	DefaultBio         = "Kariyerimde ilerlemek isteyen tutkulu bir profesyonelim."
)

// Service identifies an external integration.
type Service string

// Supported integrations.
const (
	ServiceNotion   Service = "notion"
	ServiceGitHub   Service = "github"
	ServiceLinkedIn Service = "linkedin"
)

// Services lists every integration in display order.
var Services = []Service{ServiceNotion, ServiceGitHub, ServiceLinkedIn}

// ParseService maps a path segment to a Service.
func ParseService(s string) (Service, bool) {
	switch Service(strings.ToLower(strings.TrimSpace(s))) {
	case ServiceNotion:
		return ServiceNotion, true
	case ServiceGitHub:
		return ServiceGitHub, true
	case ServiceLinkedIn:
		return ServiceLinkedIn, true
	}
	return "", false
}

// EventPrefix is the upper-case prefix used in cross-window and push events.
func (s Service) EventPrefix() string {
	return strings.ToUpper(string(s))
}

// Profile is the single user profile. Tokens never leave the server.
type Profile struct {
	ID          int    `json:"id"`
	FullName    string `json:"full_name"`
	CurrentRole string `json:"current_role"`
	TargetRole  string `json:"target_role"`
	Bio         string `json:"bio"`

	NotionToken   string `json:"-"`
	LinkedInToken string `json:"-"`
	GitHubToken   string `json:"-"`
}

// ProfileFields are the user-editable text fields of a Profile.
type ProfileFields struct {
	FullName    string `json:"full_name"`
	CurrentRole string `json:"current_role"`
	TargetRole  string `json:"target_role"`
	Bio         string `json:"bio"`
}

// Token returns the stored access token for a service, or "".
func (p *Profile) Token(s Service) string {
	switch s {
	case ServiceNotion:
		return p.NotionToken
	case ServiceGitHub:
		return p.GitHubToken
	case ServiceLinkedIn:
		return p.LinkedInToken
	}
	return ""
}

// Connected reports whether a token is stored for the service.
func (p *Profile) Connected(s Service) bool {
	return p.Token(s) != ""
}

// ConnectionState is the per-service OAuth connector state.
type ConnectionState string

// Connector states.
const (
	StateDisconnected ConnectionState = "disconnected"
	StateAuthorizing  ConnectionState = "authorizing"
	StateConnected    ConnectionState = "connected"
)
