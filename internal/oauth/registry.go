package oauth

import (
	"context"

	"github.com/ashureev/careerdesk/internal/domain"
)

// Registry holds one connector per service.
type Registry struct {
	tokens     TokenStore
	connectors map[domain.Service]*Connector
}

// NewRegistry indexes connectors by service.
func NewRegistry(tokens TokenStore, connectors ...*Connector) *Registry {
	r := &Registry{tokens: tokens, connectors: make(map[domain.Service]*Connector, len(connectors))}
	for _, c := range connectors {
		r.connectors[c.Service()] = c
	}
	return r
}

// Get returns the connector for s.
func (r *Registry) Get(s domain.Service) (*Connector, bool) {
	c, ok := r.connectors[s]
	return c, ok
}

// Statuses returns the state of every registered connector from one profile read.
func (r *Registry) Statuses(ctx context.Context) (map[domain.Service]domain.ConnectionState, error) {
	p, err := r.tokens.Get(ctx)
	if err != nil {
		return nil, err
	}
	return r.StatusesFor(p), nil
}

// StatusesFor derives connector states from an already loaded profile.
func (r *Registry) StatusesFor(p *domain.Profile) map[domain.Service]domain.ConnectionState {
	out := make(map[domain.Service]domain.ConnectionState, len(r.connectors))
	for s, c := range r.connectors {
		out[s] = c.statusFor(p)
	}
	return out
}
