package api

import (
	"net/http"

	"github.com/ashureev/careerdesk/internal/apperr"
	"github.com/ashureev/careerdesk/internal/oauth"
	"go.uber.org/zap"
)

func (h *Handler) connector(r *http.Request) (*oauth.Connector, error) {
	s, err := serviceParam(r)
	if err != nil {
		return nil, err
	}
	c, ok := h.connectors.Get(s)
	if !ok {
		return nil, apperr.NotFound("unknown service")
	}
	return c, nil
}

// AuthURL returns the authorization URL the popup should open.
func (h *Handler) AuthURL(w http.ResponseWriter, r *http.Request) {
	c, err := h.connector(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	url, err := c.AuthorizationURL()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"url": url})
}

// AuthCallback finishes the flow inside the popup window and renders a
// page that notifies the opener.
func (h *Handler) AuthCallback(w http.ResponseWriter, r *http.Request) {
	c, err := h.connector(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	if denied := q.Get("error"); denied != "" {
		h.logger.Info("Authorization denied",
			zap.String("service", string(c.Service())),
			zap.String("reason", denied),
		)
		oauth.WriteCallbackPage(w, c.Service(), apperr.Auth("authorization was denied"))
		return
	}

	err = c.HandleCallback(r.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		h.logger.Warn("OAuth callback failed",
			zap.String("service", string(c.Service())),
			zap.Error(err),
		)
	} else {
		h.logger.Info("Service connected",
			zap.String("user_action", "connect"),
			zap.String("service", string(c.Service())),
		)
	}
	oauth.WriteCallbackPage(w, c.Service(), err)
}

// ConnectManually stores a pasted token.
func (h *Handler) ConnectManually(w http.ResponseWriter, r *http.Request) {
	c, err := h.connector(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := c.ConnectManually(r.Context(), body.Token); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("Service connected manually",
		zap.String("user_action", "connect_manual"),
		zap.String("service", string(c.Service())),
	)
	success(w)
}

// Disconnect clears the token of one service.
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	c, err := h.connector(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := c.Disconnect(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("Service disconnected",
		zap.String("user_action", "disconnect"),
		zap.String("service", string(c.Service())),
	)
	success(w)
}

// AuthStatus returns the connector state of every service.
func (h *Handler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.connectors.Statuses(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, statuses)
}
