package handlers

import (
	"net/http"

	"airsense_console/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "airsense_session"
	ctxSession    = "session"

	loginPath   = "/login"
	devicesPath = "/devices"
)

// sessionMiddleware resolves the session cookie, issuing a new session when
// the cookie is missing or invalid, and stores the accessor in the context.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	var sid string
	if raw, err := c.Cookie(sessionCookie); err == nil && raw != "" {
		sid, err = h.services.ParseSession(raw)
		if err != nil {
			h.log.Infow("session_cookie_rejected", "err", err)
			sid = ""
		}
	}

	if sid == "" {
		newSID, cookie, err := h.services.IssueSession()
		if err != nil {
			h.log.Errorw("session_issue_failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "failed to start session",
			})
			return
		}
		sid = newSID
		setSessionCookie(c, cookie)
	}

	c.Set(ctxSession, h.services.Session(sid))
	c.Next()
}

func setSessionCookie(c *gin.Context, cookie string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, cookie, 0, "/", "", c.Request.TLS != nil, true)
}

// expireSessionCookie tells the browser to drop the session cookie.
func expireSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
}

// currentSession returns the accessor stored by sessionMiddleware.
func currentSession(c *gin.Context) *session.Accessor {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Accessor)
	return s
}

// requireToken lets only logged-in sessions through and sends others to the login page.
func (h *Handler) requireToken(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil || !sess.HasToken(c.Request.Context()) {
		h.redirect(c, loginPath)
		c.Abort()
		return
	}
	c.Next()
}

// guestOnly keeps logged-in sessions away from the login page.
func (h *Handler) guestOnly(c *gin.Context) {
	sess := currentSession(c)
	if sess != nil && sess.HasToken(c.Request.Context()) {
		h.redirect(c, devicesPath)
		c.Abort()
		return
	}
	c.Next()
}

// requireTokenJSON is requireToken for API and WebSocket routes.
func (h *Handler) requireTokenJSON(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil || !sess.HasToken(c.Request.Context()) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "not logged in",
		})
		return
	}
	c.Next()
}

func (h *Handler) redirect(c *gin.Context, path string) {
	c.Redirect(http.StatusSeeOther, path)
}
