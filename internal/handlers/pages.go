package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"airsense_console/internal/chart"
	"airsense_console/internal/gateway"
	"airsense_console/internal/logger"
	"airsense_console/internal/models"
	"airsense_console/internal/service"
	"airsense_console/internal/session"

	"github.com/gin-gonic/gin"
)

// pageBase is shared by every rendered page.
type pageBase struct {
	Title    string
	LoggedIn bool
	Flash    *models.Notification
}

func (h *Handler) base(c *gin.Context, title string) pageBase {
	ctx := c.Request.Context()
	sess := currentSession(c)
	p := pageBase{Title: title, LoggedIn: sess.HasToken(ctx)}
	flash, err := sess.PopFlash(ctx)
	if err != nil {
		h.log.Warnw("flash_read_failed", "err", err)
	}
	p.Flash = flash
	return p
}

// expireOnAuthError sends the user back to login when err says the session has
// no usable token. It reports whether the request was handled.
func (h *Handler) expireOnAuthError(c *gin.Context, err error) bool {
	if !h.clearOnAuthError(c.Request.Context(), currentSession(c), err) {
		return false
	}
	h.redirect(c, loginPath)
	return true
}

// clearOnAuthError clears the session when err is an authentication failure,
// so the next request starts from the login page.
func (h *Handler) clearOnAuthError(ctx context.Context, sess *session.Accessor, err error) bool {
	if !gateway.IsAuthentication(err) {
		return false
	}
	if cerr := sess.Clear(context.WithoutCancel(ctx)); cerr != nil {
		h.log.Warnw("session_clear_failed", "err", cerr)
	}
	return true
}

type loginPage struct {
	pageBase
	Email string
	Error string
}

func (h *Handler) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login", loginPage{pageBase: h.base(c, "Login")})
}

// login authenticates into a freshly issued session and only then hands its
// cookie to the browser. The session the request arrived with is dropped.
func (h *Handler) login(c *gin.Context) {
	ctx := c.Request.Context()
	email := c.PostForm("email")

	sid, cookie, err := h.services.IssueSession()
	if err != nil {
		h.log.Errorw("session_issue_failed", "err", err)
		c.HTML(http.StatusInternalServerError, "login", loginPage{pageBase: h.base(c, "Login"), Email: email, Error: "Login failed."})
		return
	}
	fresh := h.services.Session(sid)

	err = h.services.Login(ctx, fresh, email, c.PostForm("password"))
	if err == nil {
		if cerr := currentSession(c).Clear(ctx); cerr != nil {
			h.log.Warnw("session_clear_failed", "err", cerr)
		}
		setSessionCookie(c, cookie)
		h.redirect(c, devicesPath)
		return
	}

	status, msg := http.StatusUnauthorized, "Login failed."
	if errors.Is(err, service.ErrMissingCredentials) {
		status, msg = http.StatusBadRequest, "Email and password are required."
	} else {
		h.log.Infow("login_failed", "email", email, "err", err)
	}
	c.HTML(status, "login", loginPage{pageBase: h.base(c, "Login"), Email: email, Error: msg})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.services.Logout(c.Request.Context(), currentSession(c)); err != nil {
		h.log.Errorw("logout_failed", "err", err)
	}
	expireSessionCookie(c)
	h.redirect(c, loginPath)
}

type devicesPage struct {
	pageBase
	Devices []models.DeviceInfo
	Error   string
}

func (h *Handler) devicesPage(c *gin.Context) {
	devices, err := h.services.ListDevices(c.Request.Context(), currentSession(c))
	if err != nil {
		if h.expireOnAuthError(c, err) {
			return
		}
		h.log.Errorw("device_list_failed", "err", err)
	}
	page := devicesPage{pageBase: h.base(c, "Devices"), Devices: devices}
	if err != nil {
		page.Error = "Devices could not be loaded."
	}
	c.HTML(http.StatusOK, "devices", page)
}

func (h *Handler) createDevice(c *gin.Context) {
	d, err := h.services.CreateDevice(c.Request.Context(), currentSession(c), c.PostForm("name"))
	if err != nil {
		if h.expireOnAuthError(c, err) {
			return
		}
		h.log.Errorw("device_create_failed", "err", err)
		page := devicesPage{pageBase: h.base(c, "Devices"), Error: "Device could not be created."}
		if errors.Is(err, service.ErrEmptyDeviceName) {
			page.Error = "A device name is required."
		}
		c.HTML(http.StatusBadRequest, "devices", page)
		return
	}
	h.redirect(c, devicesPath+"/"+d.ID)
}

type overviewPage struct {
	pageBase
	Charts []chart.Config
	Error  string
}

func (h *Handler) overviewPage(c *gin.Context) {
	page := overviewPage{Charts: []chart.Config{}}
	data, err := h.services.LoadOverview(c.Request.Context(), currentSession(c))
	if err != nil {
		if h.expireOnAuthError(c, err) {
			return
		}
		h.log.Errorw("overview_load_failed", "err", err)
		page.Error = "Sensor averages could not be loaded."
	} else {
		board := &chart.Board{Charts: page.Charts}
		data.Draw(board)
		page.Charts = board.Charts
	}
	page.pageBase = h.base(c, "Overview")
	c.HTML(http.StatusOK, "overview", page)
}

// pageUI is the presentation side of a DeviceView during one request.
type pageUI struct {
	ctx      context.Context
	sess     *session.Accessor
	log      *logger.Logger
	redirect string
	dialog   *dialog
}

type dialog struct {
	Kind   string // authorize | delete
	Code   string
	Device models.DeviceInfo
}

func (u *pageUI) Navigate(path string) {
	if u.redirect == "" {
		u.redirect = path
	}
}

func (u *pageUI) Notify(n models.Notification) {
	if err := u.sess.Flash(u.ctx, n); err != nil {
		u.log.Warnw("flash_write_failed", "err", err)
	}
}

func (u *pageUI) OpenAuthorization(code models.DeviceCode) {
	u.dialog = &dialog{Kind: "authorize", Code: code.Code}
}

func (u *pageUI) OpenDeleteConfirmation(d models.DeviceInfo) {
	u.dialog = &dialog{Kind: "delete", Device: d}
}

func (h *Handler) deviceView(c *gin.Context) (*service.DeviceView, *pageUI) {
	sess := currentSession(c)
	ui := &pageUI{ctx: c.Request.Context(), sess: sess, log: h.log}
	view := h.services.DeviceView(sess, c.Param("id"), service.ViewOptions{
		Navigator: ui,
		Notifier:  ui,
		Dialogs:   ui,
	})
	return view, ui
}

type devicePage struct {
	pageBase
	DeviceID      string
	Device        *models.DeviceInfo
	State         string
	Error         string
	Dialog        *dialog
	Charts        []chart.Config
	Form          service.TriggerForm
	MissingFields []string
	Metrics       []models.Metric
	Operators     []models.Operator
}

var operators = []models.Operator{models.OperatorGT, models.OperatorGTE, models.OperatorLT, models.OperatorLTE}

// loadDevice loads the view. It reports false when the request was answered
// with a redirect to the login page.
func (h *Handler) loadDevice(c *gin.Context, view *service.DeviceView) bool {
	err := view.Load(c.Request.Context())
	return err == nil || !h.expireOnAuthError(c, err)
}

func (h *Handler) renderDevice(c *gin.Context, status int, view *service.DeviceView, ui *pageUI, form service.TriggerForm, missing []string) {
	board := &chart.Board{Charts: []chart.Config{}}
	view.Draw(board)

	page := devicePage{
		pageBase:      h.base(c, "Device"),
		DeviceID:      view.ID(),
		Device:        view.Device(),
		State:         view.State().String(),
		Dialog:        ui.dialog,
		Charts:        board.Charts,
		Form:          form,
		MissingFields: missing,
		Metrics:       models.Metrics,
		Operators:     operators,
	}
	if err := view.Err(); err != nil {
		page.Error = "Some device data could not be loaded."
	}
	c.HTML(status, "device", page)
}

func (h *Handler) devicePage(c *gin.Context) {
	view, ui := h.deviceView(c)
	if !h.loadDevice(c, view) {
		return
	}
	if c.Query("dialog") == "delete" {
		view.AttemptDeleteDevice()
	}
	h.renderDevice(c, http.StatusOK, view, ui, service.TriggerForm{}, nil)
}

func (h *Handler) authorizeDevice(c *gin.Context) {
	view, ui := h.deviceView(c)
	if err := view.AuthorizeDevice(c.Request.Context()); err != nil && h.expireOnAuthError(c, err) {
		return
	}
	if !h.loadDevice(c, view) {
		return
	}
	h.renderDevice(c, http.StatusOK, view, ui, service.TriggerForm{}, nil)
}

func (h *Handler) deleteDevice(c *gin.Context) {
	view, ui := h.deviceView(c)
	if err := view.DeleteDevice(c.Request.Context()); err != nil && h.expireOnAuthError(c, err) {
		return
	}
	if ui.redirect != "" {
		h.redirect(c, ui.redirect)
		return
	}
	h.redirect(c, devicesPath+"/"+view.ID())
}

func (h *Handler) createTrigger(c *gin.Context) {
	view, ui := h.deviceView(c)
	form := service.TriggerForm{
		Name:      strings.TrimSpace(c.PostForm("name")),
		PostURL:   strings.TrimSpace(c.PostForm("postUrl")),
		Threshold: service.ParseThreshold(c.PostForm("threshold")),
		Parameter: models.Metric(c.PostForm("parameter")),
		Operator:  models.Operator(c.PostForm("operator")),
	}
	_, err := view.AttemptCreateTrigger(c.Request.Context(), form)
	var vErr *gateway.ValidationError
	if errors.As(err, &vErr) {
		if h.loadDevice(c, view) {
			h.renderDevice(c, http.StatusUnprocessableEntity, view, ui, form, vErr.Fields)
		}
		return
	}
	if err != nil && h.expireOnAuthError(c, err) {
		return
	}
	h.redirect(c, devicesPath+"/"+view.ID())
}

func (h *Handler) openWindow(c *gin.Context) {
	view, _ := h.deviceView(c)
	if err := view.OpenWindow(c.Request.Context(), strings.TrimSpace(c.PostForm("url"))); err != nil && h.expireOnAuthError(c, err) {
		return
	}
	h.redirect(c, devicesPath+"/"+view.ID())
}
