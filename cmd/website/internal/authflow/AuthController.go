package authflow

import (
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/sessions"
	"github.com/mattsnow/albumshare/cmd/website/internal/viewmodels"
	"github.com/mattsnow/albumshare/pkg/identity"
	"github.com/mattsnow/albumshare/pkg/models"
	"github.com/mattsnow/albumshare/pkg/services"
	"github.com/rs/xid"
)

const stateCookieName = "albumshare_oauth_state"

type AuthControllerConfig struct {
	IdentityService identity.IdentityServicer
	ProfileService  services.ProfileServicer
	Renderer        rendering.TemplateRenderer
	SessionService  sessions.Session[*models.Profile]
}

type AuthController struct {
	identityService identity.IdentityServicer
	profileService  services.ProfileServicer
	renderer        rendering.TemplateRenderer
	sessionService  sessions.Session[*models.Profile]
}

func NewAuthController(config AuthControllerConfig) AuthController {
	return AuthController{
		identityService: config.IdentityService,
		profileService:  config.ProfileService,
		renderer:        config.Renderer,
		sessionService:  config.SessionService,
	}
}

/*
GET /login
*/
func (c AuthController) LoginPage(w http.ResponseWriter, r *http.Request) {
	viewData := viewmodels.Login{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
	}

	if reason := httphelpers.GetFromRequest[string](r, "reason"); reason != "" {
		viewData.IsWarning = true
		viewData.Message = loginReasonMessage(reason)
	}

	c.renderer.Render("pages/login", viewData, w)
}

/*
GET /auth/login

Starts the OAuth flow: generates a state nonce, stores it in a short-lived
cookie, and sends the browser to the provider's consent page.
*/
func (c AuthController) LoginAction(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, c.identityService.AuthURL(state), http.StatusFound)
}

/*
GET /auth/callback?code=&state=

Each failure branch logs the underlying cause server-side and sends the
browser back to the login page with only a coarse reason code.
*/
func (c AuthController) CallbackAction(w http.ResponseWriter, r *http.Request) {
	var (
		err error
	)

	code := httphelpers.GetFromRequest[string](r, "code")

	/*
	 * Landing here without a code is a no-op, not an error. The identity
	 * provider is never contacted.
	 */
	if code == "" {
		http.Redirect(w, r, "/albums", http.StatusFound)
		return
	}

	state := httphelpers.GetFromRequest[string](r, "state")
	stateCookie, cookieErr := r.Cookie(stateCookieName)

	if cookieErr != nil || stateCookie.Value == "" || stateCookie.Value != state {
		slog.Error("OAuth state mismatch", "hasCookie", cookieErr == nil)
		c.redirectToLogin(w, r, "state_mismatch")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	token, err := c.identityService.ExchangeCode(r.Context(), code)

	if err != nil {
		slog.Error("error exchanging authorization code", "error", err)
		c.redirectToLogin(w, r, "exchange_failed")
		return
	}

	profile, err := c.identityService.GetUser(r.Context(), token)

	if err != nil {
		slog.Error("error getting user from identity provider", "error", err)
		c.redirectToLogin(w, r, "get_user_failed")
		return
	}

	if profile == nil {
		slog.Error("identity provider returned no user")
		c.redirectToLogin(w, r, "no_user")
		return
	}

	if err = c.profileService.Upsert(profile); err != nil {
		slog.Error("error upserting profile", "error", err, "profileID", profile.ID)
		c.redirectToLogin(w, r, "profile_upsert_failed")
		return
	}

	/*
	 * Setup the session and redirect to the happy place
	 */
	if err = c.sessionService.Set(r, profile); err != nil {
		slog.Error("error setting profile session", "error", err)
	}

	if err = c.sessionService.Save(w, r); err != nil {
		slog.Error("error saving session", "error", err)
	}

	http.Redirect(w, r, "/albums", http.StatusFound)
}

/*
POST /auth/signout
*/
func (c AuthController) SignoutAction(w http.ResponseWriter, r *http.Request) {
	_ = c.sessionService.Destroy(w, r)
	_ = c.sessionService.Save(w, r)
	http.Redirect(w, r, "/albums", http.StatusSeeOther)
}

func (c AuthController) redirectToLogin(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, "/login?reason="+reason, http.StatusFound)
}

func loginReasonMessage(reason string) string {
	switch reason {
	case "exchange_failed":
		return "We couldn't complete sign-in with Google. Please try again."

	case "get_user_failed", "no_user":
		return "We couldn't read your account details from Google. Please try again."

	case "profile_upsert_failed":
		return "We couldn't finish setting up your profile. Please try again."

	case "state_mismatch":
		return "Your sign-in request expired. Please try again."

	default:
		return "Sign-in failed. Please try again."
	}
}
