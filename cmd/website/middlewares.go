package main

import (
	"context"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/sessions"
	"github.com/mattsnow/albumshare/pkg/models"
)

/*
newRequireProfileMiddleware guards the mutating like/unlike actions. These
are invoked from the listing page, so an unauthenticated caller gets a 401
rather than a login redirect, and nothing is mutated.
*/
func newRequireProfileMiddleware(sessionService sessions.Session[*models.Profile]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				err            error
				sessionProfile *models.Profile
			)

			if sessionProfile, err = sessionService.Get(r); err != nil || sessionProfile == nil || sessionProfile.ID == "" {
				httphelpers.WriteText(w, http.StatusUnauthorized, "You must be signed in to do that.")
				return
			}

			ctx := context.WithValue(r.Context(), "profile", sessionProfile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
