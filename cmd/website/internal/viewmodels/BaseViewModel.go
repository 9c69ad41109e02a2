package viewmodels

import (
	"net/http"

	"github.com/adampresley/adamgokit/rendering"
	"github.com/mattsnow/albumshare/pkg/models"
)

type BaseViewModel struct {
	Message            string
	IsError            bool
	IsWarning          bool
	IsHtmx             bool
	JavascriptIncludes []rendering.JavascriptInclude
}

func GetProfileFromContext(r *http.Request) *models.Profile {
	if result, ok := r.Context().Value("profile").(*models.Profile); ok {
		return result
	}

	return &models.Profile{}
}
