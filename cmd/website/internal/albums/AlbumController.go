package albums

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/adamgokit/slices"
	internalmodels "github.com/mattsnow/albumshare/cmd/website/internal/models"
	"github.com/mattsnow/albumshare/cmd/website/internal/viewmodels"
	"github.com/mattsnow/albumshare/pkg/models"
	"github.com/mattsnow/albumshare/pkg/services"
)

const placeholderCoverURL = "/static/images/placeholder.svg"

type AlbumControllerConfig struct {
	AlbumService   services.AlbumServicer
	CoverHosts     []string
	LikeService    services.LikeServicer
	Renderer       rendering.TemplateRenderer
	SessionService sessions.Session[*models.Profile]
}

type AlbumController struct {
	albumService   services.AlbumServicer
	coverHosts     []string
	likeService    services.LikeServicer
	renderer       rendering.TemplateRenderer
	sessionService sessions.Session[*models.Profile]
}

func NewAlbumController(config AlbumControllerConfig) AlbumController {
	return AlbumController{
		albumService:   config.AlbumService,
		coverHosts:     config.CoverHosts,
		likeService:    config.LikeService,
		renderer:       config.Renderer,
		sessionService: config.SessionService,
	}
}

/*
GET /albums?q=&year=&month=
*/
func (c AlbumController) ListingPage(w http.ResponseWriter, r *http.Request) {
	var (
		err     error
		albums  []models.Album
		buckets []models.ReleaseBucket
	)

	criteria := services.SearchCriteria{
		Query: httphelpers.GetFromRequest[string](r, "q"),
		Year:  httphelpers.GetFromRequest[int](r, "year"),
		Month: httphelpers.GetFromRequest[int](r, "month"),
	}

	viewData := viewmodels.AlbumListing{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{
				{Type: "module", Src: "/static/js/pages/album-list.js"},
			},
		},
		Profile:       &models.Profile{},
		Query:         strings.TrimSpace(criteria.Query),
		SelectedYear:  criteria.Year,
		SelectedMonth: criteria.Month,
		Years:         []int{},
		MonthOptions:  []internalmodels.MonthOption{},
		Albums:        []internalmodels.AlbumCard{},
	}

	/*
	 * The listing is public. A session is optional here; it only decides
	 * whether like buttons are active and which albums show as liked.
	 */
	if profile, sessionErr := c.sessionService.Get(r); sessionErr == nil && profile != nil && profile.ID != "" {
		viewData.Profile = profile
		viewData.IsAuthenticated = true
	}

	if albums, err = c.albumService.Search(criteria); err != nil {
		slog.Error("error searching albums", "error", err, "query", viewData.Query, "year", criteria.Year, "month", criteria.Month)
		viewData.IsError = true
		viewData.Message = "An unexpected error occurred loading albums. Please try again."

		c.renderer.Render("pages/album-listing", viewData, w)
		return
	}

	if buckets, err = c.albumService.GetReleaseBuckets(); err != nil {
		slog.Error("error getting release buckets. filter controls will be empty", "error", err)
		buckets = []models.ReleaseBucket{}
	}

	viewData.Years, viewData.MonthOptions = buildDateFilterOptions(buckets, criteria.Year)

	albumIDs := slices.Map(albums, func(album models.Album, index int) int64 {
		return album.ID
	})

	counts, liked, err := c.likeService.GetLikeSummary(albumIDs, viewData.Profile.ID)

	if err != nil {
		slog.Error("error getting like summary. counts default to zero", "error", err)
		counts = map[int64]int{}
		liked = map[int64]bool{}
	}

	for _, album := range albums {
		viewData.Albums = append(viewData.Albums, c.convertAlbumToCard(album, counts[album.ID], liked[album.ID]))
	}

	c.renderer.Render("pages/album-listing", viewData, w)
}

/*
POST /albums/{albumid}/like
*/
func (c AlbumController) LikeAction(w http.ResponseWriter, r *http.Request) {
	c.changeLike(w, r, true)
}

/*
POST /albums/{albumid}/unlike
*/
func (c AlbumController) UnlikeAction(w http.ResponseWriter, r *http.Request) {
	c.changeLike(w, r, false)
}

func (c AlbumController) changeLike(w http.ResponseWriter, r *http.Request, like bool) {
	var (
		err error
	)

	profile := viewmodels.GetProfileFromContext(r)
	albumID := httphelpers.GetFromRequest[int64](r, "albumid")

	if like {
		err = c.likeService.Like(profile.ID, albumID)
	} else {
		err = c.likeService.Unlike(profile.ID, albumID)
	}

	if err != nil {
		if errors.Is(err, models.ErrNotAuthenticated) {
			httphelpers.WriteText(w, http.StatusUnauthorized, "You must be signed in to like albums.")
			return
		}

		slog.Error("error updating like", "error", err, "albumID", albumID, "userID", profile.ID)
		httphelpers.TextInternalServerError(w, "Error updating like")
		return
	}

	counts, liked, err := c.likeService.GetLikeSummary([]int64{albumID}, profile.ID)

	if err != nil {
		slog.Error("error getting like summary after update", "error", err, "albumID", albumID)
	}

	if httphelpers.IsHtmx(r) {
		httphelpers.WriteHtml(w, http.StatusOK, renderLikeControl(albumID, counts[albumID], liked[albumID]))
		return
	}

	http.Redirect(w, r, listingURL(r), http.StatusSeeOther)
}

func (c AlbumController) convertAlbumToCard(album models.Album, likeCount int, isLiked bool) internalmodels.AlbumCard {
	return internalmodels.AlbumCard{
		ID:          album.ID,
		Title:       album.Title,
		Artist:      album.Artist,
		ReleaseDate: formatReleaseDate(album.ReleaseDate),
		CoverURL:    c.coverImageURL(album.CoverURL),
		LikeCount:   likeCount,
		IsLiked:     isLiked,
	}
}

/*
coverImageURL enforces the cover image allow-list. Anything that isn't a
well-formed URL on an approved host falls back to the placeholder; the
templates add a client-side fallback for images that fail to load.
*/
func (c AlbumController) coverImageURL(raw string) string {
	if raw == "" {
		return placeholderCoverURL
	}

	parsed, err := url.Parse(raw)

	if err != nil || parsed.Hostname() == "" {
		return placeholderCoverURL
	}

	if !slices.IsInSlice(parsed.Hostname(), c.coverHosts) {
		return placeholderCoverURL
	}

	return raw
}

func formatReleaseDate(value string) string {
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed.Format("Jan _2, 2006")
	}

	// MusicBrainz dates are sometimes just a year or a year-month.
	return value
}

func buildDateFilterOptions(buckets []models.ReleaseBucket, selectedYear int) ([]int, []internalmodels.MonthOption) {
	years := []int{}
	seenYears := map[int]bool{}
	months := []internalmodels.MonthOption{}

	for _, bucket := range buckets {
		if !seenYears[bucket.Year] {
			seenYears[bucket.Year] = true
			years = append(years, bucket.Year)
		}

		if selectedYear > 0 && bucket.Year == selectedYear {
			months = append(months, internalmodels.MonthOption{
				Value: bucket.Month,
				Label: monthOptionLabel(bucket),
			})
		}
	}

	return years, months
}

func monthOptionLabel(bucket models.ReleaseBucket) string {
	name := bucket.MonthName

	if name == "" {
		name = fmt.Sprintf("%02d", bucket.Month)
	}

	return fmt.Sprintf("%s (%02d)", name, bucket.Month)
}

func renderLikeControl(albumID int64, count int, liked bool) string {
	action := "like"
	label := "&#9825;"
	class := "like-button"

	if liked {
		action = "unlike"
		label = "&#9829;"
		class += " liked"
	}

	return fmt.Sprintf(
		`<button class="%s" hx-post="/albums/%d/%s" hx-swap="outerHTML">%s %d</button>`,
		class, albumID, action, label, count,
	)
}

func listingURL(r *http.Request) string {
	if referer := r.Header.Get("Referer"); referer != "" {
		if parsed, err := url.Parse(referer); err == nil && parsed.Path == "/albums" {
			return parsed.RequestURI()
		}
	}

	return "/albums"
}
