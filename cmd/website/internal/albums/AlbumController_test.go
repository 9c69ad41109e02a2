package albums

import (
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adampresley/adamgokit/sessions"
	internalmodels "github.com/mattsnow/albumshare/cmd/website/internal/models"
	"github.com/mattsnow/albumshare/cmd/website/internal/viewmodels"
	"github.com/mattsnow/albumshare/pkg/models"
	"github.com/mattsnow/albumshare/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gob.Register(&models.Profile{})
}

type mockRenderer struct {
	pageName string
	viewData any
}

func (m *mockRenderer) Render(pageName string, data any, w io.Writer) error {
	m.pageName = pageName
	m.viewData = data
	return nil
}

func (m *mockRenderer) RenderString(templateString string, data any, w io.Writer) error {
	return nil
}

type mockAlbumService struct {
	albums    []models.Album
	searchErr error
	buckets   []models.ReleaseBucket
}

func (m *mockAlbumService) Search(criteria services.SearchCriteria) ([]models.Album, error) {
	return m.albums, m.searchErr
}

func (m *mockAlbumService) GetReleaseBuckets() ([]models.ReleaseBucket, error) {
	return m.buckets, nil
}

type mockLikeService struct {
	counts     map[int64]int
	liked      map[int64]bool
	summaryErr error

	likeCalled   bool
	unlikeCalled bool
}

func (m *mockLikeService) GetLikeSummary(albumIDs []int64, userID string) (map[int64]int, map[int64]bool, error) {
	if m.summaryErr != nil {
		return nil, nil, m.summaryErr
	}

	return m.counts, m.liked, nil
}

func (m *mockLikeService) Like(userID string, albumID int64) error {
	if userID == "" {
		return models.ErrNotAuthenticated
	}

	m.likeCalled = true
	return nil
}

func (m *mockLikeService) Unlike(userID string, albumID int64) error {
	if userID == "" {
		return models.ErrNotAuthenticated
	}

	m.unlikeCalled = true
	return nil
}

func newTestSessionService() sessions.Session[*models.Profile] {
	store := sessions.NewCookieStore("test-secret")
	return sessions.NewSessionWrapper[*models.Profile](store, "albumshareusers", "profile")
}

func newController(albumService *mockAlbumService, likeService *mockLikeService, renderer *mockRenderer) AlbumController {
	return NewAlbumController(AlbumControllerConfig{
		AlbumService:   albumService,
		CoverHosts:     []string{"coverartarchive.org"},
		LikeService:    likeService,
		Renderer:       renderer,
		SessionService: newTestSessionService(),
	})
}

func requestWithProfile(r *http.Request, profile *models.Profile) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), "profile", profile))
}

func TestListingPage(t *testing.T) {
	albumService := &mockAlbumService{
		albums: []models.Album{
			{ID: 1, Title: "Allowed Cover", Artist: "Artist A", ReleaseDate: "2024-03-15", CoverURL: "https://coverartarchive.org/release/abc/front"},
			{ID: 2, Title: "Blocked Cover", Artist: "Artist B", ReleaseDate: "2024-03-01", CoverURL: "https://evil.example.com/cover.jpg"},
		},
		buckets: []models.ReleaseBucket{
			{Year: 2024, Month: 3, MonthName: "March"},
			{Year: 2023, Month: 11, MonthName: "November"},
		},
	}

	likeService := &mockLikeService{
		counts: map[int64]int{1: 3},
		liked:  map[int64]bool{},
	}

	renderer := &mockRenderer{}
	controller := newController(albumService, likeService, renderer)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/albums?year=2024", nil)

	controller.ListingPage(w, r)

	assert.Equal(t, "pages/album-listing", renderer.pageName)

	viewData, ok := renderer.viewData.(viewmodels.AlbumListing)
	require.True(t, ok)

	assert.False(t, viewData.IsAuthenticated)
	assert.Equal(t, 2024, viewData.SelectedYear)
	assert.Equal(t, []int{2024, 2023}, viewData.Years)

	require.Len(t, viewData.MonthOptions, 1)
	assert.Equal(t, internalmodels.MonthOption{Value: 3, Label: "March (03)"}, viewData.MonthOptions[0])

	require.Len(t, viewData.Albums, 2)

	assert.Equal(t, "https://coverartarchive.org/release/abc/front", viewData.Albums[0].CoverURL)
	assert.Equal(t, "Mar 15, 2024", viewData.Albums[0].ReleaseDate)
	assert.Equal(t, 3, viewData.Albums[0].LikeCount)

	assert.Equal(t, placeholderCoverURL, viewData.Albums[1].CoverURL)
	assert.Equal(t, 0, viewData.Albums[1].LikeCount)
}

func TestListingPage_AuthenticatedUserSeesLikedAlbums(t *testing.T) {
	albumService := &mockAlbumService{
		albums: []models.Album{
			{ID: 1, Title: "Album", Artist: "Artist", ReleaseDate: "2024-03-15"},
		},
	}

	likeService := &mockLikeService{
		counts: map[int64]int{1: 1},
		liked:  map[int64]bool{1: true},
	}

	renderer := &mockRenderer{}
	sessionService := newTestSessionService()

	controller := NewAlbumController(AlbumControllerConfig{
		AlbumService:   albumService,
		CoverHosts:     []string{"coverartarchive.org"},
		LikeService:    likeService,
		Renderer:       renderer,
		SessionService: sessionService,
	})

	/*
	 * Establish a session, then replay its cookies on the listing request.
	 */
	seedRecorder := httptest.NewRecorder()
	seedRequest := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)

	require.NoError(t, sessionService.Set(seedRequest, &models.Profile{ID: "google-123", Email: "person@example.com"}))
	require.NoError(t, sessionService.Save(seedRecorder, seedRequest))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/albums", nil)

	for _, cookie := range seedRecorder.Result().Cookies() {
		r.AddCookie(cookie)
	}

	controller.ListingPage(w, r)

	viewData, ok := renderer.viewData.(viewmodels.AlbumListing)
	require.True(t, ok)

	assert.True(t, viewData.IsAuthenticated)
	assert.Equal(t, "google-123", viewData.Profile.ID)

	require.Len(t, viewData.Albums, 1)
	assert.True(t, viewData.Albums[0].IsLiked)
}

func TestListingPage_SearchFailure(t *testing.T) {
	albumService := &mockAlbumService{searchErr: fmt.Errorf("boom")}
	likeService := &mockLikeService{}
	renderer := &mockRenderer{}

	controller := newController(albumService, likeService, renderer)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/albums", nil)

	controller.ListingPage(w, r)

	viewData, ok := renderer.viewData.(viewmodels.AlbumListing)
	require.True(t, ok)

	assert.True(t, viewData.IsError)
	assert.NotEmpty(t, viewData.Message)
	assert.Empty(t, viewData.Albums)
}

func TestListingPage_LikeSummaryFailureDefaultsToZero(t *testing.T) {
	albumService := &mockAlbumService{
		albums: []models.Album{
			{ID: 1, Title: "Album", Artist: "Artist", ReleaseDate: "2024-03-15"},
		},
	}

	likeService := &mockLikeService{summaryErr: fmt.Errorf("boom")}
	renderer := &mockRenderer{}

	controller := newController(albumService, likeService, renderer)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/albums", nil)

	controller.ListingPage(w, r)

	viewData, ok := renderer.viewData.(viewmodels.AlbumListing)
	require.True(t, ok)

	assert.False(t, viewData.IsError)

	require.Len(t, viewData.Albums, 1)
	assert.Equal(t, 0, viewData.Albums[0].LikeCount)
	assert.False(t, viewData.Albums[0].IsLiked)
}

func TestLikeAction_RequiresAuthentication(t *testing.T) {
	likeService := &mockLikeService{}
	controller := newController(&mockAlbumService{}, likeService, &mockRenderer{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/albums/42/like", nil)
	r.SetPathValue("albumid", "42")

	controller.LikeAction(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, likeService.likeCalled)
}

func TestLikeAction_HtmxRespondsWithLikeControl(t *testing.T) {
	likeService := &mockLikeService{
		counts: map[int64]int{42: 5},
		liked:  map[int64]bool{42: true},
	}

	controller := newController(&mockAlbumService{}, likeService, &mockRenderer{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/albums/42/like", nil)
	r.SetPathValue("albumid", "42")
	r.Header.Set("HX-Request", "true")
	r = requestWithProfile(r, &models.Profile{ID: "google-123"})

	controller.LikeAction(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, likeService.likeCalled)

	body := w.Body.String()
	assert.Contains(t, body, `hx-post="/albums/42/unlike"`)
	assert.Contains(t, body, "&#9829; 5")
}

func TestUnlikeAction_RedirectsBackToListing(t *testing.T) {
	likeService := &mockLikeService{
		counts: map[int64]int{},
		liked:  map[int64]bool{},
	}

	controller := newController(&mockAlbumService{}, likeService, &mockRenderer{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/albums/42/unlike", nil)
	r.SetPathValue("albumid", "42")
	r.Header.Set("Referer", "http://localhost:8080/albums?year=2024&month=3")
	r = requestWithProfile(r, &models.Profile{ID: "google-123"})

	controller.UnlikeAction(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/albums?year=2024&month=3", w.Header().Get("Location"))
	assert.True(t, likeService.unlikeCalled)
}

func TestCoverImageURL(t *testing.T) {
	controller := newController(&mockAlbumService{}, &mockLikeService{}, &mockRenderer{})

	assert.Equal(t, "https://coverartarchive.org/release/abc/front", controller.coverImageURL("https://coverartarchive.org/release/abc/front"))
	assert.Equal(t, placeholderCoverURL, controller.coverImageURL("https://evil.example.com/x.jpg"))
	assert.Equal(t, placeholderCoverURL, controller.coverImageURL(""))
	assert.Equal(t, placeholderCoverURL, controller.coverImageURL("not a url"))
}

func TestFormatReleaseDate(t *testing.T) {
	assert.Equal(t, "Mar 15, 2024", formatReleaseDate("2024-03-15"))
	assert.Equal(t, "Mar  5, 2024", formatReleaseDate("2024-03-05"))
	assert.Equal(t, "2024-03", formatReleaseDate("2024-03"))
	assert.Equal(t, "", formatReleaseDate(""))
}

func TestBuildDateFilterOptions(t *testing.T) {
	buckets := []models.ReleaseBucket{
		{Year: 2024, Month: 3, MonthName: "March"},
		{Year: 2024, Month: 5, MonthName: "May"},
		{Year: 2023, Month: 11, MonthName: "November"},
	}

	years, months := buildDateFilterOptions(buckets, 2024)

	assert.Equal(t, []int{2024, 2023}, years)
	assert.Equal(t, []internalmodels.MonthOption{
		{Value: 3, Label: "March (03)"},
		{Value: 5, Label: "May (05)"},
	}, months)

	years, months = buildDateFilterOptions(buckets, 0)

	assert.Equal(t, []int{2024, 2023}, years)
	assert.Empty(t, months)
}

func TestMonthOptionLabel(t *testing.T) {
	assert.Equal(t, "March (03)", monthOptionLabel(models.ReleaseBucket{Year: 2024, Month: 3, MonthName: "March"}))
	assert.Equal(t, "07 (07)", monthOptionLabel(models.ReleaseBucket{Year: 2024, Month: 7}))
}

func TestRenderLikeControl(t *testing.T) {
	assert.Equal(
		t,
		`<button class="like-button" hx-post="/albums/42/like" hx-swap="outerHTML">&#9825; 0</button>`,
		renderLikeControl(42, 0, false),
	)

	assert.Equal(
		t,
		`<button class="like-button liked" hx-post="/albums/42/unlike" hx-swap="outerHTML">&#9829; 5</button>`,
		renderLikeControl(42, 5, true),
	)
}

func TestListingURL(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/albums/42/like", nil)
	assert.Equal(t, "/albums", listingURL(r))

	r.Header.Set("Referer", "http://localhost:8080/albums?q=daft")
	assert.Equal(t, "/albums?q=daft", listingURL(r))

	r.Header.Set("Referer", "http://localhost:8080/somewhere-else")
	assert.Equal(t, "/albums", listingURL(r))
}
