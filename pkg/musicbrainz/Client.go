package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/retrier"
	"github.com/mattsnow/albumshare/pkg/models"
)

const (
	defaultBaseURL   = "https://musicbrainz.org/ws/2"
	defaultUserAgent = "AlbumShareMBImporter/1.0 ( matthew.m.snow@gmail.com )"

	// MusicBrainz expects roughly one request per second.
	defaultThrottle = 1100 * time.Millisecond

	coverArtURLFormat = "https://coverartarchive.org/release/%s/front"
	pageSize          = 100
	perDaySafetyCap   = 10000
)

type ArtistCredit struct {
	Name       string `json:"name"`
	JoinPhrase string `json:"joinphrase"`
}

type ReleaseGroup struct {
	ID string `json:"id"`
}

type Label struct {
	Name string `json:"name"`
}

type LabelInfo struct {
	Label *Label `json:"label"`
}

type Release struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Date         string         `json:"date"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	ReleaseGroup *ReleaseGroup  `json:"release-group"`
	LabelInfo    []LabelInfo    `json:"label-info"`
}

type searchResponse struct {
	Count    int       `json:"count"`
	Releases []Release `json:"releases"`
}

type ClientConfig struct {
	BaseURL    string
	UserAgent  string
	Throttle   time.Duration
	HTTPClient *http.Client
}

type Client struct {
	baseURL    string
	userAgent  string
	throttle   time.Duration
	httpClient *http.Client
}

func NewClient(config ClientConfig) Client {
	result := Client{
		baseURL:    config.BaseURL,
		userAgent:  config.UserAgent,
		throttle:   config.Throttle,
		httpClient: config.HTTPClient,
	}

	if result.baseURL == "" {
		result.baseURL = defaultBaseURL
	}

	if result.userAgent == "" {
		result.userAgent = defaultUserAgent
	}

	if result.throttle <= 0 {
		result.throttle = defaultThrottle
	}

	if result.httpClient == nil {
		result.httpClient = &http.Client{Timeout: time.Second * 90}
	}

	return result
}

/*
FetchMonthReleases pulls every official album release dated inside the given
month, one day at a time, paging through search results. A failed page aborts
the current day and moves on, matching the best-effort nature of a bulk
import.
*/
func (c Client) FetchMonthReleases(ctx context.Context, year, month int) ([]Release, error) {
	all := []Release{}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)

	for day := first; day.Month() == time.Month(month); day = day.AddDate(0, 0, 1) {
		if ctx.Err() != nil {
			return all, ctx.Err()
		}

		dateStr := day.Format("2006-01-02")
		query := fmt.Sprintf("date:%s AND status:official AND primarytype:Album", dateStr)

		offset := 0
		total := -1
		dayCount := 0

		for {
			page, err := c.searchReleases(ctx, query, offset)

			if err != nil {
				slog.Error("error fetching release page. moving to next day", "date", dateStr, "error", err)
				break
			}

			if total < 0 {
				total = page.Count
				slog.Info("fetching releases", "date", dateStr, "total", total)
			}

			if len(page.Releases) == 0 {
				break
			}

			all = append(all, page.Releases...)
			dayCount += len(page.Releases)
			offset += len(page.Releases)

			if offset >= total {
				break
			}

			if offset > perDaySafetyCap {
				slog.Warn("hit per-day safety cap. moving to next day", "date", dateStr)
				break
			}
		}

		slog.Info("collected releases", "date", dateStr, "count", dayCount)
	}

	return all, nil
}

func (c Client) searchReleases(ctx context.Context, query string, offset int) (*searchResponse, error) {
	var (
		err error
	)

	time.Sleep(c.throttle)

	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")
	params.Set("limit", fmt.Sprint(pageSize))
	params.Set("offset", fmt.Sprint(offset))

	requestURL := fmt.Sprintf("%s/release?%s", c.baseURL, params.Encode())
	result := &searchResponse{}

	retrier.Retry(func() error {
		var (
			request  *http.Request
			response *http.Response
		)

		if request, err = http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil); err != nil {
			return err
		}

		request.Header.Set("User-Agent", c.userAgent)

		if response, err = c.httpClient.Do(request); err != nil {
			slog.Error("error calling MusicBrainz. trying again", "error", err)
			return err
		}

		defer response.Body.Close()

		if response.StatusCode >= 400 {
			err = fmt.Errorf("MusicBrainz returned status %d for %s", response.StatusCode, requestURL)
			slog.Error("MusicBrainz error response. trying again", "error", err)
			return err
		}

		if err = json.NewDecoder(response.Body).Decode(result); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

/*
NormalizeRelease flattens a raw MusicBrainz release into a catalog album.
Releases with no MusicBrainz ID cannot be deduped or upserted and are
dropped; the second return value reports whether the release was usable.
*/
func NormalizeRelease(release Release) (models.Album, bool) {
	if release.ID == "" {
		return models.Album{}, false
	}

	album := models.Album{
		Title:       release.Title,
		Artist:      joinArtistCredit(release.ArtistCredit),
		ReleaseDate: release.Date,
		Label:       firstLabel(release.LabelInfo),
		CoverURL:    fmt.Sprintf(coverArtURLFormat, release.ID),
		MBReleaseID: release.ID,
	}

	if album.Title == "" {
		album.Title = "Unknown"
	}

	if release.ReleaseGroup != nil {
		album.MBReleaseGroupID = release.ReleaseGroup.ID
	}

	return album, true
}

func joinArtistCredit(credits []ArtistCredit) string {
	builder := strings.Builder{}

	for _, credit := range credits {
		builder.WriteString(credit.Name)
		builder.WriteString(credit.JoinPhrase)
	}

	if joined := strings.TrimSpace(builder.String()); joined != "" {
		return joined
	}

	return "Unknown"
}

func firstLabel(labelInfo []LabelInfo) string {
	for _, info := range labelInfo {
		if info.Label != nil && info.Label.Name != "" {
			return info.Label.Name
		}
	}

	return ""
}
