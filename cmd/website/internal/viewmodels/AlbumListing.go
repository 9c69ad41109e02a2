package viewmodels

import (
	internalmodels "github.com/mattsnow/albumshare/cmd/website/internal/models"
	"github.com/mattsnow/albumshare/pkg/models"
)

type AlbumListing struct {
	BaseViewModel

	Profile         *models.Profile
	IsAuthenticated bool
	Query           string
	SelectedYear    int
	SelectedMonth   int
	Years           []int
	MonthOptions    []internalmodels.MonthOption
	Albums          []internalmodels.AlbumCard
}
