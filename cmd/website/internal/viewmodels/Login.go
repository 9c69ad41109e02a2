package viewmodels

type Login struct {
	BaseViewModel
}
