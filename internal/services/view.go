package services

import "strings"

// ViewState is the screen a session is currently on.
type ViewState string

const (
	ViewAuth          ViewState = "auth"
	ViewHome          ViewState = "home"
	ViewForm          ViewState = "form"
	ViewLoading       ViewState = "loading"
	ViewResult        ViewState = "result"
	ViewHistory       ViewState = "history"
	ViewSavedProducts ViewState = "saved-products"
	ViewCompareTwo    ViewState = "compare-two"
	ViewTrending      ViewState = "trending"
)

var allViews = []ViewState{
	ViewAuth, ViewHome, ViewForm, ViewLoading, ViewResult,
	ViewHistory, ViewSavedProducts, ViewCompareTwo, ViewTrending,
}

func ParseView(s string) (ViewState, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range allViews {
		if string(v) == s {
			return v, nil
		}
	}
	return "", ErrInvalidView
}
