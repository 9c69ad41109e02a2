package models

import (
	"fmt"
)

var (
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
)

/*
Profile is the application-side record for a signed-in user. The ID is the
opaque subject issued by the identity provider, so a profile row can be
upserted idempotently on every successful sign-in.
*/
type Profile struct {
	ID    string
	Email string
}
