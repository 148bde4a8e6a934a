package app

import (
	"encoding/base64"

	"github.com/gorilla/securecookie"
)

func randomSecret() string {
	return base64.URLEncoding.EncodeToString(securecookie.GenerateRandomKey(32))
}
