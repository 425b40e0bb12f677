package utils

import "strings"

// RedirectPrefix - путь, по которому отдаются редиректы.
const RedirectPrefix = "/r/"

// ShortLink собирает короткую ссылку из базового адреса и токена.
func ShortLink(baseAddress, token string) string {
	return strings.TrimRight(baseAddress, "/") + RedirectPrefix + token
}
