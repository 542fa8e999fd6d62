package auth

import "errors"

var ErrNoCredentials = errors.New("no upstream credentials; set OPENAI_API_KEY or OPENAI_OAUTH_TOKEN_URL")
