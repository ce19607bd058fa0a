package httpclient

import "errors"

var errEmptyURL = errors.New("request url is empty")
