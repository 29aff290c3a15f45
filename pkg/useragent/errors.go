package useragent

import "errors"

var ErrEmptyUserAgent = errors.New("useragent.empty")
