package tabstore

import "errors"

var (
	ErrNotFound       = errors.New("tabstore.not_found")
	ErrEmptyTabID     = errors.New("tabstore.empty_tab_id")
	ErrEmptySessionID = errors.New("tabstore.empty_session_id")
	ErrStorage        = errors.New("tabstore.storage")
)
