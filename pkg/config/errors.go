package config

import "errors"

var (
	ErrParsingConfig   = errors.New("config.parse_env")
	ErrReadingFile     = errors.New("config.read_file")
	ErrParsingFile     = errors.New("config.parse_file")
	ErrLoadingEnvFile  = errors.New("config.load_env_file")
	ErrConfigNotLoaded = errors.New("config.not_loaded")
	ErrNilPointer      = errors.New("config.nil_pointer")
)
