package config

import "github.com/gear6io/msidump/pkg/errors"

// Config-specific error codes
var (
	ErrConfigFileReadFailed   = errors.MustNewCode("config.file_read_failed")
	ErrConfigFileParseFailed  = errors.MustNewCode("config.file_parse_failed")
	ErrConfigValidationFailed = errors.MustNewCode("config.validation_failed")
	ErrLogLevelInvalid        = errors.MustNewCode("config.log_level_invalid")
	ErrLogFileOpenFailed      = errors.MustNewCode("config.log_file_open_failed")
	ErrOutputDirRequired      = errors.MustNewCode("config.output_dir_required")
)
