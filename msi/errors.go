package msi

import "github.com/gear6io/msidump/pkg/errors"

// Decoder-specific error codes
var (
	ErrMissingStream = errors.MustNewCode("msi.missing_stream")
	ErrPoolTruncated = errors.MustNewCode("msi.pool_truncated")
	ErrStringIndex   = errors.MustNewCode("msi.string_index")
	ErrTableDump     = errors.MustNewCode("msi.table_dump_marshal")
)
