package solrmap

import (
	"errors"

	"github.com/kailas-cloud/solrmap/internal/domain"
)

// Sentinel errors. Use errors.Is() to check.
var (
	ErrConstruction      = domain.ErrConstruction
	ErrConversion        = domain.ErrConversion
	ErrUnknownSchema     = domain.ErrUnknownSchema
	ErrParse             = domain.ErrParse
	ErrEmptyInput        = domain.ErrEmptyInput
	ErrAlreadyRegistered = domain.ErrAlreadyRegistered
	ErrUnavailable       = domain.ErrUnavailable

	// ErrRejected means the index answered an update with a non-zero status.
	ErrRejected = errors.New("solrmap: update rejected")
)
