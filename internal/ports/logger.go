package ports

import "github.com/bft-labs/qosship/pkg/log"

// Logger and Field are re-exported so adapters need only import ports.
type (
	Logger = log.Logger
	Field  = log.Field
)

var (
	String   = log.String
	Int      = log.Int
	Uint64   = log.Uint64
	Duration = log.Duration
	Stringer = log.Stringer
	Err      = log.Err
)
