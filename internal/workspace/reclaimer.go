package workspace

import (
	"errors"
	"os"
	"time"

	"go.uber.org/zap"
)

const (
	defaultReclaimAttemptsConstant        = 5
	defaultReclaimBackoffConstant         = 500 * time.Millisecond
	reclaimAttemptFailedMessageConstant   = "working copy removal attempt failed"
	reclaimSucceededMessageConstant       = "working copy removed"
	reclaimAttemptFieldNameConstant       = "attempt"
	reclaimDirectoryFieldNameConstant     = "directory"
	reclaimerLoggerMissingMessageConstant = "reclaimer requires a logger"
)

var errReclaimerLoggerMissing = errors.New(reclaimerLoggerMissingMessageConstant)

// Reclaimer removes working copy directories, tolerating transient removal failures.
type Reclaimer struct {
	logger          *zap.Logger
	maximumAttempts int
	attemptBackoff  time.Duration
	removeDirectory func(string) error
}

// NewReclaimer constructs a Reclaimer with bounded retry defaults.
func NewReclaimer(logger *zap.Logger) (*Reclaimer, error) {
	if logger == nil {
		return nil, errReclaimerLoggerMissing
	}

	return &Reclaimer{
		logger:          logger,
		maximumAttempts: defaultReclaimAttemptsConstant,
		attemptBackoff:  defaultReclaimBackoffConstant,
		removeDirectory: os.RemoveAll,
	}, nil
}

// SetRetryPolicy overrides the attempt count and backoff used between removal attempts.
func (reclaimer *Reclaimer) SetRetryPolicy(maximumAttempts int, attemptBackoff time.Duration) {
	if reclaimer == nil {
		return
	}
	if maximumAttempts > 0 {
		reclaimer.maximumAttempts = maximumAttempts
	}
	if attemptBackoff >= 0 {
		reclaimer.attemptBackoff = attemptBackoff
	}
}

// Reclaim deletes the provided directory, retrying on failure up to the configured bound.
//
// Transient "resource busy" conditions from lingering file handles are the
// expected failure mode; the final error is returned after attempts are
// exhausted so callers can decide whether reclamation failure is fatal.
func (reclaimer *Reclaimer) Reclaim(directoryPath string) error {
	var removalError error
	for attemptNumber := 1; attemptNumber <= reclaimer.maximumAttempts; attemptNumber++ {
		removalError = reclaimer.removeDirectory(directoryPath)
		if removalError == nil {
			reclaimer.logger.Debug(
				reclaimSucceededMessageConstant,
				zap.String(reclaimDirectoryFieldNameConstant, directoryPath),
			)
			return nil
		}

		reclaimer.logger.Warn(
			reclaimAttemptFailedMessageConstant,
			zap.String(reclaimDirectoryFieldNameConstant, directoryPath),
			zap.Int(reclaimAttemptFieldNameConstant, attemptNumber),
			zap.Error(removalError),
		)

		if attemptNumber < reclaimer.maximumAttempts {
			time.Sleep(reclaimer.attemptBackoff)
		}
	}

	return removalError
}
