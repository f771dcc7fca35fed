package entity

import (
	"time"

	"github.com/joseph-ayodele/rfp-desk/constants"
)

// LogEntry is one line of the pipeline activity log.
type LogEntry struct {
	Timestamp time.Time          `json:"timestamp"`
	Stage     constants.Stage    `json:"stage"`
	Message   string             `json:"message"`
	Severity  constants.Severity `json:"severity"`
}
