// Package lms bridges a quest session to a SCORM 1.2 style learning
// management runtime. The runtime is optional: without one, or after a
// failed initialization, every bridge call is a silent no-op.
package lms

import (
	"fmt"
	"time"
)

// Status is a cmi.core.lesson_status value.
type Status string

const (
	StatusNotAttempted Status = "not attempted"
	StatusIncomplete   Status = "incomplete"
	StatusCompleted    Status = "completed"
	StatusPassed       Status = "passed"
	StatusFailed       Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNotAttempted, StatusIncomplete, StatusCompleted, StatusPassed, StatusFailed:
		return true
	}
	return false
}

// Finished reports whether s ends an attempt.
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusPassed || s == StatusFailed
}

// SCORM 1.2 data model keys.
const (
	KeyLessonStatus   = "cmi.core.lesson_status"
	KeyLessonLocation = "cmi.core.lesson_location"
	KeyScoreRaw       = "cmi.core.score.raw"
	KeyScoreMin       = "cmi.core.score.min"
	KeyScoreMax       = "cmi.core.score.max"
	KeySessionTime    = "cmi.core.session_time"
	KeyTotalTime      = "cmi.core.total_time"
	KeyEntry          = "cmi.core.entry"
	KeyStudentID      = "cmi.core.student_id"
	KeySuspendData    = "cmi.suspend_data"
)

// CMIString255 and CMIString4096 limits.
const (
	MaxLocationLen    = 255
	MaxSuspendDataLen = 4096
)

// Entry values for KeyEntry.
const (
	EntryAbInitio = "ab-initio"
	EntryResume   = "resume"
)

// Runtime is the LMS collaborator.
type Runtime interface {
	Initialize() error
	Terminate() error
	SetScore(raw, min, max float64) error
	SetStatus(s Status) error
	SetLocation(token string) error
	SetSuspendData(data string) error
	StartSessionTime() error
	EndSessionTime() error
	GetValue(key string) (string, error)
	Commit(param string) error
}

// FormatSessionTime renders d as a SCORM 1.2 CMITimespan (HHHH:MM:SS.SS).
func FormatSessionTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := d.Milliseconds() / 10
	h := cs / 360000
	cs -= h * 360000
	m := cs / 6000
	cs -= m * 6000
	s := cs / 100
	cs -= s * 100
	return fmt.Sprintf("%04d:%02d:%02d.%02d", h, m, s, cs)
}

// ParseSessionTime parses a CMITimespan. Hours may use 2 to 4 digits.
func ParseSessionTime(v string) (time.Duration, error) {
	var h, m int
	var s float64
	if _, err := fmt.Sscanf(v, "%d:%d:%f", &h, &m, &s); err != nil {
		return 0, fmt.Errorf("lms: bad timespan %q: %w", v, err)
	}
	if h < 0 || m < 0 || m > 59 || s < 0 || s >= 60 {
		return 0, fmt.Errorf("lms: bad timespan %q", v)
	}
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
	return d + time.Duration(s*float64(time.Second)).Round(10*time.Millisecond), nil
}
