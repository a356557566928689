// ABOUTME: Enumerations for pipeline stages, interaction types, task statuses and priorities
// ABOUTME: Provides validation and case-insensitive parsing for each enum
package models

import (
	"fmt"
	"strings"
)

// Stage is the pipeline position of a contact.
type Stage string

const (
	StageFamiliar   Stage = "FAMILIAR"
	StageEnchanting Stage = "ENCHANTING"
	StageBewitched  Stage = "BEWITCHED"
	StageVanished   Stage = "VANISHED"
)

// InteractionType constants.
type InteractionType string

const (
	InteractionEmail   InteractionType = "EMAIL"
	InteractionCall    InteractionType = "CALL"
	InteractionMeeting InteractionType = "MEETING"
	InteractionNote    InteractionType = "NOTE"
)

// TaskStatus is the board column of a task.
type TaskStatus string

const (
	StatusSummoned TaskStatus = "SUMMONED"
	StatusInRitual TaskStatus = "IN_RITUAL"
	StatusBanished TaskStatus = "BANISHED"
)

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// AllStages returns every stage in pipeline order.
func AllStages() []Stage {
	return []Stage{StageFamiliar, StageEnchanting, StageBewitched, StageVanished}
}

// AllTaskStatuses returns every status in board order.
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{StatusSummoned, StatusInRitual, StatusBanished}
}

// AllPriorities returns every priority from most to least severe.
func AllPriorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

func (s Stage) Valid() bool {
	switch s {
	case StageFamiliar, StageEnchanting, StageBewitched, StageVanished:
		return true
	}
	return false
}

func (t InteractionType) Valid() bool {
	switch t {
	case InteractionEmail, InteractionCall, InteractionMeeting, InteractionNote:
		return true
	}
	return false
}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusSummoned, StatusInRitual, StatusBanished:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Rank orders priorities by severity: CRITICAL is 0, LOW is 3. Unknown
// priorities sort after LOW.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

func normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// ParseStage accepts any casing, e.g. "bewitched".
func ParseStage(s string) (Stage, error) {
	stage := Stage(normalize(s))
	if !stage.Valid() {
		return "", fmt.Errorf("invalid stage: %q (valid: FAMILIAR, ENCHANTING, BEWITCHED, VANISHED)", s)
	}
	return stage, nil
}

func ParseInteractionType(s string) (InteractionType, error) {
	t := InteractionType(normalize(s))
	if !t.Valid() {
		return "", fmt.Errorf("invalid interaction type: %q (valid: EMAIL, CALL, MEETING, NOTE)", s)
	}
	return t, nil
}

// ParseTaskStatus accepts any casing and "in-ritual" style separators.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(normalize(s))
	if !status.Valid() {
		return "", fmt.Errorf("invalid task status: %q (valid: SUMMONED, IN_RITUAL, BANISHED)", s)
	}
	return status, nil
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(normalize(s))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority: %q (valid: LOW, MEDIUM, HIGH, CRITICAL)", s)
	}
	return p, nil
}
