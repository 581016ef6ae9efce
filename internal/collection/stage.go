package collection

// Stage is a named point in the collection cascade, keyed by days relative to the due date.
type Stage string

const (
	StageFriendlyReminder   Stage = "FRIENDLY_REMINDER"
	StageFinalNotice        Stage = "FINAL_NOTICE"
	StageOverdue1           Stage = "OVERDUE_1"
	StageOverdue3           Stage = "OVERDUE_3"
	StageLateFeeWarning     Stage = "LATE_FEE_WARNING"
	StageAccountReview      Stage = "ACCOUNT_REVIEW"
	StageCollectionsHandoff Stage = "COLLECTIONS_HANDOFF"
	StageLegalWarning       Stage = "LEGAL_WARNING"
)

var stageThresholds = []struct {
	maxDaysFromDue int
	stage          Stage
}{
	{-3, StageFriendlyReminder},
	{0, StageFinalNotice},
	{1, StageOverdue1},
	{3, StageOverdue3},
	{7, StageLateFeeWarning},
	{14, StageAccountReview},
	{30, StageCollectionsHandoff},
}

// DetermineStage maps daysFromDue (today - dueDate, negative before due) to the first matching stage.
func DetermineStage(daysFromDue int) Stage {
	for _, th := range stageThresholds {
		if daysFromDue <= th.maxDaysFromDue {
			return th.stage
		}
	}

	return StageLegalWarning
}
