package shared

import "fmt"

// PostingStage names the step of a business-event posting that failed.
type PostingStage string

const (
	StageValidation PostingStage = "validation"
	StageJournal    PostingStage = "journal"
	StageSubledger  PostingStage = "subledger"
)

// PostingFailure reports that the ledger side of a business event did not
// complete. The business record itself stays valid; callers log the failure
// and decide whether to surface a warning.
type PostingFailure struct {
	Event string
	Stage PostingStage
	// EntryNumber is set when the journal was written before the failure.
	EntryNumber string
	Err         error
}

func (e *PostingFailure) Error() string {
	if e.EntryNumber != "" {
		return fmt.Sprintf("ledger posting %s failed at %s after %s: %v", e.Event, e.Stage, e.EntryNumber, e.Err)
	}
	return fmt.Sprintf("ledger posting %s failed at %s: %v", e.Event, e.Stage, e.Err)
}

func (e *PostingFailure) Unwrap() error {
	return e.Err
}

// JournalPersisted reports whether the general-ledger side was committed.
func (e *PostingFailure) JournalPersisted() bool {
	return e != nil && e.Stage == StageSubledger
}
