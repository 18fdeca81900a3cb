package constants

// JobStatus is the canonical status for rows in translation_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusPending     JobStatus = "pending"     // created, no work started
	JobStatusProcessing  JobStatus = "processing"  // picked up by a run
	JobStatusExtracting  JobStatus = "extracting"  // stage 1: pdf -> text
	JobStatusTranslating JobStatus = "translating" // stage 2: chunks -> provider
	JobStatusBuilding    JobStatus = "building"    // stage 3: text -> pdf
	JobStatusDone        JobStatus = "done"        // terminal success
	JobStatusError       JobStatus = "error"       // terminal failure
)

var allJobStatuses = []JobStatus{
	JobStatusPending,
	JobStatusProcessing,
	JobStatusExtracting,
	JobStatusTranslating,
	JobStatusBuilding,
	JobStatusDone,
	JobStatusError,
}

// JobStatuses returns every status as strings, in lifecycle order.
func JobStatuses() []string {
	out := make([]string, len(allJobStatuses))
	for i, s := range allJobStatuses {
		out[i] = string(s)
	}
	return out
}

func (s JobStatus) Valid() bool {
	for _, v := range allJobStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusError
}

// Runnable reports whether a pipeline run may start from s.
func (s JobStatus) Runnable() bool {
	return s == JobStatusPending || s == JobStatusProcessing
}

// Stage order of a successful run. JobStatusError sits outside of it.
func (s JobStatus) Rank() int {
	switch s {
	case JobStatusPending:
		return 0
	case JobStatusProcessing:
		return 1
	case JobStatusExtracting:
		return 2
	case JobStatusTranslating:
		return 3
	case JobStatusBuilding:
		return 4
	case JobStatusDone:
		return 5
	default:
		return -1
	}
}

// Progress checkpoints written by the orchestrator.
const (
	ProgressProcessing       = 10
	ProgressDownloaded       = 15
	ProgressExtracted        = 25
	ProgressTranslateStart   = 40
	ProgressTranslateEnd     = 70
	ProgressBuildStart       = 75
	ProgressBuilt            = 85
	ProgressDone             = 100
	ProgressMin, ProgressMax = 0, 100
)
