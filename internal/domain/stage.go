package domain

import "strings"

// Stage represents a step in the content pipeline.
// The zero value is not valid; use NormalizeStage to map raw labels.
type Stage string

const (
	StageSourceDiscovery    Stage = "Source Discovery"
	StageContentTranslation Stage = "Content Translation"
	StageGenderAnalysis     Stage = "Gender Analysis"
	StageVocalSynthesis     Stage = "Vocal Synthesis"
	StageCaptionEngine      Stage = "Caption Engine"
	StageThumbnailForge     Stage = "Thumbnail Forge"
	StageVisualProduction   Stage = "Visual Production"

	// StageCancelled is terminal and sits outside the pipeline order.
	StageCancelled Stage = "Cancelled"
)

// stageOrder defines pipeline execution order. StageCancelled is
// deliberately absent: it has no position and no successor.
var stageOrder = []Stage{
	StageSourceDiscovery,
	StageContentTranslation,
	StageGenderAnalysis,
	StageVocalSynthesis,
	StageCaptionEngine,
	StageThumbnailForge,
	StageVisualProduction,
}

// stageLabels maps raw labels (canonical and legacy worker labels) to
// canonical stages. Matching is case-insensitive on the trimmed input.
var stageLabels = map[string]Stage{
	"source discovery":    StageSourceDiscovery,
	"content translation": StageContentTranslation,
	"gender analysis":     StageGenderAnalysis,
	"vocal synthesis":     StageVocalSynthesis,
	"caption engine":      StageCaptionEngine,
	"thumbnail forge":     StageThumbnailForge,
	"visual production":   StageVisualProduction,
	"cancelled":           StageCancelled,

	// Legacy labels still emitted by older worker records.
	"text scrapped":     StageSourceDiscovery,
	"text translated":   StageContentTranslation,
	"voice & language":  StageGenderAnalysis,
	"speech generated":  StageVocalSynthesis,
	"subtitles created": StageCaptionEngine,
	"thumbnail created": StageThumbnailForge,
	"video created":     StageVisualProduction,
	"mastering":         StageVisualProduction,
	"visuals":           StageVisualProduction,
}

// NormalizeStage maps a possibly legacy or free-text label to a canonical
// Stage. Unknown or empty input yields StageSourceDiscovery; routing
// downstream depends on this default, so it never fails.
// Parameters:
//   - raw: label as received from the wire or persisted records.
//
// Returns:
//   - Stage: canonical stage, StageSourceDiscovery when unrecognized.
func NormalizeStage(raw string) Stage {
	if s, ok := stageLabels[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StageSourceDiscovery
}

// NextStage returns the stage immediately following current in pipeline
// order. The second return is false when current has no successor: the
// final stage, StageCancelled, or any value outside the sequence.
func NextStage(current Stage) (Stage, bool) {
	for i, s := range stageOrder {
		if s == current {
			if i+1 < len(stageOrder) {
				return stageOrder[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// StageIndex returns the position of s in pipeline order, or -1 for
// StageCancelled and unknown values.
func StageIndex(s Stage) int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Stages returns the pipeline stages in execution order, excluding
// StageCancelled.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// ReadyForFinalAssembly reports whether a project should be routed to the
// final assembly view: it either sits at StageVisualProduction already, or
// it finished the stage just before it. This is the single authoritative
// routing predicate; callers must not restate the condition.
func ReadyForFinalAssembly(status Status, stage Stage) bool {
	if stage == StageVisualProduction {
		return true
	}
	next, ok := NextStage(stage)
	return ok && status == StatusSuccess && next == StageVisualProduction
}

// Terminal reports whether the project can take no further pipeline
// actions.
func (s Stage) Terminal() bool {
	return s == StageCancelled
}
