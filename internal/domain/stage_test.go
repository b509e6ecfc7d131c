package domain

import "testing"

func TestNormalizeStage(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Stage
	}{
		{name: "canonical label", raw: "Vocal Synthesis", expected: StageVocalSynthesis},
		{name: "case insensitive", raw: "vISUAL pRODUCTION", expected: StageVisualProduction},
		{name: "surrounding whitespace", raw: "  Caption Engine  ", expected: StageCaptionEngine},
		{name: "legacy text scrapped", raw: "Text Scrapped", expected: StageSourceDiscovery},
		{name: "legacy text translated", raw: "Text Translated", expected: StageContentTranslation},
		{name: "legacy voice and language", raw: "Voice & Language", expected: StageGenderAnalysis},
		{name: "legacy speech generated", raw: "Speech Generated", expected: StageVocalSynthesis},
		{name: "legacy subtitles created", raw: "Subtitles Created", expected: StageCaptionEngine},
		{name: "legacy thumbnail created", raw: "Thumbnail Created", expected: StageThumbnailForge},
		{name: "legacy mastering", raw: "Mastering", expected: StageVisualProduction},
		{name: "legacy visuals", raw: "Visuals", expected: StageVisualProduction},
		{name: "cancelled", raw: "cancelled", expected: StageCancelled},
		{name: "unknown defaults to first stage", raw: "Rendering Farm", expected: StageSourceDiscovery},
		{name: "empty defaults to first stage", raw: "", expected: StageSourceDiscovery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeStage(tt.raw); got != tt.expected {
				t.Errorf("NormalizeStage(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestNextStage(t *testing.T) {
	// Walking from the first stage must visit every stage exactly once.
	current := StageSourceDiscovery
	visited := []Stage{current}
	for {
		next, ok := NextStage(current)
		if !ok {
			break
		}
		visited = append(visited, next)
		current = next
	}

	all := Stages()
	if len(visited) != len(all) {
		t.Fatalf("walk visited %d stages, want %d", len(visited), len(all))
	}
	for i, s := range all {
		if visited[i] != s {
			t.Errorf("walk position %d = %q, want %q", i, visited[i], s)
		}
	}

	if next, ok := NextStage(StageVisualProduction); ok {
		t.Errorf("final stage has successor %q", next)
	}
	if next, ok := NextStage(StageCancelled); ok {
		t.Errorf("cancelled stage has successor %q", next)
	}
	if next, ok := NextStage(Stage("bogus")); ok {
		t.Errorf("unknown stage has successor %q", next)
	}
}

func TestStageIndex(t *testing.T) {
	if got := StageIndex(StageSourceDiscovery); got != 0 {
		t.Errorf("StageIndex(first) = %d, want 0", got)
	}
	if got := StageIndex(StageCancelled); got != -1 {
		t.Errorf("StageIndex(cancelled) = %d, want -1", got)
	}
	if got := StageIndex(Stage("bogus")); got != -1 {
		t.Errorf("StageIndex(unknown) = %d, want -1", got)
	}
}

func TestReadyForFinalAssembly(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		stage    Stage
		expected bool
	}{
		{name: "at final stage regardless of status", status: StatusProcessing, stage: StageVisualProduction, expected: true},
		{name: "at final stage idle", status: StatusIdle, stage: StageVisualProduction, expected: true},
		{name: "at final stage after error", status: StatusError, stage: StageVisualProduction, expected: true},
		{name: "finished penultimate stage", status: StatusSuccess, stage: StageThumbnailForge, expected: true},
		{name: "penultimate stage still running", status: StatusProcessing, stage: StageThumbnailForge, expected: false},
		{name: "penultimate stage failed", status: StatusError, stage: StageThumbnailForge, expected: false},
		{name: "earlier stage succeeded", status: StatusSuccess, stage: StageCaptionEngine, expected: false},
		{name: "cancelled", status: StatusCancelled, stage: StageCancelled, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadyForFinalAssembly(tt.status, tt.stage); got != tt.expected {
				t.Errorf("ReadyForFinalAssembly(%q, %q) = %v, want %v", tt.status, tt.stage, got, tt.expected)
			}
		})
	}
}

func TestStageTerminal(t *testing.T) {
	if !StageCancelled.Terminal() {
		t.Error("cancelled stage should be terminal")
	}
	for _, s := range Stages() {
		if s.Terminal() {
			t.Errorf("pipeline stage %q should not be terminal", s)
		}
	}
}
