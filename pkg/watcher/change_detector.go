package watcher

import "path/filepath"

// ChangeAnalysis describes what a change means for the loaded document.
type ChangeAnalysis struct {
	NeedReload bool
	Reason     string
}

// AnalyzeChanges decides whether a change warrants reloading. A removed document is
// kept on screen until it reappears.
func AnalyzeChanges(event ChangeEvent) *ChangeAnalysis {
	name := filepath.Base(event.Path)
	switch event.Type {
	case ChangeRemoved:
		return &ChangeAnalysis{Reason: name + " removed"}
	default:
		return &ChangeAnalysis{NeedReload: true, Reason: name + " changed"}
	}
}
