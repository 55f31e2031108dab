package pipeline

// Stage ids of the deck generation graph.
const (
	StageSearchResources         = "searchResources"
	StageGenerateThemeStyle      = "generateThemeStyle"
	StageGenerateColorScheme     = "generateColorScheme"
	StageGenerateContentOutline  = "generateContentOutline"
	StageDesignSlideLayouts      = "designSlideLayouts"
	StageGenerateDetailedContent = "generateDetailedContent"
	StageAssemblePptData         = "assemblePptData"
)

// ProgressMilestones maps stage ids to percentage milestones. It is a
// contract constant shared between the orchestrator side and the stream
// consumer: percentages are strictly increasing in declared pipeline
// order, which keeps the consumer's progress bar monotone. The
// orchestrator itself never reports percentages, only stage identity.
var ProgressMilestones = map[string]int{
	StageSearchResources:         15,
	StageGenerateThemeStyle:      25,
	StageGenerateColorScheme:     40,
	StageGenerateContentOutline:  55,
	StageDesignSlideLayouts:      70,
	StageGenerateDetailedContent: 85,
	StageAssemblePptData:         95,
}

// ProgressComplete is the percentage reported on the terminal complete
// event.
const ProgressComplete = 100

// MilestoneFor returns the progress milestone for a stage id. Unknown
// stages report 0 so they never move a progress bar.
func MilestoneFor(stageID string) int {
	return ProgressMilestones[stageID]
}
