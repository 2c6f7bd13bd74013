package domain

// SessionState is the reconstruction progress of one build session.
type SessionState string

const (
	SessionInitialized        SessionState = "initialized"         // Settings synthesized
	SessionProjectsCreated    SessionState = "projects_created"    // Descriptor tree populated
	SessionProjectsRegistered SessionState = "projects_registered" // Mutable models materialized
	SessionWorkScheduled      SessionState = "work_scheduled"      // Task graph populated (terminal)
)

// sessionTransitions defines the allowed session transitions.
// Flow: initialized → projects_created → projects_registered → work_scheduled
// Registering straight from initialized yields a root-only tree.
var sessionTransitions = map[SessionState][]SessionState{
	SessionInitialized:        {SessionProjectsCreated, SessionProjectsRegistered},
	SessionProjectsCreated:    {SessionProjectsCreated, SessionProjectsRegistered},
	SessionProjectsRegistered: {SessionWorkScheduled},
	SessionWorkScheduled:      {},
}

// CanTransitionTo returns true if the session can move to target.
func (s SessionState) CanTransitionTo(target SessionState) bool {
	for _, t := range sessionTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true for the final session state.
func (s SessionState) IsTerminal() bool {
	return s == SessionWorkScheduled
}

// BuildStage is the lifecycle stage of a build tracked by its controller.
type BuildStage string

const (
	StageCreated    BuildStage = "created"
	StageConfigured BuildStage = "configured"
	StageScheduled  BuildStage = "scheduled"
	StageFinished   BuildStage = "finished"
)

var stageTransitions = map[BuildStage][]BuildStage{
	StageCreated:    {StageConfigured, StageFinished},
	StageConfigured: {StageScheduled, StageFinished},
	StageScheduled:  {StageFinished},
	StageFinished:   {},
}

// CanTransitionTo returns true if the stage can move to target.
func (s BuildStage) CanTransitionTo(target BuildStage) bool {
	for _, t := range stageTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}
