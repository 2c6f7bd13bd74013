package domain

import "errors"

// Structural-contract violations. Any of these aborts the rehydration of
// the current build; the cache entry must be discarded.
var (
	ErrInvalidPath         = errors.New("invalid path")
	ErrParentNotFound      = errors.New("parent project descriptor not found")
	ErrDuplicateProject    = errors.New("project already created")
	ErrInvalidTransition   = errors.New("invalid session state transition")
	ErrAlreadyScheduled    = errors.New("work already scheduled for this build")
	ErrSessionDiscarded    = errors.New("build session discarded after failure")
	ErrAlreadyRegistered   = errors.New("projects already registered for build")
	ErrDuplicateBuild      = errors.New("build already registered")
	ErrModelAlreadyCreated = errors.New("mutable project model already created")
	ErrSettingsAlreadySet  = errors.New("settings already created for build")
	ErrGraphPopulated      = errors.New("task graph already populated")
	ErrDuplicateNode       = errors.New("duplicate work node")
	ErrCycleDetected       = errors.New("cycle detected in work graph")
	ErrInvalidStage        = errors.New("invalid build lifecycle stage transition")
)

// Lookup failures. Treated as cache corruption.
var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrModelNotCreated   = errors.New("mutable project model not created")
	ErrBuildNotFound     = errors.New("build not found")
	ErrUnknownDependency = errors.New("work node depends on unknown node")
	ErrCorruptEntry      = errors.New("corrupt cache entry")
)

// Infrastructure errors.
var (
	ErrEntryNotFound        = errors.New("cache entry not found")
	ErrInvalidEntryKey      = errors.New("invalid cache entry key")
	ErrNotInitialized       = errors.New("cache store not initialized (run 'confcache init' first)")
	ErrNotGitRepository     = errors.New("not a git repository (or any of the parent directories)")
	ErrLeaseReleased        = errors.New("worker lease released")
	ErrPortalOverrideHeld   = errors.New("plugin portal override already held by another build tree")
	ErrConfigExists         = errors.New("config file already exists")
	ErrEntryExists          = errors.New("cache entry already exists")
	ErrSnapshotsUnsupported = errors.New("entry store does not support snapshots")
)

var rehydrationFailures = []error{
	ErrInvalidPath,
	ErrParentNotFound,
	ErrDuplicateProject,
	ErrInvalidTransition,
	ErrAlreadyScheduled,
	ErrSessionDiscarded,
	ErrAlreadyRegistered,
	ErrDuplicateBuild,
	ErrModelAlreadyCreated,
	ErrSettingsAlreadySet,
	ErrGraphPopulated,
	ErrDuplicateNode,
	ErrCycleDetected,
	ErrInvalidStage,
	ErrProjectNotFound,
	ErrModelNotCreated,
	ErrBuildNotFound,
	ErrUnknownDependency,
	ErrCorruptEntry,
}

// IsRehydrationFailure reports whether err is a structural-contract violation
// or a lookup failure. Such errors are never shown to the user on their own:
// the caller discards the entry and runs a full configuration instead.
func IsRehydrationFailure(err error) bool {
	for _, target := range rehydrationFailures {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
