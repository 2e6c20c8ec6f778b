package domain

import "context"

// TransferEngine receives control commands for downloads it owns.
// Commands are fire-and-forget: the effect shows up later as a status event.
type TransferEngine interface {
	PauseDownload(ctx context.Context, url string) error
	ContinueDownload(ctx context.Context, url string) error
}

// FileLocator reveals a downloaded file in the host's file manager
type FileLocator interface {
	OpenFileFolder(ctx context.Context, path string) error
}

// ArtifactRefresher asks the host to rescan its available artifacts
type ArtifactRefresher interface {
	Refresh(ctx context.Context, sources []ArtifactSource) error
}

// ArtifactSource is an entry of the host's known artifact source list
type ArtifactSource struct {
	Name string `json:"name" mapstructure:"name"`
	URL  string `json:"url" mapstructure:"url"`
}

// Action is a user intent handled by the dispatcher
type Action string

const (
	ActionPause    Action = "pause"
	ActionContinue Action = "continue"
	ActionLocate   Action = "locate"
)

// Outcome tells the caller what the dispatcher did with a request.
// Only OutcomeDispatched means a command left the process.
type Outcome string

const (
	OutcomeDispatched      Outcome = "dispatched"
	OutcomeUnknownURL      Outcome = "unknown_url"
	OutcomeInvalidState    Outcome = "invalid_state"
	OutcomeNothingToLocate Outcome = "nothing_to_locate"
)

// CommandResult describes a dispatcher decision
type CommandResult struct {
	Action  Action  `json:"action"`
	URL     string  `json:"url,omitempty"`
	Path    string  `json:"path,omitempty"`
	Outcome Outcome `json:"outcome"`
}

// Dispatched reports whether a command was sent
func (r CommandResult) Dispatched() bool {
	return r.Outcome == OutcomeDispatched
}
