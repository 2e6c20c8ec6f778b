package domain

// ChangeKind identifies what happened to the registry
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeUpdated  ChangeKind = "updated"
	ChangeRemoved  ChangeKind = "removed"
	ChangeRestored ChangeKind = "restored"
)

// RegistryChange is published to observers after every successful registry mutation
type RegistryChange struct {
	Kind          ChangeKind     `json:"kind"`
	Record        DownloadRecord `json:"record"`
	PreviousState DownloadState  `json:"previous_state,omitempty"`
	State         DownloadState  `json:"state,omitempty"`
	Count         int            `json:"count"`
}

// Finished reports whether this change moved a download into Done
func (c RegistryChange) Finished() bool {
	return c.State == StateDone && c.PreviousState != StateDone &&
		(c.Kind == ChangeCreated || c.Kind == ChangeUpdated)
}
