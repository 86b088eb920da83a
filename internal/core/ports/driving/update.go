package driving

import (
	"context"

	"github.com/custodia-labs/bootman/internal/core/domain"
)

// UpdateObserver receives a snapshot of the update session on every change.
// It is called from the goroutine driving the update.
type UpdateObserver func(domain.UpdateSession)

// UpdateService drives the self-update state machine.
type UpdateService interface {
	// CurrentVersion returns the running helper's version tag.
	CurrentVersion() string

	// Check discovers the latest release. A failed check ends in the
	// NoUpdate state with the error recorded on the session.
	Check(ctx context.Context) (domain.UpdateSession, error)

	// Offer records that the update prompt is being shown.
	Offer() (domain.UpdateSession, error)

	// Decline drops an offered update.
	Decline() error

	// Install downloads the offered release and hands over to it.
	// On success the current process exits and Install does not return.
	Install(ctx context.Context) (domain.UpdateSession, error)

	// Session returns the active session, if any.
	Session() (domain.UpdateSession, bool)

	// Subscribe registers an observer and returns a function removing it.
	Subscribe(observer UpdateObserver) func()
}
