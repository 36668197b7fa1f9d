package domain

import "fmt"

// RegistrationAction is an admin decision on a pending registration.
type RegistrationAction string

const (
	ActionApprove RegistrationAction = "approve"
	ActionReject  RegistrationAction = "reject"
)

// Effect is a side effect that accompanies a registration transition.
type Effect uint8

const (
	EffectIssueTokens Effect = 1 << iota
	EffectStampApproval
	EffectSendInvitation
)

// Has reports whether f is part of e.
func (e Effect) Has(f Effect) bool { return e&f == f }

// Transition is the outcome of applying an action to a registration.
type Transition struct {
	From    RegistrationStatus
	To      RegistrationStatus
	Effects Effect
}

var registrationTransitions = map[RegistrationStatus]map[RegistrationAction]Transition{
	RegistrationPending: {
		ActionApprove: {
			From:    RegistrationPending,
			To:      RegistrationApproved,
			Effects: EffectIssueTokens | EffectStampApproval | EffectSendInvitation,
		},
		ActionReject: {
			From: RegistrationPending,
			To:   RegistrationRejected,
		},
	},
}

// NextRegistration looks up action in the registration transition table.
// Approved and rejected are terminal; any missing entry is ErrConflict.
func NextRegistration(from RegistrationStatus, action RegistrationAction) (Transition, error) {
	t, ok := registrationTransitions[from][action]
	if !ok {
		return Transition{}, fmt.Errorf("%w: cannot %s a guest whose registration is %s", ErrConflict, action, from)
	}
	return t, nil
}

// ModerationAction is an admin decision on a pending photo.
type ModerationAction string

const (
	ModerationApprove ModerationAction = "approve"
	ModerationReject  ModerationAction = "reject"
)

var photoTransitions = map[PhotoStatus]map[ModerationAction]PhotoStatus{
	PhotoPending: {
		ModerationApprove: PhotoApproved,
		ModerationReject:  PhotoRejected,
	},
}

// NextPhotoStatus looks up action in the moderation transition table.
func NextPhotoStatus(from PhotoStatus, action ModerationAction) (PhotoStatus, error) {
	to, ok := photoTransitions[from][action]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s a photo that is %s", ErrConflict, action, from)
	}
	return to, nil
}

// InitialPhotoStatus is the status of a freshly uploaded photo.
func InitialPhotoStatus(autoApprove bool) PhotoStatus {
	if autoApprove {
		return PhotoApproved
	}
	return PhotoPending
}
