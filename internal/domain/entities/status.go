package entities

// InviteStatus is the lifecycle state of an invite.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "Pending"
	InviteStatusAccepted InviteStatus = "Accepted"
	InviteStatusDeclined InviteStatus = "Declined"
	InviteStatusExpired  InviteStatus = "Expired"
)

// JoinRequestStatus is the lifecycle state of a join request.
type JoinRequestStatus string

const (
	JoinRequestStatusPending  JoinRequestStatus = "Pending"
	JoinRequestStatusApproved JoinRequestStatus = "Approved"
	JoinRequestStatusRejected JoinRequestStatus = "Rejected"
)

var inviteTransitions = map[InviteStatus][]InviteStatus{
	InviteStatusPending: {InviteStatusAccepted, InviteStatusDeclined, InviteStatusExpired},
}

var joinRequestTransitions = map[JoinRequestStatus][]JoinRequestStatus{
	JoinRequestStatusPending: {JoinRequestStatusApproved, JoinRequestStatusRejected},
}

// CanTransitionTo reports whether an invite may move from s to next.
func (s InviteStatus) CanTransitionTo(next InviteStatus) bool {
	for _, allowed := range inviteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s InviteStatus) IsTerminal() bool {
	return len(inviteTransitions[s]) == 0
}

// CanTransitionTo reports whether a join request may move from s to next.
func (s JoinRequestStatus) CanTransitionTo(next JoinRequestStatus) bool {
	for _, allowed := range joinRequestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s JoinRequestStatus) IsTerminal() bool {
	return len(joinRequestTransitions[s]) == 0
}
