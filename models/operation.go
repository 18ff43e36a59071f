package models

// Operation is the bot's internal operation vocabulary. The intent classifier
// canonicalizes the external label vocabulary into these values.
type Operation string

const (
	OperationAdd               Operation = "ADD"
	OperationRemove            Operation = "REMOVE"
	OperationListMembers       Operation = "LIST_MEMBERS"
	OperationLeave             Operation = "LEAVE"
	OperationListMyGroups      Operation = "LIST_MY_GROUPS"
	OperationRequestManager    Operation = "REQUEST_MANAGER"
	OperationChangeRoleManager Operation = "CHANGE_ROLE_MANAGER"
	OperationListAllMembers    Operation = "LIST_ALL_MEMBERS"
	OperationFaqQuery          Operation = "FAQ_QUERY"
	OperationHelpMenu          Operation = "HELP_MENU"
	OperationNone              Operation = "NONE"
)

// TakesTargetList reports whether the operation takes a list of user targets
// in addition to a group. For these, the last email token in a command is the
// group and everything before it is a user.
func (o Operation) TakesTargetList() bool {
	switch o {
	case OperationAdd, OperationRemove, OperationChangeRoleManager:
		return true
	}
	return false
}

// OperationIntent is the normalized result of command parsing or intent
// classification. It is never mutated after construction; identifier
// resolution produces new values downstream.
type OperationIntent struct {
	Operation Operation
	RawUsers  []string
	RawGroup  string
	// ReplyText carries a user-facing apology when classification itself
	// failed. It is empty for successfully classified intents.
	ReplyText string
}
