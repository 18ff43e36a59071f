package utils

import (
	"regexp"

	"gadminbot/models"
)

// flexibleEmailRegex matches email-like tokens with or without a complete
// domain, so "user@" and "user@example.com" both count.
var flexibleEmailRegex = regexp.MustCompile(`[\w._%+-]+@(?:[\w.-]+\.[a-zA-Z]{2,})?`)

// appCommandOperations maps the chat platform's app command IDs onto
// operations. The table is fixed by the app manifest.
var appCommandOperations = map[string]models.Operation{
	"1": models.OperationAdd,
	"2": models.OperationRemove,
	"3": models.OperationListMembers,
	"4": models.OperationLeave,
	"5": models.OperationListMyGroups,
	"6": models.OperationRequestManager,
}

// slashCommandOperations maps registered slash command names (without the
// leading slash) onto operations.
var slashCommandOperations = map[string]models.Operation{
	"añadir":                 models.OperationAdd,
	"eliminar":               models.OperationRemove,
	"miembros":               models.OperationListMembers,
	"abandonar":              models.OperationLeave,
	"misgrupos":              models.OperationListMyGroups,
	"solicitar_manager":      models.OperationRequestManager,
	"cambiar_rol_manager":    models.OperationChangeRoleManager,
	"ver_todos_los_miembros": models.OperationListAllMembers,
}

// OperationForAppCommand resolves an app command ID to an operation.
func OperationForAppCommand(commandID string) (models.Operation, bool) {
	op, ok := appCommandOperations[commandID]
	return op, ok
}

// OperationForSlashCommand resolves a slash command name to an operation.
func OperationForSlashCommand(name string) (models.Operation, bool) {
	op, ok := slashCommandOperations[name]
	return op, ok
}

// ExtractEmailTokens returns the email-like tokens of the text in order of
// appearance.
func ExtractEmailTokens(text string) []string {
	return flexibleEmailRegex.FindAllString(text, -1)
}

// SplitTargets assigns the extracted tokens to users and group according to
// the operation's arity: operations taking a target list treat the last token
// as the group and everything before it as users; single-target operations
// take the first token as the group.
func SplitTargets(op models.Operation, tokens []string) (users []string, group string) {
	if len(tokens) == 0 {
		return nil, ""
	}
	if op.TakesTargetList() {
		return tokens[:len(tokens)-1], tokens[len(tokens)-1]
	}
	return nil, tokens[0]
}

// ParseCommandIntent builds an operation intent from a recognized command and
// its argument text. This path is fully deterministic - no network calls.
func ParseCommandIntent(op models.Operation, argumentText string) *models.OperationIntent {
	users, group := SplitTargets(op, ExtractEmailTokens(argumentText))
	return &models.OperationIntent{Operation: op, RawUsers: users, RawGroup: group}
}
