package dispatch

import "fmt"

// FallbackGeneralMessage is the fixed reply when neither the classifier nor
// the FAQ resolver can make sense of a message.
const FallbackGeneralMessage = `❌ I can only help you manage mail groups. Please indicate a valid action or type **"Menu"** to see the available options`

// WelcomeMenu is the static help text shown when the bot is added to a space
// or when the user asks for the menu.
func WelcomeMenu(supportEmail string) string {
	return fmt.Sprintf(`👋 Hello! I am **Bot G-Admin**, your Google Workspace IT Agent.

My mission is to execute administrative tasks for **Mail Groups** quickly and easily directly from this chat with limited functions.

### ⚙️ Quick Management Commands

| Action | Description | Quick Example |
| :--- | :--- | :--- |
| **Añadir (Add)** | Adds users to a group. | `+"`/añadir user@ to group.test@`"+` |
| **Eliminar (Remove)** | Removes users from a group. | `+"`/eliminar user@ from group.test@`"+` |
| **Manager** | Converts a Member to a Manager. | `+"`make user@ manager of group@`"+` |
| **Miembros (Members)** | Shows who belongs to the group. | `+"`/miembros support@`"+` |
| **Abandonar (Leave)** | Removes yourself from a group. | `+"`/abandonar office.city@`"+` |
| **Misgrupos (MyGroups)** | Shows which groups you belong to. | `+"`/misgrupos`"+` |
| **Solicitar Manager (Request Manager)** | Requests management permissions for a group. | `+"`/solicitar manager de group.test@`"+` |

> 💡 **Tip:** You can use usernames (e.g., "First Last") or partial emails (e.g., "support@") without the full domain.

---

For any questions or inquiries, contact %s`, supportEmail)
}
