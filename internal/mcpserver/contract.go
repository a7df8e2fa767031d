package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/lumina/internal/ai"
)

// ActionsURI names the resource listing transform actions.
const ActionsURI = "lumina://transform-actions"

// ActionsDocument renders the transform actions and the instruction each
// one sends, as Markdown.
func ActionsDocument() string {
	var b strings.Builder
	b.WriteString("# Lumina transform actions\n\n")
	b.WriteString("Pass one of these names as `action` to the `transform_note` tool. ")
	b.WriteString("The note body is appended to the instruction after a blank line and `Content:`.\n\n")
	for _, a := range ai.Actions() {
		fmt.Fprintf(&b, "## %s (`%s`)\n\n%s\n\n", a.Label(), a, a.Template())
	}
	b.WriteString("Accepted results are appended to the note after a `---` separator.\n")
	return b.String()
}
