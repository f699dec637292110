package prompt

// systemTemplate is the base system prompt. A focus suffix may follow it.
const systemTemplate = `You are a professional code review and optimization assistant. Analyze the code the user selected, decide whether its business logic is correct, and suggest improvements.

Analysis requirements:
1. Identify potential business logic errors
2. Analyze performance problems
3. Check the robustness of the code
4. Give concrete optimization suggestions
5. Consider thread safety and concurrency issues

Answer in this format:
- Problem identification
- Cause analysis
- Optimization suggestions
- Code example`

var focusSuffixes = map[Focus]string{
	FocusOptimize: "\n\nFocus on performance optimization and code quality improvements.",
	FocusBug:      "\n\nFocus on potential errors and exceptional cases.",
	FocusRefactor: "\n\nFocus on improving code structure and design patterns.",
}

// SystemPrompt returns the system prompt for a focus.
func SystemPrompt(f Focus) string {
	return systemTemplate + focusSuffixes[f]
}

const (
	userOpening = "Analyze whether the business logic of the following code is correct and suggest improvements:"
	userClosing = "Analyze the business logic problems of this code and suggest improvements."

	headingSelected = "[Selected code]"
	headingMethod   = "[Method context]"
	headingClass    = "[Class context]"
	headingFile     = "[File context]"
	headingProject  = "[Project context]"

	elisionMarker = "// ... remaining code"

	systemOpen  = "<system>"
	systemClose = "</system>"
	userOpen    = "<user>"
	userClose   = "</user>"
)
