package ai

import "fmt"

const analyzePrompt = "Analyze this screenshot. Provide a suggested Title, a brief summary for Notes, and 3-5 relevant tags. " +
	"Format: Title: <title> | Tags: <tags> | Summary: <summary>"

const smartFillPrompt = `Analyze this screenshot and determine these details.%s return a valid JSON object:
{
    "title": "A short, summarized, and highly readable title (max 5-7 words)",
    "tags": "3-5 comma-separated tags",
    "summary": "A brief analysis/summary of the visual content",
    "deadline": "YYYY-MM-DD (only if clearly visible date found, else null)",
    "type": "One of: ['Nota', 'Screen', 'Minuta', 'Archivo', 'Task', 'Hito'] (Default: Screen)",
    "software": "Name of the active program if visible (e.g. VS Code, Chrome, Blender, Excel)",
    "file_path": "Full file path if visible in title bar or address bar, else null"
}`

// AnalyzePrompt builds the free-text analysis prompt. Custom instructions
// replace the default request.
func AnalyzePrompt(instructions string) string {
	if instructions == "" {
		return analyzePrompt
	}
	return fmt.Sprintf("USER INSTRUCTION: %s\n\nAnalyze the image specifically following the user's instruction above. "+
		"Provide the result in clear text.", instructions)
}

// SmartFillPrompt builds the structured auto-fill prompt. Custom
// instructions take priority over the defaults.
func SmartFillPrompt(instructions string) string {
	custom := ""
	if instructions != "" {
		custom = fmt.Sprintf("\nIMPORTANT - USER INSTRUCTIONS: %s\n(Prioritize these instructions for the analysis/filling)\n", instructions)
	}
	return fmt.Sprintf(smartFillPrompt, custom)
}
