package notes

// Seed note written when storage holds nothing yet.
const (
	WelcomeID    = "1"
	WelcomeTitle = "Welcome to Lumina Notes ✨"
	WelcomeBody  = "Welcome to your new AI-enhanced writing space.\n\n" +
		"Here you can:\n" +
		"- Write freely in this clean workspace\n" +
		"- Use the sidebar to search and switch notes\n" +
		"- Click the \"AI Tools\" button at the top right to enhance your writing\n\n" +
		"Lumina uses Gemini Flash to help you summarize, brainstorm, and simplify your thoughts. Try it out now!"
	WelcomeTag = "welcome"
)
