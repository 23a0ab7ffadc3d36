package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Error messages
	"error.generic": "Something went wrong. Please try again.",

	// Bot commands
	"bot.help": "These commands are supported:\n" +
		"/help - display this text\n" +
		"/id - show the ID of this chat and thread\n" +
		"/spotifylogin - log in to Spotify (voting chat only)",
	"bot.usage":     "Send a Spotify URL.",
	"bot.id_chat":   "This chat has ID %d",
	"bot.id_thread": "This chat has ID %d, thread %d",

	// Spotify login dialogue
	"login.prompt": "Spotify Login\nOpen this URL in the browser and allow Spotify access: %s\n" +
		"Then paste and send the redirected URL here.",
	"login.error":   "Spotify link error: %s",
	"login.saved":   "Token saved",
	"login.invalid": "Invalid Code/URL",
	"login.failed":  "Spotify login failed: %s",

	// Track requests
	"request.confirm":     "Track requested: %s",
	"request.failed":      "Failed to request track",
	"request.flood":       "Slow down! You can request up to %d tracks per minute.",
	"request.unsupported": "Only Spotify links are supported. Send a Spotify URL.",

	// Voting
	"vote.card_header":     "Request from %s:",
	"vote.accepted":        "✅ %s accepted: %s",
	"vote.declined":        "❌ %s declined: %s",
	"vote.declined_bare":   "❌ %s declined.",
	"vote.queue_failed":    "Failed to queue track: %s",
	"vote.invalid_track":   "Invalid track ID",
	"vote.already_handled": "This request has already been handled.",

	// Buttons
	"button.accept":  "✅ Queue",
	"button.decline": "❌ Delete",

	// Track card
	"track.listen": "Listen",
	"track.cover":  "Cover",
}
