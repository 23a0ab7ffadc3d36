package i18n

// berneseGermanMessages contains all Bernese Swiss German (Bärndütsch) translations
var berneseGermanMessages = map[string]string{
	// Error messages
	"error.generic": "Öppis isch schief gloffe. Probier's haut nomau, bitte.",

	// Bot commands
	"bot.help": "Die Befäu chasch bruuche:\n" +
		"/help - zeigt dä Text\n" +
		"/id - zeigt d ID vo däm Chat u Thread\n" +
		"/spotifylogin - bi Spotify amäude (nume im Abstimmigs-Chat)",
	"bot.usage":     "Schick mer e Spotify-URL.",
	"bot.id_chat":   "Dä Chat het d ID %d",
	"bot.id_thread": "Dä Chat het d ID %d, Thread %d",

	// Spotify login dialogue
	"login.prompt": "Spotify-Amäudig\nMach die URL im Browser uf u erloub dr Spotify-Zuegriff: %s\n" +
		"När füeg d witergleitete URL da i u schick se ab.",
	"login.error":   "Spotify-Link-Fähler: %s",
	"login.saved":   "Token gspicheret",
	"login.invalid": "Ungüutige Code oder ungüutigi URL",
	"login.failed":  "Spotify-Amäudig het nid funktioniert: %s",

	// Track requests
	"request.confirm":     "Track isch agfragt: %s",
	"request.failed":      "Ha dr Track nid chönne afrage",
	"request.flood":       "Gmüetlech! Du chasch höchstens %d Tracks pro Minute afrage.",
	"request.unsupported": "Es gö nume Spotify-Links. Schick mer e Spotify-URL.",

	// Voting
	"vote.card_header":     "Afrag vo %s:",
	"vote.accepted":        "✅ %s het akzeptiert: %s",
	"vote.declined":        "❌ %s het abglehnt: %s",
	"vote.declined_bare":   "❌ %s het abglehnt.",
	"vote.queue_failed":    "Ha dr Track nid chönne i d Queue tue: %s",
	"vote.invalid_track":   "Ungüutigi Track-ID",
	"vote.already_handled": "Die Afrag isch scho erledigt.",

	// Buttons
	"button.accept":  "✅ I d Queue",
	"button.decline": "❌ Lösche",

	// Track card
	"track.listen": "Lose",
	"track.cover":  "Cover",
}
