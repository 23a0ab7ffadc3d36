package i18n

// germanMessages contains all German translations.
var germanMessages = map[string]string{
	// Error messages
	"error.generic": "Etwas ist schiefgelaufen. Bitte versuche es nochmal.",

	// Bot commands
	"bot.help": "Diese Befehle werden unterstützt:\n" +
		"/help - zeigt diesen Text\n" +
		"/id - zeigt die ID dieses Chats und Threads\n" +
		"/spotifylogin - bei Spotify anmelden (nur im Abstimmungs-Chat)",
	"bot.usage":     "Schick mir eine Spotify-URL.",
	"bot.id_chat":   "Dieser Chat hat die ID %d",
	"bot.id_thread": "Dieser Chat hat die ID %d, Thread %d",

	// Spotify login dialogue
	"login.prompt": "Spotify-Anmeldung\nÖffne diese URL im Browser und erlaube den Spotify-Zugriff: %s\n" +
		"Füge danach die weitergeleitete URL hier ein und schicke sie ab.",
	"login.error":   "Spotify-Link-Fehler: %s",
	"login.saved":   "Token gespeichert",
	"login.invalid": "Ungültiger Code bzw. ungültige URL",
	"login.failed":  "Spotify-Anmeldung fehlgeschlagen: %s",

	// Track requests
	"request.confirm":     "Track wurde angefragt: %s",
	"request.failed":      "Track konnte nicht angefragt werden",
	"request.flood":       "Langsam! Du kannst höchstens %d Tracks pro Minute anfragen.",
	"request.unsupported": "Es werden nur Spotify-Links unterstützt. Schick mir eine Spotify-URL.",

	// Voting
	"vote.card_header":     "Anfrage von %s:",
	"vote.accepted":        "✅ %s hat akzeptiert: %s",
	"vote.declined":        "❌ %s hat abgelehnt: %s",
	"vote.declined_bare":   "❌ %s hat abgelehnt.",
	"vote.queue_failed":    "Track konnte nicht eingereiht werden: %s",
	"vote.invalid_track":   "Ungültige Track-ID",
	"vote.already_handled": "Diese Anfrage wurde bereits bearbeitet.",

	// Buttons
	"button.accept":  "✅ In Queue",
	"button.decline": "❌ Löschen",

	// Track card
	"track.listen": "Anhören",
	"track.cover":  "Cover",
}
