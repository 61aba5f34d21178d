package formatting

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"soundboard-bot/internal/core/domain"
)

// MaxMessageLength keeps replies under the platform's 2000 character limit.
const MaxMessageLength = 1999

const (
	MsgNoSounds         = "There are no sounds!"
	MsgDuplicateSound   = "a sound with this filename already exists"
	MsgNothingPlaying   = "no sound is being played right now."
	MsgReloaded         = "reloaded sounds."
	MsgReloadError      = "Failed to reload sounds."
	MsgUploadError      = "Failed to save the uploaded sound."
	MsgPlayError        = "Failed to play the sound."
	MsgHistoryDisabled  = "Play history is not enabled."
	MsgHistoryError     = "Failed to load play history."
	MsgNoHistory        = "No sounds have been played in this server yet."
	MsgThemeUnavailable = "Theme sounds are not available yet."

	MsgGuildOnly          = "This command can only be used in a server."
	MsgSoundRequired      = "Please provide a sound name."
	MsgAttachmentRequired = "Please attach a sound file."
)

func MsgInvalidFormat(extension string) string {
	kind := strings.TrimPrefix(extension, ".")
	return fmt.Sprintf("the uploaded file must be a %s-file and its name must end with %q", kind, extension)
}

func MsgUploaded(filename string) string {
	return fmt.Sprintf("added %q to the sound database.", filename)
}

func MsgPlaying(sound, channelID string) string {
	return fmt.Sprintf("playing %q in <#%s>.", sound, channelID)
}

func MsgNotInVoice(userID string) string {
	return fmt.Sprintf("<@%s> is not in a voice channel!", userID)
}

func MsgSoundNotFound(sound string) string {
	return fmt.Sprintf("%q does not exist.", sound)
}

func MsgSoundNotFoundSuggest(sound, suggestion string) string {
	return fmt.Sprintf("%q does not exist. Did you mean %q?", sound, suggestion)
}

func MsgUnplayable(sound string) string {
	return fmt.Sprintf("%q could not be played.", sound)
}

func MsgUploadTooLarge(maxBytes int64) string {
	return fmt.Sprintf("the uploaded file is too large (limit is %d KiB).", maxBytes/1024)
}

func MsgStopped(sound string) string {
	return fmt.Sprintf("stopped playback of %q.", sound)
}

func MsgInviteURL(appID string) string {
	return fmt.Sprintf("https://discordapp.com/oauth2/authorize?client_id=%s&scope=bot", appID)
}

// MsgSoundList joins names one per line, truncated to MaxMessageLength.
func MsgSoundList(names []string) string {
	list := strings.Join(names, "\n")
	if len(list) <= MaxMessageLength {
		return list
	}
	cut := MaxMessageLength
	for cut > 0 && !utf8.RuneStart(list[cut]) {
		cut--
	}
	return list[:cut]
}

func MsgTopSounds(counts []domain.SoundCount) string {
	var b strings.Builder
	b.WriteString("Most played sounds:\n")
	for i, c := range counts {
		fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, c.SoundName, c.Plays)
	}
	return b.String()
}
