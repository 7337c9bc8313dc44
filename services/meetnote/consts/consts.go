package consts

const (
	// Audio formats accepted for upload
	FormatWebM = "webm"
	FormatWAV  = "wav"
	FormatMP3  = "mp3"
	FormatFLAC = "flac"

	// MaxAudioSize caps upload bodies when MAX_AUDIO_SIZE is not configured.
	MaxAudioSize = 25 * 1024 * 1024 // 25MB

	TokenType = "bearer"

	Version = "2.0.0"
)

// SupportedAudioFormat reports whether a file extension (without the dot)
// names an accepted recording format.
func SupportedAudioFormat(ext string) bool {
	switch ext {
	case FormatWebM, FormatWAV, FormatMP3, FormatFLAC:
		return true
	}
	return false
}
