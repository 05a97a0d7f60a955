package notifier

// Discord formatting constants
const (
	DiscordUsername   = "Alist File Monitor"
	DefaultEmbedColor = 0x2B2D31 // Discord dark theme color
	SuccessEmbedColor = 0x5CB85C // Bootstrap success green
	ErrorEmbedColor   = 0xD9534F // Bootstrap danger red
	WarningEmbedColor = 0xF0AD4E // Bootstrap warning orange
	InfoEmbedColor    = 0x5BC0DE // Bootstrap info blue
	MonitorEmbedColor = 0x6F42C1 // Purple for monitoring
	StoppedEmbedColor = 0xFD7E14 // Orange for shutdown
)

const (
	// MaxDetailLength bounds the detail text placed into an embed field.
	MaxDetailLength = 800

	footerText = "alistmover"
)
