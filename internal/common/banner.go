package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner to stderr.
func PrintBanner(config *Config, logger *Logger) {
	serviceURL := fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)

	lineColor := banner.ColorGreen
	textColor := banner.ColorBold + banner.ColorWhite
	width := 70
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	art := []string{
		` 888b     d888                   888          888888b.                    888`,
		` 8888b   d8888                   888          888  "88b                   888`,
		` 88888b.d88888                   888          888  .88P                   888`,
		` 888Y88888P888  8888b.  88888b.  888  .d88b.  8888888K.   .d88b.   .d88b.  888  888`,
		` 888 Y888P 888     "88b 888 "88b 888 d8P  Y8b 888  "Y88b d88""88b d88""88b 888 .88P`,
		` 888  Y8P  888 .d888888 888  888 888 88888888 888    888 888  888 888  888 888888K`,
		` 888   "   888 888  888 888 d88P 888 Y8b.     888   d88P Y88..88P Y88..88P 888 "88b`,
		` 888       888 "Y888888 88888P"  888  "Y8888  8888888P"   "Y88P"   "Y88P"  888  888`,
		`                        888`,
		`                        888`,
	}

	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "\n%s  Canadian Portfolio Tax Engine%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)

	kvPad := 16
	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Build", GetBuild()},
		{"Environment", config.Environment},
		{"Province", config.Tax.Province},
		{"Service", serviceURL},
		{"Storage", config.Storage.Path},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(os.Stderr, "  %s%-*s%s%s\n", lineColor, kvPad, kv[0], banner.ColorReset, kv[1])
	}
	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)

	logger.Info().
		Str("version", GetVersion()).
		Str("environment", config.Environment).
		Msg("MapleBook starting")
}
