// Package theme holds the palette and widget styles of the recorder window.
package theme

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Palette.
const (
	ColorBg        = "#f7f9fb"
	ColorSurface   = "#ffffff"
	ColorBorder    = "#d0d7de"
	ColorPrimary   = "#2563eb"
	ColorDanger    = "#dc2626"
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
)

// Style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleStatusLabel   = "status.TLabel"
	StyleMutedLabel    = "muted.TLabel"
)

// StatusFont is the font of the status line.
var StatusFont = []any{"helvetica", 14, "bold"}

// InitStyles activates the base theme and configures the semantic styles.
func InitStyles() {
	_ = ActivateTheme("azure light")
	App.Configure(Background(ColorBg))

	StyleConfigure(StylePrimaryButton,
		Background(ColorPrimary),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleDangerButton,
		Background(ColorDanger),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleStatusLabel,
		Background(ColorSurface),
		Padding("6p 4p"),
	)
	StyleConfigure(StyleMutedLabel,
		Foreground(ColorTextMuted),
		Padding("2p 1p"),
	)
}
