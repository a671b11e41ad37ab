package textlayer

import "github.com/sirupsen/logrus"

// Config holds user options for applying a text layer to a PDF
type Config struct {
	Debug     bool               // Draw the layer in red with word boxes
	Force     bool               // Apply even if a text layer already exists
	LayerName string             // Base name of the layer (page number will be appended)
	StartPage int                // PDF page number that page index 0 maps to
	Font      FontConfig         // Font used to size and place words
	Logger    logrus.FieldLogger // nil means the logrus standard logger
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		LayerName: "Extracted Text", // Will be formatted as "Extracted Text (Page X)" in the final PDF
		StartPage: 1,
		Font:      DefaultFont,
	}
}

func (c Config) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}

// FontConfig contains font settings for text rendering
type FontConfig struct {
	Name        string  // Font name (e.g., "Helvetica")
	Style       string  // Font style ("", "B", "I", "BI")
	Size        float64 // Default font size
	AscentRatio float64 // Vertical positioning ratio
}

// DefaultFont is Helvetica, a core font every reader ships
var DefaultFont = FontConfig{
	Name:        "Helvetica",
	Style:       "",
	Size:        10,
	AscentRatio: 0.718,
}
