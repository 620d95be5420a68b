package internal

import "github.com/villemin/feuille/internal/extract"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	analyzer extract.Analyzer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithAnalyzer overrides the image analyzer, mainly for tests.
func WithAnalyzer(an extract.Analyzer) Option {
	return func(a *application) {
		a.analyzer = an
	}
}
