package docs

import (
	"fmt"
	"strings"
)

// Changelog holds release notes for all versions.
type Changelog struct {
	// Releases lists all releases, newest first.
	Releases []Release
}

// Release documents a single version release.
type Release struct {
	// Version is the semver version string.
	Version string

	// Date is the release date in YYYY-MM-DD format.
	Date string

	// Added lists new features.
	Added []string

	// Changed lists modifications to existing features.
	Changed []string

	// Fixed lists bug fixes.
	Fixed []string

	// Removed lists removed features.
	Removed []string
}

// ChangelogMarkdown renders the release notes.
func ChangelogMarkdown() string {
	return dcRenderChangelogMarkdown(dcGenerateChangelog())
}

// dcGenerateChangelog builds the release notes from embedded knowledge.
func dcGenerateChangelog() *Changelog {
	return &Changelog{
		Releases: []Release{
			{
				Version: "0.2.0",
				Date:    "2026-10-12",
				Added: []string{
					"Histogram, contour and image chart types",
					"Brush to zoom with click to reset on continuous axes",
					"Line hover guide with per-series markers",
					"YAML chart descriptions and the `chartkit` command",
					"User color schemes loaded from `$XDG_CONFIG_HOME/chartkit/schemes`",
					"Configuration reference generated from the defaults",
				},
				Changed: []string{
					"Histogram bins follow the x domain's nice tick steps",
					"Legends collapse overflowing categories into a \"+N more\" row",
					"Primitive ids are unique per process instead of per chart",
				},
				Fixed: []string{
					"Resizing by less than half a pixel no longer redraws",
					"A panicking chart template tears the chart down instead of leaving it half drawn",
					"Zooming on a categorical axis is refused with a warning",
				},
			},
			{
				Version: "0.1.0",
				Date:    "2026-08-03",
				Added: []string{
					"Chart lifecycle with measure, configure and draw passes",
					"Linear, log, band and time scales with domain inference",
					"Scatter, bar, line and matrix chart types",
					"Axes with math-mode labels, legends and tooltips",
					"Layered TOML and YAML configuration with per-chart presets",
					"SVG output",
				},
			},
		},
	}
}

// dcRenderChangelogMarkdown renders a Changelog in Keep a Changelog format.
func dcRenderChangelogMarkdown(cl *Changelog) string {
	var b strings.Builder

	b.WriteString("# Changelog\n\n")
	b.WriteString("All notable changes to chartkit are documented in this file.\n\n")
	b.WriteString("The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.1.0/),\n")
	b.WriteString("and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html).\n\n")

	for _, r := range cl.Releases {
		b.WriteString(fmt.Sprintf("## [%s] - %s\n\n", r.Version, r.Date))

		if len(r.Added) > 0 {
			b.WriteString("### Added\n\n")
			for _, item := range r.Added {
				b.WriteString(fmt.Sprintf("- %s\n", item))
			}
			b.WriteString("\n")
		}

		if len(r.Changed) > 0 {
			b.WriteString("### Changed\n\n")
			for _, item := range r.Changed {
				b.WriteString(fmt.Sprintf("- %s\n", item))
			}
			b.WriteString("\n")
		}

		if len(r.Fixed) > 0 {
			b.WriteString("### Fixed\n\n")
			for _, item := range r.Fixed {
				b.WriteString(fmt.Sprintf("- %s\n", item))
			}
			b.WriteString("\n")
		}

		if len(r.Removed) > 0 {
			b.WriteString("### Removed\n\n")
			for _, item := range r.Removed {
				b.WriteString(fmt.Sprintf("- %s\n", item))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
