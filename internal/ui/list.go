package ui

import (
	"github.com/charmbracelet/bubbles/list"

	"github.com/AliEhsanian/ytgrab/internal/models"
)

var (
	_ list.Item = qualityItem{}
	_ list.Item = formatItem{}
)

// qualityItem wraps [models.QualityTier] to implement [list.Item].
type qualityItem struct {
	tier models.QualityTier
}

func (i qualityItem) FilterValue() string { return i.tier.String() }
func (i qualityItem) Title() string       { return i.tier.String() }
func (i qualityItem) Description() string {
	switch i.tier {
	case models.QualityBest:
		return "Highest available resolution"
	case models.Quality4K:
		return "Up to 2160p"
	case models.Quality1080p:
		return "Up to 1080p"
	case models.Quality720p:
		return "Up to 720p"
	case models.QualityAudio:
		return "Audio only, extracted to mp3"
	default:
		return ""
	}
}

// formatItem wraps [models.OutputFormat] to implement [list.Item].
type formatItem struct {
	format models.OutputFormat
}

func (i formatItem) FilterValue() string { return i.format.Ext() }
func (i formatItem) Title() string       { return i.format.Ext() }
func (i formatItem) Description() string {
	switch i.format {
	case models.FormatMP4:
		return "Widely compatible, recommended"
	case models.FormatWebM:
		return "Open container, VP9/Opus"
	case models.FormatMKV:
		return "Flexible container, any codec"
	case models.FormatAVI:
		return "Legacy container"
	default:
		return ""
	}
}

func qualityItems() []list.Item {
	tiers := []models.QualityTier{
		models.QualityBest,
		models.Quality4K,
		models.Quality1080p,
		models.Quality720p,
		models.QualityAudio,
	}
	items := make([]list.Item, len(tiers))
	for i, tier := range tiers {
		items[i] = qualityItem{tier: tier}
	}
	return items
}

func formatItems() []list.Item {
	formats := []models.OutputFormat{
		models.FormatMP4,
		models.FormatWebM,
		models.FormatMKV,
		models.FormatAVI,
	}
	items := make([]list.Item, len(formats))
	for i, format := range formats {
		items[i] = formatItem{format: format}
	}
	return items
}
