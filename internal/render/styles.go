package render

import "charm.land/lipgloss/v2"

// Styles contains the lipgloss styles shared by all cards.
type Styles struct {
	Card       lipgloss.Style
	ErrorCard  lipgloss.Style
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Label      lipgloss.Style
	Value      lipgloss.Style
	Dim        lipgloss.Style
	Tag        lipgloss.Style
	Bar        lipgloss.Style
	Positive   lipgloss.Style
	Negative   lipgloss.Style
	Neutral    lipgloss.Style
	Error      lipgloss.Style
	Skeleton   lipgloss.Style
	TableHead  lipgloss.Style
	TableCell  lipgloss.Style
	Importance map[string]lipgloss.Style
}

// DefaultStyles returns the default card style configuration.
func DefaultStyles() Styles {
	return Styles{
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		ErrorCard: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1),
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Subtitle:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Label:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Value:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Tag:       lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
		Bar:       lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Positive:  lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
		Negative:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Neutral:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Skeleton:  lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		TableHead: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		TableCell: lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Importance: map[string]lipgloss.Style{
			"high":   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
			"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		},
	}
}
