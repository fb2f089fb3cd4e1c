package app

import "charm.land/lipgloss/v2"

var (
	headerStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("70")).Bold(true)
	markerStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	markerPrivateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("180"))
	selectedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	dividerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	labelStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	focusedLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true)
	menuDropStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("235"))
	dialogHeaderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("251")).Background(lipgloss.Color("235")).Bold(true)
	confirmBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("208"))
	modalBorderStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("69")).Padding(0, 1)
	instructionsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("237")).Foreground(lipgloss.Color("245")).Padding(0, 1)
	replyTargetStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true)
	deleteButtonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true).Underline(true)
	copyButtonStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true).Underline(true)
	toastInfoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("29")).Bold(true)
	toastWarningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("136")).Bold(true)
	toastErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Bold(true)
)
