package benchmark

import "github.com/fatih/color"

var (
	successLabel = color.New(color.FgGreen, color.Bold).SprintFunc()
	failedLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	infoLabel    = color.New(color.FgCyan).SprintFunc()
)
