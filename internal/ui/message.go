package ui

import (
	"github.com/AliEhsanian/ytgrab/internal/models"
	"github.com/AliEhsanian/ytgrab/internal/tasks"
)

type progressUpdateMsg tasks.ProgressUpdate

type downloadCompleteMsg struct {
	results []*models.DownloadResult
	err     error
}
