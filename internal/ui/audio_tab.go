package ui

import (
	"context"
	"errors"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/media-magic/internal/media"
	"github.com/ytget/media-magic/internal/workflow"
)

// AudioTab transcribes a local audio file
type AudioTab struct {
	ui *RootUI

	path          string
	fileLabel     *widget.Label
	chooseBtn     *widget.Button
	transcribeBtn *widget.Button
	start         *TimeEntry
	end           *TimeEntry
	content       fyne.CanvasObject
}

// NewAudioTab creates the audio tab
func NewAudioTab(ui *RootUI) *AudioTab {
	t := ui.localization.GetText
	tab := &AudioTab{ui: ui}

	tab.fileLabel = widget.NewLabel(t(KeyNoFileSelected))
	tab.fileLabel.Truncation = fyne.TextTruncateEllipsis
	tab.chooseBtn = widget.NewButton(IconMusic+" "+t(KeyChooseFile), tab.onChooseFile)
	tab.start = NewTimeEntry(ui.localization)
	tab.end = NewTimeEntry(ui.localization)

	tab.transcribeBtn = widget.NewButton(t(KeyTranscribe), tab.onTranscribe)
	tab.transcribeBtn.Importance = widget.HighImportance
	tab.transcribeBtn.Disable()

	tab.content = container.NewVBox(
		container.NewBorder(nil, nil, tab.chooseBtn, nil, tab.fileLabel),
		widget.NewForm(
			widget.NewFormItem(t(KeyStartTime), tab.start.Container()),
			widget.NewFormItem(t(KeyEndTime), tab.end.Container()),
		),
		tab.transcribeBtn,
	)
	return tab
}

// Container returns the tab content
func (tab *AudioTab) Container() fyne.CanvasObject {
	return tab.content
}

func (tab *AudioTab) onChooseFile() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, tab.ui.window)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		tab.loadFile(path)
	}, tab.ui.window)
	fd.SetFilter(storage.NewExtensionFileFilter(media.AudioExtensions))
	fd.Show()
}

// loadFile probes path off the UI thread and pre-fills the end time
func (tab *AudioTab) loadFile(path string) {
	go func() {
		info, err := tab.ui.prober.Probe(context.Background(), path)
		fyne.Do(func() { tab.applyProbe(path, info, err) })
	}()
}

// applyProbe shows the probed file. Must run on the UI thread.
func (tab *AudioTab) applyProbe(path string, info media.Info, err error) {
	if err == nil && info.Duration <= 0 {
		err = errors.New(tab.ui.localization.GetText(KeyInvalidDuration))
	}
	if err != nil {
		tab.ui.log.Error(context.Background(), "Failed to read %s: %v", path, err)
		tab.path = ""
		tab.fileLabel.SetText(tab.ui.localization.GetText(KeyNoFileSelected))
		tab.transcribeBtn.Disable()
		dialog.ShowError(err, tab.ui.window)
		return
	}

	tab.path = path
	tab.fileLabel.SetText(filepath.Base(path))
	tab.start.SetDuration(0)
	tab.end.SetDuration(info.Duration)
	tab.transcribeBtn.Enable()
}

func (tab *AudioTab) request() (workflow.AudioRequest, error) {
	start, err := tab.start.Duration()
	if err != nil {
		return workflow.AudioRequest{}, err
	}
	end, err := tab.end.Duration()
	if err != nil {
		return workflow.AudioRequest{}, err
	}
	return workflow.AudioRequest{Path: tab.path, Start: start, End: end}, nil
}

func (tab *AudioTab) onTranscribe() {
	if tab.path == "" {
		return
	}
	req, err := tab.request()
	if err != nil {
		dialog.ShowError(errors.New(tab.ui.localization.GetText(KeyInvalidTime)), tab.ui.window)
		return
	}
	tab.ui.submit(req)
}

func (tab *AudioTab) setBusy(busy bool) {
	if busy {
		tab.chooseBtn.Disable()
		tab.transcribeBtn.Disable()
		return
	}
	tab.chooseBtn.Enable()
	if tab.path != "" {
		tab.transcribeBtn.Enable()
	}
}
