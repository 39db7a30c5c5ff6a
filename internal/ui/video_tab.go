package ui

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/media-magic/internal/workflow"
)

// VideoTab downloads a YouTube video and transcribes it
type VideoTab struct {
	ui *RootUI

	linkEntry     *widget.Entry
	enforceStart  *widget.Check
	enforceEnd    *widget.Check
	start         *TimeEntry
	end           *TimeEntry
	transcribeBtn *widget.Button
	content       fyne.CanvasObject
}

// NewVideoTab creates the video tab
func NewVideoTab(ui *RootUI) *VideoTab {
	t := ui.localization.GetText
	tab := &VideoTab{ui: ui}

	tab.linkEntry = widget.NewEntry()
	tab.linkEntry.SetPlaceHolder(t(KeyEnterURL))
	tab.linkEntry.Validator = validateURL
	tab.linkEntry.OnSubmitted = func(string) { tab.onTranscribe() }

	tab.start = NewTimeEntry(ui.localization)
	tab.end = NewTimeEntry(ui.localization)
	tab.start.Disable()
	tab.end.Disable()

	tab.enforceStart = widget.NewCheck(t(KeyEnforceStart), func(on bool) { toggle(tab.start, on) })
	tab.enforceEnd = widget.NewCheck(t(KeyEnforceEnd), func(on bool) { toggle(tab.end, on) })

	tab.transcribeBtn = widget.NewButton(IconVideo+" "+t(KeyTranscribe), tab.onTranscribe)
	tab.transcribeBtn.Importance = widget.HighImportance

	tab.content = container.NewVBox(
		widget.NewForm(widget.NewFormItem(t(KeyYouTubeLink), tab.linkEntry)),
		tab.enforceStart,
		tab.start.Container(),
		tab.enforceEnd,
		tab.end.Container(),
		tab.transcribeBtn,
	)
	return tab
}

func toggle(te *TimeEntry, on bool) {
	if on {
		te.Enable()
	} else {
		te.Disable()
	}
}

// Container returns the tab content
func (tab *VideoTab) Container() fyne.CanvasObject {
	return tab.content
}

// validateURL validates the entered URL
func validateURL(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil // Empty is allowed
	}

	parsedURL, err := url.Parse(strings.TrimSpace(input))
	if err != nil {
		return err
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}

	return nil
}

func (tab *VideoTab) request() (workflow.VideoRequest, error) {
	req := workflow.VideoRequest{
		URL:          strings.TrimSpace(tab.linkEntry.Text),
		EnforceStart: tab.enforceStart.Checked,
		EnforceEnd:   tab.enforceEnd.Checked,
	}
	var err error
	if req.EnforceStart {
		if req.Start, err = tab.start.Duration(); err != nil {
			return req, err
		}
	}
	if req.EnforceEnd {
		if req.End, err = tab.end.Duration(); err != nil {
			return req, err
		}
	}
	return req, nil
}

func (tab *VideoTab) onTranscribe() {
	t := tab.ui.localization.GetText
	link := strings.TrimSpace(tab.linkEntry.Text)
	if link == "" {
		dialog.ShowInformation(t(KeyAppTitle), t(KeyPleaseEnterURL), tab.ui.window)
		return
	}
	if err := validateURL(link); err != nil {
		dialog.ShowError(fmt.Errorf("%s: %w", t(KeyInvalidURL), err), tab.ui.window)
		return
	}

	req, err := tab.request()
	if err != nil {
		dialog.ShowError(errors.New(t(KeyInvalidTime)), tab.ui.window)
		return
	}
	tab.ui.submit(req)
}

func (tab *VideoTab) setBusy(busy bool) {
	if busy {
		tab.transcribeBtn.Disable()
	} else {
		tab.transcribeBtn.Enable()
	}
}
