package ui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/media-magic/internal/media"
)

// errInvalidTime is returned for non-numeric or negative h/m/s fields
var errInvalidTime = errors.New("invalid time")

// TimeEntry is an hours/minutes/seconds input
type TimeEntry struct {
	hours   *widget.Entry
	minutes *widget.Entry
	seconds *widget.Entry
	content *fyne.Container
}

// NewTimeEntry creates a TimeEntry showing 0:00:00
func NewTimeEntry(l *Localization) *TimeEntry {
	te := &TimeEntry{
		hours:   newTimeField(),
		minutes: newTimeField(),
		seconds: newTimeField(),
	}
	te.content = container.NewHBox(
		fixedWidth(te.hours), widget.NewLabel(l.GetText(KeyHours)),
		fixedWidth(te.minutes), widget.NewLabel(l.GetText(KeyMinutes)),
		fixedWidth(te.seconds), widget.NewLabel(l.GetText(KeySeconds)),
	)
	return te
}

func newTimeField() *widget.Entry {
	e := widget.NewEntry()
	e.SetText("0")
	e.Validator = func(s string) error {
		_, err := parseTimeField(s)
		return err
	}
	return e
}

func fixedWidth(o fyne.CanvasObject) fyne.CanvasObject {
	return container.New(layout.NewGridWrapLayout(fyne.NewSize(TimeFieldWidth, o.MinSize().Height)), o)
}

func parseTimeField(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errInvalidTime
	}
	return n, nil
}

// Container returns the widget tree
func (te *TimeEntry) Container() fyne.CanvasObject {
	return te.content
}

// Duration returns the entered time
func (te *TimeEntry) Duration() (time.Duration, error) {
	var parts [3]int
	for i, e := range []*widget.Entry{te.hours, te.minutes, te.seconds} {
		n, err := parseTimeField(e.Text)
		if err != nil {
			return 0, err
		}
		parts[i] = n
	}
	return media.ClockDuration(parts[0], parts[1], parts[2]), nil
}

// SetDuration fills the fields from d
func (te *TimeEntry) SetDuration(d time.Duration) {
	h, m, s := media.SplitClock(d)
	te.hours.SetText(strconv.Itoa(h))
	te.minutes.SetText(strconv.Itoa(m))
	te.seconds.SetText(strconv.Itoa(s))
}

// Enable enables all fields
func (te *TimeEntry) Enable() {
	te.hours.Enable()
	te.minutes.Enable()
	te.seconds.Enable()
}

// Disable disables all fields
func (te *TimeEntry) Disable() {
	te.hours.Disable()
	te.minutes.Disable()
	te.seconds.Disable()
}

// Disabled reports whether the fields are disabled
func (te *TimeEntry) Disabled() bool {
	return te.hours.Disabled()
}
