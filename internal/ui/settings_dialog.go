package ui

import (
	"sort"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/media-magic/internal/config"
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onSaved      func()

	// UI components
	transcriptsDirEntry *widget.Entry
	tempDirEntry        *widget.Entry
	downloadDirEntry    *widget.Entry
	languageCodeSelect  *widget.Select
	chunkMinutesEntry   *widget.Entry
	pollSecondsEntry    *widget.Entry
	maxParallelEntry    *widget.Entry
	languageSelect      *widget.Select
}

// ShowSettingsDialog opens the settings dialog; onSaved runs after a save
func ShowSettingsDialog(window fyne.Window, settings *config.Settings, l *Localization, onSaved func()) *SettingsDialog {
	sd := NewSettingsDialog(settings, l, window)
	sd.onSaved = onSaved
	sd.Show()
	return sd
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(settings *config.Settings, l *Localization, window fyne.Window) *SettingsDialog {
	sd := &SettingsDialog{
		settings:     settings,
		localization: l,
		window:       window,
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	t := sd.localization.GetText

	sd.transcriptsDirEntry = widget.NewEntry()
	sd.tempDirEntry = widget.NewEntry()
	sd.downloadDirEntry = widget.NewEntry()

	sd.languageCodeSelect = widget.NewSelect(sd.settings.GetLanguageCodeOptions(), nil)

	sd.chunkMinutesEntry = widget.NewEntry()
	sd.chunkMinutesEntry.SetPlaceHolder(strconv.Itoa(config.MinChunkMinutes) + "-" + strconv.Itoa(config.MaxChunkMinutes))
	sd.pollSecondsEntry = widget.NewEntry()
	sd.pollSecondsEntry.SetPlaceHolder(strconv.Itoa(config.MinPollSeconds) + "-" + strconv.Itoa(config.MaxPollSeconds))
	sd.maxParallelEntry = widget.NewEntry()
	sd.maxParallelEntry.SetPlaceHolder(strconv.Itoa(config.MinMaxParallel) + "-" + strconv.Itoa(config.MaxMaxParallel))

	languageOptions := []string{}
	for code := range sd.settings.GetLanguageOptions() {
		languageOptions = append(languageOptions, code)
	}
	sort.Strings(languageOptions)
	sd.languageSelect = widget.NewSelect(languageOptions, nil)

	form := widget.NewForm(
		widget.NewFormItem(t(KeyTranscriptsDirectory), sd.directoryRow(sd.transcriptsDirEntry)),
		widget.NewFormItem(t(KeyTempDirectory), sd.directoryRow(sd.tempDirEntry)),
		widget.NewFormItem(t(KeyDownloadDirectory), sd.directoryRow(sd.downloadDirEntry)),
		widget.NewFormItem(t(KeyLanguageCode), sd.languageCodeSelect),
		widget.NewFormItem(t(KeyChunkMinutes), sd.chunkMinutesEntry),
		widget.NewFormItem(t(KeyPollSeconds), sd.pollSecondsEntry),
		widget.NewFormItem(t(KeyMaxParallel), sd.maxParallelEntry),
		widget.NewFormItem(t(KeyLanguage), sd.languageSelect),
	)

	sd.dialog = dialog.NewCustomConfirm(
		t(KeySettings),
		t(KeySave),
		t(KeyCancel),
		container.NewVScroll(form),
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(SettingsDialogW, SettingsDialogH))
}

func (sd *SettingsDialog) directoryRow(entry *widget.Entry) fyne.CanvasObject {
	browse := widget.NewButton(sd.localization.GetText(KeyBrowse), func() {
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			entry.SetText(uri.Path())
		}, sd.window)
	})
	return container.NewBorder(nil, nil, nil, browse, entry)
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	sd.transcriptsDirEntry.SetText(sd.settings.GetTranscriptsDirectory())
	sd.tempDirEntry.SetText(sd.settings.GetTempDirectory())
	sd.downloadDirEntry.SetText(sd.settings.GetDownloadDirectory())
	sd.languageCodeSelect.SetSelected(sd.settings.GetLanguageCode())
	sd.chunkMinutesEntry.SetText(strconv.Itoa(sd.settings.GetChunkMinutes()))
	sd.pollSecondsEntry.SetText(strconv.Itoa(sd.settings.GetPollSeconds()))
	sd.maxParallelEntry.SetText(strconv.Itoa(sd.settings.GetMaxParallelDownloads()))
	sd.languageSelect.SetSelected(sd.settings.GetLanguage())
}

// onSave handles saving the settings
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}
	sd.save()
	dialog.ShowInformation(sd.localization.GetText(KeySettings), sd.localization.GetText(KeySettingsSaved), sd.window)
	if sd.onSaved != nil {
		sd.onSaved()
	}
}

// save writes the dialog fields to settings. Empty or non-numeric fields keep the stored value.
func (sd *SettingsDialog) save() {
	if dir := sd.transcriptsDirEntry.Text; dir != "" {
		sd.settings.SetTranscriptsDirectory(dir)
	}
	if dir := sd.tempDirEntry.Text; dir != "" {
		sd.settings.SetTempDirectory(dir)
	}
	if dir := sd.downloadDirEntry.Text; dir != "" {
		sd.settings.SetDownloadDirectory(dir)
	}
	if sd.languageCodeSelect.Selected != "" {
		sd.settings.SetLanguageCode(sd.languageCodeSelect.Selected)
	}
	if n, err := strconv.Atoi(sd.chunkMinutesEntry.Text); err == nil {
		sd.settings.SetChunkMinutes(n)
	}
	if n, err := strconv.Atoi(sd.pollSecondsEntry.Text); err == nil {
		sd.settings.SetPollSeconds(n)
	}
	if n, err := strconv.Atoi(sd.maxParallelEntry.Text); err == nil {
		sd.settings.SetMaxParallelDownloads(n)
	}
	if sd.languageSelect.Selected != "" {
		sd.settings.SetLanguage(sd.languageSelect.Selected)
	}
}
