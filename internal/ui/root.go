package ui

import (
	"context"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/media-magic/internal/config"
	"github.com/ytget/media-magic/internal/logger"
	"github.com/ytget/media-magic/internal/media"
	"github.com/ytget/media-magic/internal/model"
	"github.com/ytget/media-magic/internal/platform"
	"github.com/ytget/media-magic/internal/worker"
)

// Runner executes transcription commands off the UI thread
type Runner interface {
	Submit(cmd worker.Command) (*worker.Run, error)
	Events() <-chan worker.Event
	Cancel(id string) error
}

// AudioProber reads the duration of an audio file
type AudioProber interface {
	Probe(ctx context.Context, path string) (media.Info, error)
}

// RootUI represents the main UI structure
type RootUI struct {
	window          fyne.Window
	settings        *config.Settings
	localization    *Localization
	runner          Runner
	prober          AudioProber
	log             logger.Logger
	onSettingsSaved func()

	tabs        *container.AppTabs
	audioTab    *AudioTab
	videoTab    *VideoTab
	statusLabel *widget.Label
	spinner     *widget.ProgressBarInfinite
	cancelBtn   *widget.Button
	openBtn     *widget.Button

	runMutex  sync.Mutex
	activeRun string
}

// NewRootUI creates and initializes the main UI and starts consuming runner events
func NewRootUI(window fyne.Window, settings *config.Settings, runner Runner, prober AudioProber, log logger.Logger, onSettingsSaved func()) *RootUI {
	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:          window,
		settings:        settings,
		localization:    localization,
		runner:          runner,
		prober:          prober,
		log:             logger.OrNop(log),
		onSettingsSaved: onSettingsSaved,
	}

	ui.setupUI()
	go ui.consumeEvents()
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	t := ui.localization.GetText
	ui.window.SetTitle(t(KeyAppTitle))
	ui.createMenu()

	ui.audioTab = NewAudioTab(ui)
	ui.videoTab = NewVideoTab(ui)
	ui.tabs = container.NewAppTabs(
		container.NewTabItem(t(KeyVideoTab), ui.videoTab.Container()),
		container.NewTabItem(t(KeyAudioTab), ui.audioTab.Container()),
	)
	ui.tabs.SelectIndex(1)

	ui.statusLabel = widget.NewLabel(t(KeyIdle))
	ui.statusLabel.Wrapping = fyne.TextWrapWord
	ui.spinner = widget.NewProgressBarInfinite()
	ui.spinner.Hide()

	ui.cancelBtn = widget.NewButton(t(KeyCancel), ui.onCancel)
	ui.openBtn = widget.NewButton(IconFolder+" "+t(KeyOpenTranscripts), ui.onOpenTranscripts)
	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	bottom := container.NewVBox(
		widget.NewSeparator(),
		ui.spinner,
		ui.statusLabel,
		container.NewHBox(settingsBtn, ui.openBtn, ui.cancelBtn),
	)

	ui.window.SetContent(container.NewBorder(nil, bottom, nil, nil, ui.tabs))

	ui.runMutex.Lock()
	busy := ui.activeRun != ""
	ui.runMutex.Unlock()
	ui.setBusy(busy)
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for code, name := range ui.localization.GetAvailableLanguages() {
		langCode := code
		langItem := fyne.NewMenuItem(name, func() {
			ui.onLanguageChange(langCode)
		})
		langItem.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	))
}

// onLanguageChange rebuilds the window in the chosen language
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.setupUI()
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.window, ui.settings, ui.localization, func() {
		ui.localization.SetLanguage(ui.settings.GetLanguage())
		if ui.onSettingsSaved != nil {
			ui.onSettingsSaved()
		}
		ui.setupUI()
	})
}

// submit hands cmd to the runner unless a transcription is already active
func (ui *RootUI) submit(cmd worker.Command) bool {
	ui.runMutex.Lock()
	if ui.activeRun != "" {
		ui.runMutex.Unlock()
		dialog.ShowInformation(ui.localization.GetText(KeyAppTitle), ui.localization.GetText(KeyAlreadyRunning), ui.window)
		return false
	}
	run, err := ui.runner.Submit(cmd)
	if err != nil {
		ui.runMutex.Unlock()
		dialog.ShowError(err, ui.window)
		return false
	}
	ui.activeRun = run.ID
	ui.runMutex.Unlock()

	ui.log.Info(context.Background(), "Submitted %s as %s", cmd.Describe(), run.ID)
	ui.setBusy(true)
	ui.setStatus(ui.localization.GetText(KeyTranscribingPrefix) + string(model.TaskStatusPending))
	return true
}

// consumeEvents forwards runner events to the UI thread
func (ui *RootUI) consumeEvents() {
	for ev := range ui.runner.Events() {
		ev := ev
		fyne.Do(func() { ui.applyEvent(ev) })
	}
}

// applyEvent renders one executor event. Must run on the UI thread.
func (ui *RootUI) applyEvent(ev worker.Event) {
	ui.runMutex.Lock()
	if ev.RunID != ui.activeRun {
		ui.runMutex.Unlock()
		return
	}
	if ev.Type == worker.EventResult {
		ui.activeRun = ""
	}
	ui.runMutex.Unlock()

	prefix := ui.localization.GetText(KeyTranscribingPrefix)
	switch ev.Type {
	case worker.EventProgress:
		ui.setStatus(prefix + ev.Message)
	case worker.EventStatus:
		if ev.Status == model.TaskStatusStopping {
			ui.setStatus(prefix + string(ev.Status))
		}
	case worker.EventResult:
		ui.setBusy(false)
		ui.showResult(ev)
	}
}

func (ui *RootUI) showResult(ev worker.Event) {
	t := ui.localization.GetText
	switch {
	case ev.Status == model.TaskStatusCompleted:
		ui.setStatus(t(KeyDone))
		dialog.ShowInformation(t(KeyAppTitle), fmt.Sprintf(t(KeyTranscriptionDone), ui.settings.GetTranscriptsDirectory()), ui.window)
	case ev.Status == model.TaskStatusStopped:
		ui.setStatus(t(KeyTranscriptionStopped))
	case ev.Result != nil && ev.Result.Err != nil:
		ui.setStatus(t(KeyTranscribingPrefix) + ev.Result.Err.Error())
		dialog.ShowError(ev.Result.Err, ui.window)
	default:
		ui.setStatus(t(KeyTranscribingPrefix) + string(ev.Status))
	}
}

// onCancel cancels the active transcription
func (ui *RootUI) onCancel() {
	ui.runMutex.Lock()
	id := ui.activeRun
	ui.runMutex.Unlock()
	if id == "" {
		return
	}
	if err := ui.runner.Cancel(id); err != nil {
		ui.log.Warn(context.Background(), "Failed to cancel %s: %v", id, err)
		return
	}
	ui.cancelBtn.Disable()
}

// onOpenTranscripts reveals the transcripts directory
func (ui *RootUI) onOpenTranscripts() {
	dir := ui.settings.GetTranscriptsDirectory()
	err := platform.CreateDirectoryIfNotExists(dir)
	if err == nil {
		err = platform.OpenFolder(dir)
	}
	if err != nil {
		ui.log.Error(context.Background(), "Failed to open %s: %v", dir, err)
		dialog.ShowError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyErrorOpeningFolder), err), ui.window)
	}
}

func (ui *RootUI) setStatus(text string) {
	ui.statusLabel.SetText(text)
}

// setBusy toggles widgets between idle and running
func (ui *RootUI) setBusy(busy bool) {
	if busy {
		ui.spinner.Show()
		ui.spinner.Start()
		ui.cancelBtn.Enable()
	} else {
		ui.spinner.Stop()
		ui.spinner.Hide()
		ui.cancelBtn.Disable()
	}
	ui.audioTab.setBusy(busy)
	ui.videoTab.setBusy(busy)
}
