package ui

// Package ui provides user interface components

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle             = "app_title"
	KeyVideoTab             = "video_tab"
	KeyAudioTab             = "audio_tab"
	KeyYouTubeLink          = "youtube_link"
	KeyEnforceStart         = "enforce_start"
	KeyEnforceEnd           = "enforce_end"
	KeyStartTime            = "start_time"
	KeyEndTime              = "end_time"
	KeyHours                = "hours"
	KeyMinutes              = "minutes"
	KeySeconds              = "seconds"
	KeyChooseFile           = "choose_file"
	KeyNoFileSelected       = "no_file_selected"
	KeyTranscribe           = "transcribe"
	KeyCancel               = "cancel"
	KeyOpenTranscripts      = "open_transcripts"
	KeySettings             = "settings"
	KeyFile                 = "file"
	KeyLanguage             = "language"
	KeyTranscriptsDirectory = "transcripts_directory"
	KeyTempDirectory        = "temp_directory"
	KeyDownloadDirectory    = "download_directory"
	KeyLanguageCode         = "language_code"
	KeyChunkMinutes         = "chunk_minutes"
	KeyPollSeconds          = "poll_seconds"
	KeyMaxParallel          = "max_parallel"
	KeySave                 = "save"
	KeyBrowse               = "browse"
	KeyEnterURL             = "enter_url"
	KeySettingsSaved        = "settings_saved"
	KeyTranscribingPrefix   = "transcribing_prefix"
	KeyDone                 = "done"
	KeyIdle                 = "idle"
	KeyTranscriptionDone    = "transcription_done"
	KeyTranscriptionStopped = "transcription_stopped"
	KeyInvalidDuration      = "invalid_duration"
	KeyInvalidTime          = "invalid_time"
	KeyInvalidURL           = "invalid_url"
	KeyPleaseEnterURL       = "please_enter_url"
	KeyAlreadyRunning       = "already_running"
	KeyErrorOpeningFolder   = "error_opening_folder"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		// Use system locale - simplified to English for now
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle:             "Media Magic",
		KeyVideoTab:             "Video Magic",
		KeyAudioTab:             "Audio Magic",
		KeyYouTubeLink:          "YouTube Link",
		KeyEnforceStart:         "Enforce Start Time",
		KeyEnforceEnd:           "Enforce End Time",
		KeyStartTime:            "Start Time",
		KeyEndTime:              "End Time",
		KeyHours:                "h",
		KeyMinutes:              "m",
		KeySeconds:              "s",
		KeyChooseFile:           "Choose Audio File",
		KeyNoFileSelected:       "No file selected",
		KeyTranscribe:           "Transcribe",
		KeyCancel:               "Cancel",
		KeyOpenTranscripts:      "Open Transcripts",
		KeySettings:             "Settings",
		KeyFile:                 "File",
		KeyLanguage:             "Language",
		KeyTranscriptsDirectory: "Transcripts Directory",
		KeyTempDirectory:        "Temp Directory",
		KeyDownloadDirectory:    "Video Directory",
		KeyLanguageCode:         "Speech Language",
		KeyChunkMinutes:         "Chunk Length (minutes)",
		KeyPollSeconds:          "Status Check Interval (seconds)",
		KeyMaxParallel:          "Max Parallel Downloads",
		KeySave:                 "Save",
		KeyBrowse:               "Browse",
		KeyEnterURL:             "https://youtube.com/watch?v=...",
		KeySettingsSaved:        "Settings saved successfully!",
		KeyTranscribingPrefix:   "Transcribing: ",
		KeyDone:                 "Done!",
		KeyIdle:                 "Ready",
		KeyTranscriptionDone:    "Transcripts saved to %s",
		KeyTranscriptionStopped: "Transcription cancelled",
		KeyInvalidDuration:      "Could not read the duration of this file",
		KeyInvalidTime:          "Invalid time",
		KeyInvalidURL:           "Invalid URL",
		KeyPleaseEnterURL:       "Please enter a YouTube link",
		KeyAlreadyRunning:       "A transcription is already running",
		KeyErrorOpeningFolder:   "Error opening folder",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyAppTitle:             "Media Magic",
		KeyVideoTab:             "Видео",
		KeyAudioTab:             "Аудио",
		KeyYouTubeLink:          "Ссылка YouTube",
		KeyEnforceStart:         "Задать начало",
		KeyEnforceEnd:           "Задать конец",
		KeyStartTime:            "Начало",
		KeyEndTime:              "Конец",
		KeyHours:                "ч",
		KeyMinutes:              "м",
		KeySeconds:              "с",
		KeyChooseFile:           "Выбрать аудиофайл",
		KeyNoFileSelected:       "Файл не выбран",
		KeyTranscribe:           "Распознать",
		KeyCancel:               "Отмена",
		KeyOpenTranscripts:      "Открыть расшифровки",
		KeySettings:             "Настройки",
		KeyFile:                 "Файл",
		KeyLanguage:             "Язык",
		KeyTranscriptsDirectory: "Папка расшифровок",
		KeyTempDirectory:        "Временная папка",
		KeyDownloadDirectory:    "Папка видео",
		KeyLanguageCode:         "Язык речи",
		KeyChunkMinutes:         "Длина фрагмента (минуты)",
		KeyPollSeconds:          "Интервал проверки (секунды)",
		KeyMaxParallel:          "Макс. параллельных",
		KeySave:                 "Сохранить",
		KeyBrowse:               "Обзор",
		KeyEnterURL:             "https://youtube.com/watch?v=...",
		KeySettingsSaved:        "Настройки успешно сохранены!",
		KeyTranscribingPrefix:   "Распознавание: ",
		KeyDone:                 "Готово!",
		KeyIdle:                 "Готов",
		KeyTranscriptionDone:    "Расшифровки сохранены в %s",
		KeyTranscriptionStopped: "Распознавание отменено",
		KeyInvalidDuration:      "Не удалось определить длительность файла",
		KeyInvalidTime:          "Неверное время",
		KeyInvalidURL:           "Неверный URL",
		KeyPleaseEnterURL:       "Пожалуйста, введите ссылку YouTube",
		KeyAlreadyRunning:       "Распознавание уже выполняется",
		KeyErrorOpeningFolder:   "Ошибка открытия папки",
	}

	// Portuguese texts
	l.texts["pt"] = map[string]string{
		KeyAppTitle:             "Media Magic",
		KeyVideoTab:             "Vídeo",
		KeyAudioTab:             "Áudio",
		KeyYouTubeLink:          "Link do YouTube",
		KeyEnforceStart:         "Definir início",
		KeyEnforceEnd:           "Definir fim",
		KeyStartTime:            "Início",
		KeyEndTime:              "Fim",
		KeyHours:                "h",
		KeyMinutes:              "m",
		KeySeconds:              "s",
		KeyChooseFile:           "Escolher arquivo de áudio",
		KeyNoFileSelected:       "Nenhum arquivo selecionado",
		KeyTranscribe:           "Transcrever",
		KeyCancel:               "Cancelar",
		KeyOpenTranscripts:      "Abrir transcrições",
		KeySettings:             "Configurações",
		KeyFile:                 "Arquivo",
		KeyLanguage:             "Idioma",
		KeyTranscriptsDirectory: "Diretório de transcrições",
		KeyTempDirectory:        "Diretório temporário",
		KeyDownloadDirectory:    "Diretório de vídeos",
		KeyLanguageCode:         "Idioma da fala",
		KeyChunkMinutes:         "Tamanho do trecho (minutos)",
		KeyPollSeconds:          "Intervalo de verificação (segundos)",
		KeyMaxParallel:          "Max Downloads Paralelos",
		KeySave:                 "Salvar",
		KeyBrowse:               "Navegar",
		KeyEnterURL:             "https://youtube.com/watch?v=...",
		KeySettingsSaved:        "Configurações salvas com sucesso!",
		KeyTranscribingPrefix:   "Transcrevendo: ",
		KeyDone:                 "Concluído!",
		KeyIdle:                 "Pronto",
		KeyTranscriptionDone:    "Transcrições salvas em %s",
		KeyTranscriptionStopped: "Transcrição cancelada",
		KeyInvalidDuration:      "Não foi possível ler a duração do arquivo",
		KeyInvalidTime:          "Hora inválida",
		KeyInvalidURL:           "URL inválida",
		KeyPleaseEnterURL:       "Por favor, digite um link do YouTube",
		KeyAlreadyRunning:       "Uma transcrição já está em andamento",
		KeyErrorOpeningFolder:   "Erro ao abrir pasta",
	}
}
