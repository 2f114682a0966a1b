package syncer

// Preferences are local-only scalars.

const (
	DefaultLanguage  = "en"
	DefaultActiveTab = "home"
)

func (e *Engine) Language() string {
	var lang string
	if e.read(KeyLanguage, &lang) && lang != "" {
		return lang
	}
	return DefaultLanguage
}

func (e *Engine) SetLanguage(lang string) error {
	return e.write(KeyLanguage, lang)
}

func (e *Engine) OnboardingSeen() bool {
	var seen bool
	return e.read(KeyOnboardingSeen, &seen) && seen
}

func (e *Engine) MarkOnboardingSeen() error {
	return e.write(KeyOnboardingSeen, true)
}

func (e *Engine) ActiveTab() string {
	var tab string
	if e.read(KeyActiveTab, &tab) && tab != "" {
		return tab
	}
	return DefaultActiveTab
}

func (e *Engine) SetActiveTab(tab string) error {
	return e.write(KeyActiveTab, tab)
}
