package domain

import "fmt"

// Language is one of the two supported content locales.
type Language string

const (
	LanguageEnglish  Language = "en"
	LanguageJapanese Language = "jp"

	PrimaryLanguage   = LanguageEnglish
	SecondaryLanguage = LanguageJapanese
)

// ParseLanguage validates a language code.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LanguageEnglish, LanguageJapanese:
		return Language(s), nil
	}
	return "", &ValidationError{Field: "language", Reason: fmt.Sprintf("unsupported language %q", s)}
}

// Other returns the counterpart language.
func (l Language) Other() Language {
	if l == SecondaryLanguage {
		return PrimaryLanguage
	}
	return SecondaryLanguage
}

// Theme is the visitor's colour scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ParseTheme validates a theme value.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark, ThemeSystem:
		return Theme(s), nil
	}
	return "", &ValidationError{Field: "theme", Reason: fmt.Sprintf("unsupported theme %q", s)}
}
