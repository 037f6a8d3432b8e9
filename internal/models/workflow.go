package models

type Language string

const (
	LanguagePython Language = "python"
	LanguageShell  Language = "shell"
	LanguageBash   Language = "bash"
	LanguageZsh    Language = "zsh"
	LanguageFish   Language = "fish"
)

// DefaultLanguage is assumed whenever a document does not name one.
const DefaultLanguage = LanguagePython

// KnownLanguages returns the recognized workflow languages in display order.
func KnownLanguages() []Language {
	return []Language{LanguagePython, LanguageShell, LanguageBash, LanguageZsh, LanguageFish}
}

func (l Language) Known() bool {
	switch l {
	case LanguagePython, LanguageShell, LanguageBash, LanguageZsh, LanguageFish:
		return true
	}
	return false
}

// Normalize returns l when recognized and DefaultLanguage otherwise.
func (l Language) Normalize() Language {
	if l.Known() {
		return l
	}
	return DefaultLanguage
}

const (
	DefaultVersion = "1.0"
	DefaultGroup   = "workflow"
)

// Workflow is the flat document form: the whole script body in a single
// code field. CreatedAt and UpdatedAt are advisory strings carried verbatim;
// nothing here ever stamps them.
type Workflow struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Group       string         `json:"group,omitempty"`
	Version     string         `json:"version,omitempty"`
	Language    Language       `json:"language,omitempty"`
	Code        string         `json:"code"`
	CreatedAt   string         `json:"created_at,omitempty"`
	UpdatedAt   string         `json:"updated_at,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}
