// Package langcode resolves target-language codes for translation runs:
// canonicalizing BCP-47-ish codes, mapping them to display names for
// prompts and UI, and detecting the language from conventional
// localization filenames like messages.es.xlf.
package langcode

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Meta describes language display metadata.
type Meta struct {
	// Name is the English language name, used in translation prompts.
	Name string
	// Flag is an emoji flag for terminal output.
	Flag string
}

// Registry contains canonical language metadata.
// Locale variants are resolved in Resolve() via normalization and base fallback.
var Registry = map[string]Meta{
	"af":    {Name: "Afrikaans", Flag: "🇿🇦"},
	"ar":    {Name: "Arabic", Flag: "🇸🇦"},
	"az":    {Name: "Azerbaijani", Flag: "🇦🇿"},
	"be":    {Name: "Belarusian", Flag: "🇧🇾"},
	"bg":    {Name: "Bulgarian", Flag: "🇧🇬"},
	"bn":    {Name: "Bengali", Flag: "🇧🇩"},
	"bs":    {Name: "Bosnian", Flag: "🇧🇦"},
	"ca":    {Name: "Catalan", Flag: "🇪🇸"},
	"cs":    {Name: "Czech", Flag: "🇨🇿"},
	"cy":    {Name: "Welsh", Flag: "🇬🇧"},
	"da":    {Name: "Danish", Flag: "🇩🇰"},
	"de":    {Name: "German", Flag: "🇩🇪"},
	"de-AT": {Name: "German (Austria)", Flag: "🇦🇹"},
	"de-CH": {Name: "German (Switzerland)", Flag: "🇨🇭"},
	"el":    {Name: "Greek", Flag: "🇬🇷"},
	"en":    {Name: "English", Flag: "🇺🇸"},
	"en-AU": {Name: "English (Australia)", Flag: "🇦🇺"},
	"en-GB": {Name: "English (UK)", Flag: "🇬🇧"},
	"en-US": {Name: "English (US)", Flag: "🇺🇸"},
	"es":    {Name: "Spanish", Flag: "🇪🇸"},
	"es-AR": {Name: "Spanish (Argentina)", Flag: "🇦🇷"},
	"es-MX": {Name: "Spanish (Mexico)", Flag: "🇲🇽"},
	"et":    {Name: "Estonian", Flag: "🇪🇪"},
	"eu":    {Name: "Basque", Flag: "🇪🇸"},
	"fa":    {Name: "Persian", Flag: "🇮🇷"},
	"fi":    {Name: "Finnish", Flag: "🇫🇮"},
	"fr":    {Name: "French", Flag: "🇫🇷"},
	"fr-BE": {Name: "French (Belgium)", Flag: "🇧🇪"},
	"fr-CA": {Name: "French (Canada)", Flag: "🇨🇦"},
	"ga":    {Name: "Irish", Flag: "🇮🇪"},
	"gl":    {Name: "Galician", Flag: "🇪🇸"},
	"he":    {Name: "Hebrew", Flag: "🇮🇱"},
	"hi":    {Name: "Hindi", Flag: "🇮🇳"},
	"hr":    {Name: "Croatian", Flag: "🇭🇷"},
	"hu":    {Name: "Hungarian", Flag: "🇭🇺"},
	"hy":    {Name: "Armenian", Flag: "🇦🇲"},
	"id":    {Name: "Indonesian", Flag: "🇮🇩"},
	"is":    {Name: "Icelandic", Flag: "🇮🇸"},
	"it":    {Name: "Italian", Flag: "🇮🇹"},
	"ja":    {Name: "Japanese", Flag: "🇯🇵"},
	"ka":    {Name: "Georgian", Flag: "🇬🇪"},
	"kk":    {Name: "Kazakh", Flag: "🇰🇿"},
	"km":    {Name: "Khmer", Flag: "🇰🇭"},
	"ko":    {Name: "Korean", Flag: "🇰🇷"},
	"lt":    {Name: "Lithuanian", Flag: "🇱🇹"},
	"lv":    {Name: "Latvian", Flag: "🇱🇻"},
	"mk":    {Name: "Macedonian", Flag: "🇲🇰"},
	"mn":    {Name: "Mongolian", Flag: "🇲🇳"},
	"ms":    {Name: "Malay", Flag: "🇲🇾"},
	"mt":    {Name: "Maltese", Flag: "🇲🇹"},
	"nb":    {Name: "Norwegian Bokmål", Flag: "🇳🇴"},
	"ne":    {Name: "Nepali", Flag: "🇳🇵"},
	"nl":    {Name: "Dutch", Flag: "🇳🇱"},
	"nl-BE": {Name: "Dutch (Belgium)", Flag: "🇧🇪"},
	"nn":    {Name: "Norwegian Nynorsk", Flag: "🇳🇴"},
	"no":    {Name: "Norwegian", Flag: "🇳🇴"},
	"pa":    {Name: "Punjabi", Flag: "🇮🇳"},
	"pl":    {Name: "Polish", Flag: "🇵🇱"},
	"pt":    {Name: "Portuguese", Flag: "🇵🇹"},
	"pt-BR": {Name: "Portuguese (Brazil)", Flag: "🇧🇷"},
	"pt-PT": {Name: "Portuguese (Portugal)", Flag: "🇵🇹"},
	"ro":    {Name: "Romanian", Flag: "🇷🇴"},
	"ru":    {Name: "Russian", Flag: "🇷🇺"},
	"si":    {Name: "Sinhala", Flag: "🇱🇰"},
	"sk":    {Name: "Slovak", Flag: "🇸🇰"},
	"sl":    {Name: "Slovenian", Flag: "🇸🇮"},
	"sq":    {Name: "Albanian", Flag: "🇦🇱"},
	"sr":    {Name: "Serbian", Flag: "🇷🇸"},
	"sv":    {Name: "Swedish", Flag: "🇸🇪"},
	"sw":    {Name: "Swahili", Flag: "🇹🇿"},
	"ta":    {Name: "Tamil", Flag: "🇮🇳"},
	"te":    {Name: "Telugu", Flag: "🇮🇳"},
	"th":    {Name: "Thai", Flag: "🇹🇭"},
	"tr":    {Name: "Turkish", Flag: "🇹🇷"},
	"uk":    {Name: "Ukrainian", Flag: "🇺🇦"},
	"ur":    {Name: "Urdu", Flag: "🇵🇰"},
	"uz":    {Name: "Uzbek", Flag: "🇺🇿"},
	"vi":    {Name: "Vietnamese", Flag: "🇻🇳"},
	"zh":    {Name: "Chinese", Flag: "🇨🇳"},
	"zh-CN": {Name: "Chinese (Simplified)", Flag: "🇨🇳"},
	"zh-TW": {Name: "Chinese (Traditional)", Flag: "🇹🇼"},
	"zu":    {Name: "Zulu", Flag: "🇿🇦"},
}

// Canonical normalizes a language code: lowercase base, uppercase region,
// underscores folded to hyphens. "pt_br" -> "pt-BR".
func Canonical(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort language metadata for language codes,
// supporting variants like pt_BR, pt-BR, and locale fallbacks.
func Resolve(lang string) Meta {
	if m, ok := Registry[lang]; ok {
		return m
	}
	normalized := Canonical(lang)
	if m, ok := Registry[normalized]; ok {
		return m
	}
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if m, ok := Registry[parts[0]]; ok {
			return m
		}
	}
	return Meta{Name: lang, Flag: ""}
}

// Known reports whether the code (or its base language) is in the registry.
func Known(lang string) bool {
	normalized := Canonical(lang)
	if _, ok := Registry[normalized]; ok {
		return true
	}
	base := strings.SplitN(normalized, "-", 2)[0]
	_, ok := Registry[base]
	return ok
}

// reFilenameCode matches the language-code segment of names like
// messages.es.xlf or app.pt-BR.xlf.
var reFilenameCode = regexp.MustCompile(`\.([A-Za-z]{2,3}(?:[-_][A-Za-z0-9]{2,8})?)\.xlf$`)

// FromFilename extracts the target language from a conventional
// localization filename (name.CODE.xlf). The code segment must resolve to
// a known language, so version-like segments (app.v2.xlf) do not match.
func FromFilename(path string) (string, bool) {
	base := filepath.Base(path)
	m := reFilenameCode.FindStringSubmatch(base)
	if m == nil {
		return "", false
	}
	code := Canonical(m[1])
	if !Known(code) {
		return "", false
	}
	return code, true
}
